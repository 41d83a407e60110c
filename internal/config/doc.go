// Package config provides the configuration for tableau.
//
// Settings are resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← TABLEAU_FPS, TABLEAU_RENDER_FPS, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← tableau.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Load merges layers 1 to 3; the command applies its flags to the result
// and then calls Validate.
//
// # File Format
//
//	[render]
//	fps = 30
//	backend = "tcell"      # or "ansi"
//	background = "default" # color name or hex
//
//	[log]
//	level = "info"
//	file = "/tmp/tableau.log" # "-" disables logging
//
//	[script]
//	path = "scene.lua"
//	watch = true
//
//	[art]
//	path = "cards.yaml"
package config
