// Package core provides the value types shared by the renderer subsystem:
// colors, styles, cells, positions, bounds and the error taxonomy.
//
// It has no dependency on sprites, scenes or backends, which lets every
// other renderer package import it without cycles.
package core
