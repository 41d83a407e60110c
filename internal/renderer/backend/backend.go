// Package backend provides the output sinks the scene manager flushes
// into, and the terminal backends that also supply viewport size and
// input events.
package backend

import "github.com/dshills/tableau/internal/renderer/core"

// Sink accepts queued cursor moves and styled prints, and writes them
// out on Flush. Coordinates are zero-based.
type Sink interface {
	// MoveTo positions the cursor for the next Print.
	MoveTo(row, col uint16) error

	// Print writes text at the cursor with the given style.
	Print(text string, style core.Style) error

	// Flush pushes everything queued so far to the display.
	Flush() error
}

// SizeProvider reports the current viewport size in cells.
type SizeProvider interface {
	Size() (height, width int)
}

// SizeFunc adapts a function to SizeProvider.
type SizeFunc func() (height, width int)

// Size implements SizeProvider.
func (f SizeFunc) Size() (height, width int) {
	return f()
}

// FixedSize returns a SizeProvider that always reports the same size.
func FixedSize(height, width int) SizeProvider {
	return SizeFunc(func() (int, int) { return height, width })
}

// Screen is a sink that knows its own size.
type Screen interface {
	Sink
	SizeProvider
}

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	// EventClosed is returned by PollEvent once the backend shut down.
	EventClosed
)

// Key represents a keyboard key.
type Key int

// Key constants for the keys the driver reacts to.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyCtrlL
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune

	// Mouse event fields (cells, zero-based)
	Row, Col int
	Pressed  bool

	// Resize event fields
	Width, Height int
}

// Backend is a terminal the application renders into.
type Backend interface {
	Screen

	// Init takes over the terminal. Must be called before any other method.
	Init() error

	// Shutdown restores the terminal. PollEvent returns EventClosed afterwards.
	Shutdown()

	// PollEvent blocks until the next input event.
	PollEvent() Event
}
