package core

import (
	"errors"
	"fmt"
	"math"
)

// Renderer errors.
var (
	// ErrOutOfBounds indicates an index outside an image or the viewport.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrIDNotFound indicates a structural operation named a missing node.
	ErrIDNotFound = errors.New("id not found")

	// ErrConversion indicates a geometric value does not fit the target integer width.
	ErrConversion = errors.New("conversion failed")

	// ErrSinkIO indicates the output sink rejected a command or a flush.
	ErrSinkIO = errors.New("sink i/o failed")
)

// BoundsError reports an access outside an image.
type BoundsError struct {
	Op     string // Operation name (e.g., "get", "set")
	Pos    Pos    // Offending position
	Height int    // Image height
	Width  int    // Image width
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s %s outside %dx%d: %v", e.Op, e.Pos, e.Height, e.Width, ErrOutOfBounds)
}

func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// IDError reports a scene graph lookup that failed.
type IDError struct {
	Op string
	ID ID
}

func (e *IDError) Error() string {
	return fmt.Sprintf("%s: node %d: %v", e.Op, e.ID, ErrIDNotFound)
}

func (e *IDError) Unwrap() error {
	return ErrIDNotFound
}

// ConversionError reports a value that does not fit its target type.
type ConversionError struct {
	Value  int
	Target string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("value %d does not fit %s: %v", e.Value, e.Target, ErrConversion)
}

func (e *ConversionError) Unwrap() error {
	return ErrConversion
}

// SinkError wraps a failure reported by the output sink.
// Both ErrSinkIO and the underlying cause match with errors.Is.
type SinkError struct {
	Op  string // "move", "print" or "flush"
	Err error
}

func (e *SinkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("sink %s: %v", e.Op, ErrSinkIO)
	}
	return fmt.Sprintf("sink %s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSinkIO}
	}
	return []error{ErrSinkIO, e.Err}
}

// ToUint16 converts a cell coordinate to the width sinks address with.
func ToUint16(v int) (uint16, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, &ConversionError{Value: v, Target: "uint16"}
	}
	return uint16(v), nil
}
