package core

import "sync/atomic"

// ID identifies a sprite or a scene graph node. IDs are unique within
// the process and increase with creation order.
type ID uint64

var lastID atomic.Uint64

// NextID allocates a fresh ID. It is safe for concurrent use.
func NextID() ID {
	return ID(lastID.Add(1))
}
