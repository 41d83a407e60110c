package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single script call.
const DefaultTimeout = 250 * time.Millisecond

// ErrStateClosed is returned when using a closed State.
var ErrStateClosed = errors.New("lua state closed")

// State wraps a gopher-lua state opened with a restricted library set.
//
// gopher-lua's LState is not goroutine-safe and neither is State. The
// driver calls it from the render loop only.
type State struct {
	L       *lua.LState
	timeout time.Duration
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout sets the limit for each chunk or function call. Zero
// disables it.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// NewState creates a Lua state with base, table, string and math.
func NewState(opts ...StateOption) *State {
	s := &State{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// No io, os, debug or package; also drop the loaders base exposes.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	s.L = L
	return s
}

// DoString runs a chunk. name appears in error messages.
func (s *State) DoString(name, code string) error {
	return s.do(name, []byte(code))
}

// DoFile runs a file.
func (s *State) DoFile(path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.do(path, code)
}

func (s *State) do(name string, code []byte) error {
	if s.closed {
		return ErrStateClosed
	}
	fn, err := s.L.Load(bytes.NewReader(code), name)
	if err != nil {
		return err
	}
	return s.call(fn)
}

// HasFunc reports whether a global function exists.
func (s *State) HasFunc(name string) bool {
	if s.closed {
		return false
	}
	return s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call calls a global function, discarding its results.
func (s *State) Call(name string, args ...lua.LValue) error {
	if s.closed {
		return ErrStateClosed
	}
	fn, ok := s.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return fmt.Errorf("function %q not found", name)
	}
	return s.call(fn, args...)
}

// call runs fn protected, under the timeout, with panic recovery.
func (s *State) call(fn *lua.LFunction, args ...lua.LValue) (err error) {
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
}

// Close releases the Lua state.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}
