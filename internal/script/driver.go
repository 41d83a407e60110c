// Package script drives a scene from Lua.
//
// A script defines optional global functions: setup() runs once after
// loading, tick(frame) runs every frame and click(id) runs when a
// clickable sprite is hit. They manipulate the scene through the global
// scene table:
//
//	scene.sprite(piece[, row, col, order, parent]) -> id
//	scene.text(str, fg, bg[, row, col, order, parent]) -> id
//	scene.group(row, col[, parent]) -> id
//	scene.attach(parent, id)
//	scene.move(id, row, col)
//	scene.order(id, n)
//	scene.show(id, visible)
//	scene.clickable(id, on)
//	scene.remove(id)
//	scene.size() -> rows, cols
//
// A failing script is logged and its tick stops running until the next
// reload. The render loop keeps going.
package script

import (
	_ "embed"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tableau/internal/art"
	"github.com/dshills/tableau/internal/renderer/core"
	"github.com/dshills/tableau/internal/renderer/scene"
	"github.com/dshills/tableau/internal/renderer/sprite"
)

//go:embed demo.lua
var demoSource string

// Logger receives script diagnostics.
type Logger interface {
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithLogger sets the logger.
func WithLogger(l Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSource runs code instead of a file or the built-in demo.
func WithSource(name, code string) DriverOption {
	return func(d *Driver) {
		d.name = name
		d.code = code
	}
}

// WithStateOptions passes options to every Lua state the driver creates.
func WithStateOptions(opts ...StateOption) DriverOption {
	return func(d *Driver) {
		d.stateOpts = append(d.stateOpts, opts...)
	}
}

// Driver runs a Lua script against a scene.
type Driver struct {
	scene  *scene.Manager
	sheet  *art.Sheet
	logger Logger

	path      string
	name      string
	code      string
	stateOpts []StateOption

	state *State
	nodes []core.ID // nodes the script created, removed on reload
	frame int
	err   error
}

// NewDriver creates a driver for the script at path. An empty path runs
// the built-in demo.
func NewDriver(m *scene.Manager, sheet *art.Sheet, path string, opts ...DriverOption) *Driver {
	d := &Driver{
		scene:  m,
		sheet:  sheet,
		logger: nopLogger{},
		path:   path,
		name:   "demo.lua",
		code:   demoSource,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path returns the script file, or "" when running embedded code.
func (d *Driver) Path() string {
	return d.path
}

// Err returns the error that stopped the script, if any.
func (d *Driver) Err() error {
	return d.err
}

// Frame returns the number of ticks run since the last load.
func (d *Driver) Frame() int {
	return d.frame
}

// Load runs the script in a fresh Lua state and calls its setup.
func (d *Driver) Load() error {
	d.state = NewState(d.stateOpts...)
	d.register()
	d.frame = 0
	d.err = nil

	var err error
	if d.path != "" {
		err = d.state.DoFile(d.path)
	} else {
		err = d.state.DoString(d.name, d.code)
	}
	if err == nil && d.state.HasFunc("setup") {
		err = d.state.Call("setup")
	}
	if err != nil {
		return d.fail("load", err)
	}

	d.logger.Info("script loaded name=%s", d.source())
	return nil
}

// Reload removes everything the script created and loads it again.
func (d *Driver) Reload() error {
	d.clear()
	if d.state != nil {
		d.state.Close()
	}
	return d.Load()
}

// Tick advances the script by one frame.
func (d *Driver) Tick() {
	if d.err != nil || d.state == nil || !d.state.HasFunc("tick") {
		return
	}
	d.frame++
	if err := d.state.Call("tick", lua.LNumber(d.frame)); err != nil {
		d.fail("tick", err)
	}
}

// Click forwards a hit sprite to the script.
func (d *Driver) Click(id core.ID) {
	if d.err != nil || d.state == nil || !d.state.HasFunc("click") {
		return
	}
	if err := d.state.Call("click", lua.LNumber(id)); err != nil {
		d.fail("click", err)
	}
}

// Close releases the Lua state. The scene is left as is.
func (d *Driver) Close() {
	if d.state != nil {
		d.state.Close()
	}
}

func (d *Driver) source() string {
	if d.path != "" {
		return d.path
	}
	return d.name
}

func (d *Driver) fail(op string, err error) error {
	d.err = fmt.Errorf("script %s %s: %w", d.source(), op, err)
	d.logger.Error("%v", d.err)
	return d.err
}

// clear removes the nodes the script created that are still attached.
func (d *Driver) clear() {
	for _, id := range d.nodes {
		if d.scene.Find(id) != nil {
			_ = d.scene.Remove(id)
		}
	}
	d.nodes = d.nodes[:0]
}

func (d *Driver) register() {
	L := d.state.L
	mod := L.NewTable()
	L.SetField(mod, "sprite", L.NewFunction(d.luaSprite))
	L.SetField(mod, "text", L.NewFunction(d.luaText))
	L.SetField(mod, "group", L.NewFunction(d.luaGroup))
	L.SetField(mod, "attach", L.NewFunction(d.luaAttach))
	L.SetField(mod, "move", L.NewFunction(d.luaMove))
	L.SetField(mod, "order", L.NewFunction(d.luaOrder))
	L.SetField(mod, "show", L.NewFunction(d.luaShow))
	L.SetField(mod, "clickable", L.NewFunction(d.luaClickable))
	L.SetField(mod, "remove", L.NewFunction(d.luaRemove))
	L.SetField(mod, "size", L.NewFunction(d.luaSize))
	L.SetGlobal("scene", mod)
}

func checkID(L *lua.LState, n int) core.ID {
	v := L.CheckInt64(n)
	if v <= 0 {
		L.ArgError(n, "invalid id")
	}
	return core.ID(v)
}

func optParent(d *Driver, L *lua.LState, n int) core.ID {
	if L.Get(n) == lua.LNil {
		return d.scene.Root()
	}
	return checkID(L, n)
}

// attach places a new sprite under parent and returns its id to Lua.
func (d *Driver) attach(L *lua.LState, img *sprite.Image, pos core.Pos, order int, parent core.ID) int {
	s := d.scene.NewSprite(img, sprite.WithAnchor(pos), sprite.WithOrder(order))
	if err := d.scene.AddSprite(parent, s); err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	d.nodes = append(d.nodes, s.ID())
	L.Push(lua.LNumber(s.ID()))
	return 1
}

// sprite(piece[, row, col, order, parent]) -> id
func (d *Driver) luaSprite(L *lua.LState) int {
	name := L.CheckString(1)
	pos := core.NewPos(L.OptInt(2, 0), L.OptInt(3, 0))
	order := L.OptInt(4, 0)
	parent := optParent(d, L, 5)

	img, err := d.sheet.Image(name)
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	return d.attach(L, img, pos, order, parent)
}

// text(str, fg, bg[, row, col, order, parent]) -> id
func (d *Driver) luaText(L *lua.LState) int {
	str := L.CheckString(1)
	fg, err := d.sheet.Color(L.OptString(2, ""))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	bg, err := d.sheet.Color(L.OptString(3, ""))
	if err != nil {
		L.ArgError(3, err.Error())
		return 0
	}
	pos := core.NewPos(L.OptInt(4, 0), L.OptInt(5, 0))
	order := L.OptInt(6, 0)
	parent := optParent(d, L, 7)

	runes := []rune(str)
	if len(runes) == 0 {
		L.ArgError(1, "empty text")
		return 0
	}
	img, err := sprite.NewImage(1, len(runes))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	for col, r := range runes {
		_ = img.Set(core.NewPos(0, col), core.Opaque(r, fg, bg))
	}
	return d.attach(L, img, pos, order, parent)
}

// group(row, col[, parent]) -> id
func (d *Driver) luaGroup(L *lua.LState) int {
	pos := core.NewPos(L.CheckInt(1), L.CheckInt(2))
	parent := optParent(d, L, 3)

	id, err := d.scene.AddGroup(parent, pos)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	d.nodes = append(d.nodes, id)
	L.Push(lua.LNumber(id))
	return 1
}

// attach(parent, id) moves a node under another group.
func (d *Driver) luaAttach(L *lua.LState) int {
	parent := checkID(L, 1)
	id := checkID(L, 2)

	node := d.scene.Find(id)
	if node == nil {
		L.RaiseError("%v", &core.IDError{Op: "attach", ID: id})
		return 0
	}
	if d.scene.Find(parent) == nil {
		L.RaiseError("%v", &core.IDError{Op: "attach", ID: parent})
		return 0
	}
	if node.Find(parent) != nil {
		L.RaiseError("attach: node %d is inside node %d", parent, id)
		return 0
	}

	if err := d.scene.Remove(id); err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	if err := d.scene.AddTree(parent, node); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// move(id, row, col)
func (d *Driver) luaMove(L *lua.LState) int {
	id := checkID(L, 1)
	pos := core.NewPos(L.CheckInt(2), L.CheckInt(3))
	if err := d.scene.MoveGroup(id, pos); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// order(id, n)
func (d *Driver) luaOrder(L *lua.LState) int {
	id := checkID(L, 1)
	if err := d.scene.Reorder(id, L.CheckInt(2)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// show(id, visible)
func (d *Driver) luaShow(L *lua.LState) int {
	id := checkID(L, 1)
	if err := d.scene.SetGroupVisible(id, L.CheckBool(2)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// clickable(id, on)
func (d *Driver) luaClickable(L *lua.LState) int {
	id := checkID(L, 1)
	s, ok := d.scene.Sprite(id)
	if !ok {
		L.RaiseError("%v", &core.IDError{Op: "clickable", ID: id})
		return 0
	}
	s.SetClickable(L.CheckBool(2))
	return 0
}

// remove(id)
func (d *Driver) luaRemove(L *lua.LState) int {
	if err := d.scene.Remove(checkID(L, 1)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// size() -> rows, cols
func (d *Driver) luaSize(L *lua.LState) int {
	height, width := d.scene.Size()
	L.Push(lua.LNumber(height))
	L.Push(lua.LNumber(width))
	return 2
}
