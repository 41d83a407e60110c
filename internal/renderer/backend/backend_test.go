package backend

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/tableau/internal/renderer/core"
)

func TestRecorderRecordsCommands(t *testing.T) {
	r := NewRecorder(3, 5)
	style := core.NewStyle(core.ColorGreen, core.ColorDefault)

	if err := r.MoveTo(1, 2); err != nil {
		t.Fatalf("MoveTo failed: %v", err)
	}
	if err := r.Print("XY", style); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	cmds := r.Commands()
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	if cmds[0].Row != 1 || cmds[0].Col != 2 || cmds[0].Text != "XY" {
		t.Errorf("unexpected command %+v", cmds[0])
	}
	if got := r.Line(1); got != "  XY " {
		t.Errorf("expected line %q, got %q", "  XY ", got)
	}
	if c := r.CellAt(1, 3); c.Glyph != 'Y' || !c.Fg.Equals(core.ColorGreen) {
		t.Errorf("unexpected cell %v", c)
	}
}

func TestRecorderClipsOutsideGrid(t *testing.T) {
	r := NewRecorder(2, 2)
	r.MoveTo(1, 1)
	r.Print("abc", core.DefaultStyle())

	if got := r.Line(1); got != " a" {
		t.Errorf("expected clipped line %q, got %q", " a", got)
	}
	if c := r.CellAt(5, 5); !c.Equals(core.DefaultCell()) {
		t.Errorf("outside grid should be default, got %v", c)
	}
}

func TestRecorderFailOn(t *testing.T) {
	boom := errors.New("boom")
	for _, op := range []string{"move", "print", "flush"} {
		t.Run(op, func(t *testing.T) {
			r := NewRecorder(1, 1)
			r.FailOn(op, boom)

			var err error
			switch op {
			case "move":
				err = r.MoveTo(0, 0)
			case "print":
				err = r.Print("x", core.DefaultStyle())
			case "flush":
				err = r.Flush()
			}
			if !errors.Is(err, boom) {
				t.Errorf("expected boom, got %v", err)
			}
		})
	}
}

func TestRecorderResetKeepsGrid(t *testing.T) {
	r := NewRecorder(1, 3)
	r.MoveTo(0, 0)
	r.Print("a", core.DefaultStyle())
	r.Flush()
	r.Reset()

	if n := len(r.Commands()); n != 0 {
		t.Errorf("expected no commands after Reset, got %d", n)
	}
	if r.Flushes() != 1 {
		t.Errorf("expected 1 flush, got %d", r.Flushes())
	}
	if got := r.Line(0); got != "a  " {
		t.Errorf("grid should survive Reset, got %q", got)
	}
}

func TestFixedSize(t *testing.T) {
	h, w := FixedSize(24, 80).Size()
	if h != 24 || w != 80 {
		t.Errorf("expected (24, 80), got (%d, %d)", h, w)
	}
}

func TestANSIMoveAndPrint(t *testing.T) {
	var out bytes.Buffer
	a := NewANSIWriter(&out, 24, 80)

	style := core.NewStyle(core.ColorGreen, core.ColorDefault)
	if err := a.MoveTo(2, 5); err != nil {
		t.Fatalf("MoveTo failed: %v", err)
	}
	if err := a.Print("ab", style); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	// Cursor already sits at column 7, so this move is elided.
	if err := a.MoveTo(2, 7); err != nil {
		t.Fatalf("MoveTo failed: %v", err)
	}
	if err := a.Print("c", core.DefaultStyle()); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want := ansi.CursorPosition(6, 3) +
		ansi.ResetStyle +
		ansi.Style{}.ForegroundColor(ansi.TrueColor(0x00ff00)).String() +
		"ab" +
		ansi.ResetStyle +
		"c" +
		ansi.ResetStyle
	if got := out.String(); got != want {
		t.Errorf("unexpected output\nwant %q\ngot  %q", want, got)
	}
}

func TestANSIIndexedBackground(t *testing.T) {
	var out bytes.Buffer
	a := NewANSIWriter(&out, 1, 1)

	a.MoveTo(0, 0)
	a.Print(" ", core.NewStyle(core.ColorDefault, core.ColorFromIndex(4)))
	a.Flush()

	sgr := ansi.Style{}.BackgroundColor(ansi.IndexedColor(4)).String()
	if !strings.Contains(out.String(), sgr) {
		t.Errorf("expected %q in %q", sgr, out.String())
	}
}

func TestANSIBuffersUntilFlush(t *testing.T) {
	var out bytes.Buffer
	a := NewANSIWriter(&out, 1, 10)

	a.MoveTo(0, 3)
	a.Print("x", core.DefaultStyle())
	if out.Len() != 0 {
		t.Errorf("output should be buffered until Flush, got %q", out.String())
	}
	a.Flush()
	if out.Len() == 0 {
		t.Error("Flush should write buffered output")
	}
}

func TestANSIWriterSizeAndEvents(t *testing.T) {
	a := NewANSIWriter(&bytes.Buffer{}, 24, 80)
	h, w := a.Size()
	if h != 24 || w != 80 {
		t.Errorf("expected (24, 80), got (%d, %d)", h, w)
	}
	if ev := a.PollEvent(); ev.Type != EventClosed {
		t.Errorf("expected EventClosed without input, got %v", ev.Type)
	}
}

func newSimTerminal(t *testing.T, width, height int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	screen.SetSize(width, height)
	t.Cleanup(term.Shutdown)
	return term, screen
}

func TestTerminalSizeIsRowsThenCols(t *testing.T) {
	term, _ := newSimTerminal(t, 40, 10)
	h, w := term.Size()
	if h != 10 || w != 40 {
		t.Errorf("expected (10, 40), got (%d, %d)", h, w)
	}
}

func TestTerminalPrint(t *testing.T) {
	term, screen := newSimTerminal(t, 10, 3)

	style := core.NewStyle(core.ColorRed, core.ColorBlue)
	term.MoveTo(1, 4)
	term.Print("hi", style)
	if err := term.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	r, _, ts, _ := screen.GetContent(5, 1)
	if r != 'i' {
		t.Errorf("expected 'i' at (1,5), got %q", r)
	}
	fg, bg, _ := ts.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("unexpected foreground %v", fg)
	}
	if bg != tcell.NewRGBColor(0, 0, 255) {
		t.Errorf("unexpected background %v", bg)
	}
}

func TestConvertColor(t *testing.T) {
	tests := []struct {
		name string
		in   core.Color
		want tcell.Color
	}{
		{"default", core.ColorDefault, tcell.ColorDefault},
		{"indexed", core.ColorFromIndex(9), tcell.PaletteColor(9)},
		{"rgb", core.ColorFromRGB(1, 2, 3), tcell.NewRGBColor(1, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertColor(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestConvertEvents(t *testing.T) {
	key := convertEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	if key.Type != EventKey || key.Key != KeyRune || key.Rune != 'q' {
		t.Errorf("unexpected key event %+v", key)
	}

	esc := convertEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if esc.Key != KeyEscape {
		t.Errorf("expected KeyEscape, got %v", esc.Key)
	}

	mouse := convertEvent(tcell.NewEventMouse(7, 3, tcell.Button1, tcell.ModNone))
	if mouse.Type != EventMouse || mouse.Row != 3 || mouse.Col != 7 || !mouse.Pressed {
		t.Errorf("unexpected mouse event %+v", mouse)
	}

	resize := convertEvent(tcell.NewEventResize(100, 30))
	if resize.Type != EventResize || resize.Width != 100 || resize.Height != 30 {
		t.Errorf("unexpected resize event %+v", resize)
	}
}
