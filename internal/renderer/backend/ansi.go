package backend

import (
	"bufio"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/dshills/tableau/internal/renderer/core"
)

// ANSI implements Backend by writing escape sequences straight to an
// output stream. It bypasses any screen buffer: what the scene manager
// queues is exactly what reaches the terminal.
type ANSI struct {
	in  *os.File
	out io.Writer
	buf *bufio.Writer
	fd  int

	mu       sync.Mutex
	state    *term.State
	height   int
	width    int
	closed   bool
	row, col int
	cursorOK bool
}

// NewANSI creates a backend on the given terminal files.
func NewANSI(in, out *os.File) *ANSI {
	return &ANSI{
		in:  in,
		out: out,
		buf: bufio.NewWriterSize(out, 64*1024),
		fd:  int(out.Fd()),
	}
}

// NewANSIWriter creates a backend that writes to w and reports a fixed
// size. It reads no input; PollEvent returns EventClosed.
func NewANSIWriter(w io.Writer, height, width int) *ANSI {
	return &ANSI{
		out:    w,
		buf:    bufio.NewWriter(w),
		fd:     -1,
		height: height,
		width:  width,
	}
}

func (a *ANSI) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.in != nil && term.IsTerminal(int(a.in.Fd())) {
		state, err := term.MakeRaw(int(a.in.Fd()))
		if err != nil {
			return err
		}
		a.state = state
	}

	a.buf.WriteString(ansi.SetModeAltScreenSaveCursor)
	a.buf.WriteString(ansi.HideCursor)
	a.buf.WriteString(ansi.EraseEntireScreen)
	a.cursorOK = false
	return a.buf.Flush()
}

func (a *ANSI) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true

	a.buf.WriteString(ansi.ResetStyle)
	a.buf.WriteString(ansi.ShowCursor)
	a.buf.WriteString(ansi.ResetModeAltScreenSaveCursor)
	_ = a.buf.Flush()

	if a.state != nil {
		_ = term.Restore(int(a.in.Fd()), a.state)
	}
}

// Size returns (height, width), falling back to the last known size
// when the terminal cannot be queried.
func (a *ANSI) Size() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fd >= 0 {
		if w, h, err := term.GetSize(a.fd); err == nil {
			a.width, a.height = w, h
		}
	}
	return a.height, a.width
}

func (a *ANSI) MoveTo(row, col uint16) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, c := int(row), int(col)
	if a.cursorOK && r == a.row && c == a.col {
		return nil
	}
	if _, err := a.buf.WriteString(ansi.CursorPosition(c+1, r+1)); err != nil {
		return err
	}
	a.row, a.col = r, c
	a.cursorOK = true
	return nil
}

func (a *ANSI) Print(text string, style core.Style) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.buf.WriteString(ansi.ResetStyle)

	var sgr ansi.Style
	if !style.Foreground.IsDefault() {
		sgr = sgr.ForegroundColor(convertANSIColor(style.Foreground))
	}
	if !style.Background.IsDefault() {
		sgr = sgr.BackgroundColor(convertANSIColor(style.Background))
	}
	if len(sgr) > 0 {
		a.buf.WriteString(sgr.String())
	}

	if _, err := a.buf.WriteString(text); err != nil {
		return err
	}
	a.col += runewidth.StringWidth(text)
	return nil
}

func (a *ANSI) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.buf.WriteString(ansi.ResetStyle)
	return a.buf.Flush()
}

// PollEvent reads raw input bytes and reports keys. Escape sequences are
// not decoded beyond a bare Escape.
func (a *ANSI) PollEvent() Event {
	if a.in == nil {
		return Event{Type: EventClosed}
	}

	var b [1]byte
	n, err := a.in.Read(b[:])
	if err != nil || n == 0 {
		return Event{Type: EventClosed}
	}

	switch b[0] {
	case 0x03:
		return Event{Type: EventKey, Key: KeyCtrlC}
	case 0x0c:
		return Event{Type: EventKey, Key: KeyCtrlL}
	case 0x1b:
		return Event{Type: EventKey, Key: KeyEscape}
	case '\r', '\n':
		return Event{Type: EventKey, Key: KeyEnter}
	case '\t':
		return Event{Type: EventKey, Key: KeyTab}
	default:
		return Event{Type: EventKey, Key: KeyRune, Rune: rune(b[0])}
	}
}

// convertANSIColor converts our Color to an x/ansi color.
func convertANSIColor(c core.Color) ansi.Color {
	if c.Indexed {
		return ansi.IndexedColor(c.R)
	}
	return ansi.TrueColor(c.Hex())
}
