// Package art loads sheets of glyph art from YAML and turns their pieces
// into sprite images.
//
// A sheet has a palette of named colors and a set of named pieces:
//
//	palette:
//	  felt: "#0b5d1e"
//	pieces:
//	  card:
//	    fg: black
//	    bg: white
//	    transparent: "."
//	    lines:
//	      - "+--+"
//	      - "|  |"
//	      - "+--+"
//
// Colors name a palette entry, a named color or a hex value. Runes equal
// to the piece's transparent rune (a space by default) are left
// transparent; every other rune, including spaces when another
// transparent rune is set, is painted opaque.
package art

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/dshills/tableau/internal/renderer/core"
	"github.com/dshills/tableau/internal/renderer/sprite"
)

//go:embed cards.yaml
var defaultSheet []byte

// ErrUnknownPiece is returned when a sheet has no piece of the requested name.
var ErrUnknownPiece = errors.New("unknown piece")

// PieceError reports an invalid piece definition.
type PieceError struct {
	Piece string
	Err   error
}

func (e *PieceError) Error() string {
	return fmt.Sprintf("piece %q: %v", e.Piece, e.Err)
}

func (e *PieceError) Unwrap() error {
	return e.Err
}

// file is the YAML document layout.
type file struct {
	Palette map[string]string    `yaml:"palette"`
	Pieces  map[string]pieceFile `yaml:"pieces"`
}

type pieceFile struct {
	Lines       []string `yaml:"lines"`
	Fg          string   `yaml:"fg"`
	Bg          string   `yaml:"bg"`
	Transparent string   `yaml:"transparent"`
}

// Piece is a resolved art piece.
type Piece struct {
	Name        string
	Lines       []string
	Fg          core.Color
	Bg          core.Color
	Transparent rune
}

// Size returns the piece's height and width in cells.
func (p *Piece) Size() (height, width int) {
	for _, line := range p.Lines {
		width = max(width, utf8.RuneCountInString(line))
	}
	return len(p.Lines), width
}

// Image renders the piece into a new image.
func (p *Piece) Image() (*sprite.Image, error) {
	height, width := p.Size()
	img, err := sprite.NewImage(height, width)
	if err != nil {
		return nil, &PieceError{Piece: p.Name, Err: err}
	}
	for row, line := range p.Lines {
		col := 0
		for _, r := range line {
			if r != p.Transparent {
				if err := img.Set(core.NewPos(row, col), core.Opaque(r, p.Fg, p.Bg)); err != nil {
					return nil, &PieceError{Piece: p.Name, Err: err}
				}
			}
			col++
		}
	}
	return img, nil
}

// Sheet is a set of named pieces sharing a palette.
type Sheet struct {
	palette map[string]core.Color
	pieces  map[string]*Piece
}

// Parse decodes a YAML sheet and resolves every piece.
func Parse(data []byte) (*Sheet, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse art sheet: %w", err)
	}

	s := &Sheet{
		palette: make(map[string]core.Color, len(f.Palette)),
		pieces:  make(map[string]*Piece, len(f.Pieces)),
	}
	for name, value := range f.Palette {
		c, err := core.ParseColor(value)
		if err != nil {
			return nil, fmt.Errorf("palette %q: %w", name, err)
		}
		s.palette[strings.ToLower(name)] = c
	}

	for name, pf := range f.Pieces {
		p, err := s.resolve(name, pf)
		if err != nil {
			return nil, err
		}
		s.pieces[name] = p
	}
	return s, nil
}

// Load reads and parses a sheet file.
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read art sheet: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in card sheet.
func Default() *Sheet {
	s, err := Parse(defaultSheet)
	if err != nil {
		panic("art: built-in sheet: " + err.Error())
	}
	return s
}

func (s *Sheet) resolve(name string, pf pieceFile) (*Piece, error) {
	if len(pf.Lines) == 0 {
		return nil, &PieceError{Piece: name, Err: errors.New("no lines")}
	}

	fg, err := s.Color(pf.Fg)
	if err != nil {
		return nil, &PieceError{Piece: name, Err: err}
	}
	bg, err := s.Color(pf.Bg)
	if err != nil {
		return nil, &PieceError{Piece: name, Err: err}
	}

	transparent := ' '
	if pf.Transparent != "" {
		if utf8.RuneCountInString(pf.Transparent) != 1 {
			return nil, &PieceError{Piece: name, Err: fmt.Errorf("transparent %q is not a single rune", pf.Transparent)}
		}
		transparent, _ = utf8.DecodeRuneInString(pf.Transparent)
	}

	p := &Piece{
		Name:        name,
		Lines:       pf.Lines,
		Fg:          fg,
		Bg:          bg,
		Transparent: transparent,
	}
	if _, width := p.Size(); width == 0 {
		return nil, &PieceError{Piece: name, Err: errors.New("empty lines")}
	}
	return p, nil
}

// Color resolves a palette name, a color name or a hex value.
func (s *Sheet) Color(value string) (core.Color, error) {
	if c, ok := s.palette[strings.ToLower(strings.TrimSpace(value))]; ok {
		return c, nil
	}
	return core.ParseColor(value)
}

// Names returns the piece names in sorted order.
func (s *Sheet) Names() []string {
	names := make([]string, 0, len(s.pieces))
	for name := range s.pieces {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Piece returns the named piece.
func (s *Sheet) Piece(name string) (*Piece, error) {
	p, ok := s.pieces[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPiece, name)
	}
	return p, nil
}

// Image renders the named piece into a new image.
func (s *Sheet) Image(name string) (*sprite.Image, error) {
	p, err := s.Piece(name)
	if err != nil {
		return nil, err
	}
	return p.Image()
}
