// Copyright 2026 The Zeta Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package framebuffer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Terminal is a fixed-pitch glyph grid on top of a Framebuffer: a cursor,
// newline handling, and scroll-up when the bottom row fills. It renders with
// the 7x13 bitmap face.
type Terminal struct {
	fb   *Framebuffer
	face *basicfont.Face
	fg   color.Color
	bg   color.Color

	col  int
	row  int
	cols int
	rows int
}

// NewTerminal returns a terminal covering the whole framebuffer. The screen
// is cleared to the background color.
func NewTerminal(fb *Framebuffer, fg, bg color.Color) (*Terminal, error) {
	face := basicfont.Face7x13
	cols := fb.Info().Width / face.Advance
	rows := fb.Info().Height / face.Height
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("framebuffer %dx%d too small for a %dx%d glyph cell",
			fb.Info().Width, fb.Info().Height, face.Advance, face.Height)
	}
	t := &Terminal{fb: fb, face: face, fg: fg, bg: bg, cols: cols, rows: rows}
	fb.Fill(bg)
	return t, nil
}

// Size returns the terminal dimensions in character cells.
func (t *Terminal) Size() (cols, rows int) {
	return t.cols, t.rows
}

// WriteString renders s at the cursor, interpreting '\n' and wrapping long
// lines.
func (t *Terminal) WriteString(s string) {
	for _, r := range s {
		switch r {
		case '\n':
			t.newline()
		case '\r':
			t.col = 0
		default:
			if r < 0x20 || r > 0x7e {
				r = '?'
			}
			t.put(r)
		}
	}
}

func (t *Terminal) put(r rune) {
	if t.col == t.cols {
		t.newline()
	}
	x := t.col * t.face.Advance
	y := t.row * t.face.Height

	cell := image.Rect(x, y, x+t.face.Advance, y+t.face.Height)
	draw.Draw(t.fb, cell, image.NewUniform(t.bg), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  t.fb,
		Src:  image.NewUniform(t.fg),
		Face: t.face,
		Dot:  fixed.P(x, y+t.face.Ascent),
	}
	d.DrawString(string(r))
	t.col++
}

func (t *Terminal) newline() {
	t.col = 0
	if t.row+1 == t.rows {
		t.fb.ShiftUp(t.face.Height, t.bg)
		return
	}
	t.row++
}
