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

// Package framebuffer renders text directly into a linear framebuffer, the
// graphical half of early boot diagnostics. The pixel memory is supplied by
// the firmware collaborator as a raw byte slice; this package never
// allocates display memory.
package framebuffer

import (
	"fmt"
	"image"
	"image/color"
)

// Format is the byte order of a pixel. Both formats are 4 bytes per pixel
// with the top byte reserved.
type Format int

// Supported pixel formats.
const (
	RGB Format = iota
	BGR
)

const bytesPerPixel = 4

// Info describes the geometry of a linear framebuffer as reported by the
// firmware. Stride is in pixels and may exceed Width.
type Info struct {
	Width  int
	Height int
	Stride int
	Format Format
}

// Size returns the number of bytes the framebuffer occupies.
func (i Info) Size() int {
	return i.Stride * i.Height * bytesPerPixel
}

// Validate checks the geometry against the buffer that is supposed to back
// it.
func (i Info) Validate(buflen int) error {
	if i.Width <= 0 || i.Height <= 0 {
		return fmt.Errorf("framebuffer has degenerate resolution %dx%d", i.Width, i.Height)
	}
	if i.Stride < i.Width {
		return fmt.Errorf("framebuffer stride %d is smaller than width %d", i.Stride, i.Width)
	}
	if f := i.Format; f != RGB && f != BGR {
		return fmt.Errorf("unsupported pixel format %d", f)
	}
	if buflen < i.Size() {
		return fmt.Errorf("framebuffer of %d bytes cannot back %dx%d (need %d)", buflen, i.Width, i.Height, i.Size())
	}
	return nil
}

// Framebuffer is pixel memory with a validated geometry. It implements
// draw.Image so glyphs can be rendered into it with golang.org/x/image/font.
type Framebuffer struct {
	buf  []byte
	info Info
}

// New wraps buf as a framebuffer. The buffer must be large enough for the
// described geometry.
func New(buf []byte, info Info) (*Framebuffer, error) {
	if err := info.Validate(len(buf)); err != nil {
		return nil, err
	}
	return &Framebuffer{buf: buf, info: info}, nil
}

// Info returns the framebuffer geometry.
func (f *Framebuffer) Info() Info {
	return f.info
}

// ColorModel implements image.Image.ColorModel.
func (f *Framebuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.Bounds.
func (f *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.info.Width, f.info.Height)
}

// At implements image.Image.At.
func (f *Framebuffer) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(f.Bounds())) {
		return color.RGBA{}
	}
	p := f.buf[f.offset(x, y):]
	if f.info.Format == BGR {
		return color.RGBA{R: p[2], G: p[1], B: p[0], A: 0xff}
	}
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: 0xff}
}

// Set implements draw.Image.Set.
func (f *Framebuffer) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(f.Bounds())) {
		return
	}
	r, g, b, _ := c.RGBA()
	p := f.buf[f.offset(x, y):]
	if f.info.Format == BGR {
		p[0], p[1], p[2], p[3] = byte(b>>8), byte(g>>8), byte(r>>8), 0
	} else {
		p[0], p[1], p[2], p[3] = byte(r>>8), byte(g>>8), byte(b>>8), 0
	}
}

func (f *Framebuffer) offset(x, y int) int {
	return (y*f.info.Stride + x) * bytesPerPixel
}

// ShiftUp moves the visible contents up by the given number of pixel rows
// and clears the vacated rows to c.
func (f *Framebuffer) ShiftUp(rows int, c color.Color) {
	if rows <= 0 {
		return
	}
	if rows > f.info.Height {
		rows = f.info.Height
	}
	rowBytes := f.info.Stride * bytesPerPixel
	copy(f.buf, f.buf[rows*rowBytes:f.info.Height*rowBytes])
	for y := f.info.Height - rows; y < f.info.Height; y++ {
		for x := 0; x < f.info.Width; x++ {
			f.Set(x, y, c)
		}
	}
}

// Fill sets every pixel to c.
func (f *Framebuffer) Fill(c color.Color) {
	for y := 0; y < f.info.Height; y++ {
		for x := 0; x < f.info.Width; x++ {
			f.Set(x, y, c)
		}
	}
}
