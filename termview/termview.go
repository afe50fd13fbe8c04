// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview implements a display.Drawer that shows a monochrome panel
// in a terminal using ANSI color codes.
//
// Useful to work on the animations without the panel wired, or to mirror it
// on a serial console.
package termview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Opts represents the options available for this display.
type Opts struct {
	W, H int
	// On and Off are the colors of lit and dark pixels. The zero value selects
	// white on black.
	On, Off color.NRGBA
	Palette *ansi256.Palette
	// Out defaults to a colorable stdout.
	Out io.Writer

	_ struct{}
}

// Dev is a panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	on, off string
	frame   *image1bit.VerticalLSB

	buf    bytes.Buffer
	frames int
}

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

// New returns a Dev that draws at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	on, off := opts.On, opts.Off
	if on == (color.NRGBA{}) {
		on = white
	}
	if off == (color.NRGBA{}) {
		off = black
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:     w,
		on:    p.Block(on),
		off:   p.Block(off),
		frame: image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermView{%s}", d.frame.Rect.Max)
}

// Halt implements conn.Resource.
//
// It resets the terminal colors and moves below the frame.
func (d *Dev) Halt() error {
	_, err := io.WriteString(d.w, "\033[0m\n")
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.frame.Rect
}

// Draw implements display.Drawer.
//
// The whole frame is redrawn in place on every call.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Src.Draw(d.frame, r.Intersect(d.frame.Rect), src, sp)
	return d.refresh()
}

// Frames returns the number of frames written so far.
func (d *Dev) Frames() int {
	return d.frames
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	if d.frames != 0 {
		// Move the cursor back to the top of the previous frame.
		fmt.Fprintf(&d.buf, "\033[%dA", d.frame.Rect.Dy())
	}
	for y := d.frame.Rect.Min.Y; y < d.frame.Rect.Max.Y; y++ {
		_, _ = d.buf.WriteString("\r")
		for x := d.frame.Rect.Min.X; x < d.frame.Rect.Max.X; x++ {
			if d.frame.BitAt(x, y) {
				_, _ = d.buf.WriteString(d.on)
			} else {
				_, _ = d.buf.WriteString(d.off)
			}
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.frames++
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
