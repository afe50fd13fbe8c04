// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package glyph draws lines of text on monochrome frames.
package glyph

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Built-in face names accepted by Face.
const (
	Basic  = "basic"
	GoMono = "gomono"
)

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

// Face returns the font face called name.
//
// Basic is the 7x13 bitmap face and ignores size. GoMono is the Go mono
// TrueType font rendered at size points. Any other name is a path to a
// TrueType file.
func Face(name string, size float64) (font.Face, error) {
	switch name {
	case "", Basic:
		return basicfont.Face7x13, nil
	case GoMono:
		if size <= 0 {
			return nil, fmt.Errorf("glyph: invalid size %g", size)
		}
		monoOnce.Do(func() {
			monoFont, monoErr = truetype.Parse(gomono.TTF)
		})
		if monoErr != nil {
			return nil, fmt.Errorf("glyph: %w", monoErr)
		}
		return truetype.NewFace(monoFont, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
	default:
		if size <= 0 {
			return nil, fmt.Errorf("glyph: invalid size %g", size)
		}
		f, err := gg.LoadFontFace(name, size)
		if err != nil {
			return nil, fmt.Errorf("glyph: failed to load %q: %w", name, err)
		}
		return f, nil
	}
}

// LineHeight returns the distance between two baselines.
func LineHeight(f font.Face) int {
	m := f.Metrics()
	if h := m.Height.Ceil(); h > 0 {
		return h
	}
	return (m.Ascent + m.Descent).Ceil()
}

// DrawLines draws lines top to bottom, the first one with its top edge at
// origin.Y. Pixels covered by glyphs are turned on; others are left
// untouched.
//
// It returns the y coordinate below the last line.
func DrawLines(dst draw.Image, f font.Face, origin image.Point, lines ...string) int {
	ascent := f.Metrics().Ascent.Ceil()
	step := LineHeight(f)
	d := font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{C: image1bit.On},
		Face: f,
	}
	y := origin.Y
	for _, l := range lines {
		d.Dot = fixed.P(origin.X, y+ascent)
		d.DrawString(l)
		y += step
	}
	return y
}
