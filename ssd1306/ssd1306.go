// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type variant string

const (
	_SSD1306 variant = "SSD1306"
	_SH1106  variant = "SH1106"
)

// Commands, see page 28 of the SSD1306 datasheet.
const (
	_CHARGEPUMP          = 0x8D
	_COLUMNADDR          = 0x21
	_COMSCANDEC          = 0xC8
	_COMSCANINC          = 0xC0
	_DEACTIVATE_SCROLL   = 0x2E
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGEADDR            = 0x22
	_PAGESTARTADDRESS    = 0xB0
	_SEGREMAP            = 0xA0
	_SETCOMPINS          = 0xDA
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETHIGHCOLUMN       = 0x10
	_SETLOWCOLUMN        = 0x00
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSEGMENTREMAP     = 0xA1
	_SETSTARTLINE        = 0x40
	_SETVCOMDETECT       = 0xDB
)

const (
	i2cCmd  = 0x00 // I²C transaction has stream of command bytes
	i2cData = 0x40 // I²C transaction has stream of data bytes
)

// DefaultOpts matches the common 0.96" 128x64 I²C module.
var DefaultOpts = Opts{
	W:    128,
	H:    64,
	Addr: 0x3C,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// Addr is the I²C address of the panel, usually 0x3C or 0x3D.
	Addr uint16
	// Sequential selects the sequential COM pin configuration. Try toggling
	// this if every other row is missing, typically on 32 pixels high panels.
	Sequential bool
	// MirrorVertical flips the COM scan direction.
	MirrorVertical bool
	// MirrorHorizontal flips the segment remap.
	MirrorHorizontal bool
	// SwapTopBottom enables the COM left/right remap.
	SwapTopBottom bool
}

// Dev is an open handle to the display controller.
type Dev struct {
	c       conn.Conn
	variant variant
	// colOffset is the first RAM column wired to the panel.
	colOffset int
	rect      image.Rectangle

	// shown mirrors the controller RAM: H/8 pages of W bytes, each byte being
	// a column of 8 pixels, LSB on top.
	shown []byte
	// scratch is allocated on the first Draw() that can't use the fast path.
	scratch *image1bit.VerticalLSB
	// stale forces the next flush to send the whole frame.
	stale  bool
	halted bool
}

// NewI2C returns a Dev talking to a panel on bus b.
//
// It reads the controller status to tell SSD1306 and SH1106 apart, then sends
// the full initialization sequence. The panel is on and its RAM content is
// undefined until the first Draw.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	o := *opts
	if o.Addr == 0 {
		o.Addr = DefaultOpts.Addr
	}
	if o.W < 8 || o.W > 128 || o.W&7 != 0 {
		return nil, fmt.Errorf("ssd1306: invalid width %d", o.W)
	}
	if o.H < 8 || o.H > 64 || o.H&7 != 0 {
		return nil, fmt.Errorf("ssd1306: invalid height %d", o.H)
	}
	d := &Dev{
		c:       &i2c.Dev{Bus: b, Addr: o.Addr},
		variant: _SSD1306,
		rect:    image.Rect(0, 0, o.W, o.H),
		shown:   make([]byte, o.W*o.H/8),
		stale:   true,
	}
	// The status read fails on some clones, which are all SSD1306.
	if id, err := d.status(); err == nil && id&0x0F == 0x08 {
		d.variant = _SH1106
		d.colOffset = 2
	}
	if err := d.sendCommand(initSequence(&o)); err != nil {
		return nil, fmt.Errorf("%s: init failed: %w", d.variant, err)
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s.Dev{%s, %s}", d.variant, d.c, d.rect.Max)
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is always {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// A full frame *image1bit.VerticalLSB is sent as is; anything else is first
// converted in a scratch frame that keeps the previous content outside r.
// Draw returns once the panel is updated.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if img, ok := src.(*image1bit.VerticalLSB); ok && r == d.rect && img.Rect == d.rect && sp == (image.Point{}) {
		return d.flush(img.Pix)
	}
	if d.scratch == nil {
		d.scratch = image1bit.NewVerticalLSB(d.rect)
		copy(d.scratch.Pix, d.shown)
	}
	draw.Src.Draw(d.scratch, r, src, sp)
	return d.flush(d.scratch.Pix)
}

// Write sends a raw frame in the controller format: horizontal bands of 8
// pixels, one byte per column, as in image1bit.VerticalLSB.Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.shown) {
		return 0, fmt.Errorf("%s: invalid pixel stream length; expected %d bytes, got %d bytes", d.variant, len(d.shown), len(pixels))
	}
	if err := d.flush(pixels); err != nil {
		return 0, err
	}
	if d.scratch != nil {
		copy(d.scratch.Pix, pixels)
	}
	return len(pixels), nil
}

// SetContrast changes the panel brightness.
func (d *Dev) SetContrast(level byte) error {
	return d.sendCommand([]byte{_SETCONTRAST, level})
}

// Invert swaps lit and dark pixels.
func (d *Dev) Invert(blackOnWhite bool) error {
	c := byte(_NORMALDISPLAY)
	if blackOnWhite {
		c = _INVERTDISPLAY
	}
	return d.sendCommand([]byte{c})
}

// Halt turns the panel off.
//
// The next command or frame turns it back on.
func (d *Dev) Halt() error {
	if err := d.sendCommand([]byte{_DISPLAYOFF}); err != nil {
		return err
	}
	d.halted = true
	return nil
}

// initSequence returns the power on flow of page 64 of the datasheet.
func initSequence(o *Opts) []byte {
	comScan := byte(_COMSCANDEC)
	if o.MirrorVertical {
		comScan = _COMSCANINC
	}
	segRemap := byte(_SETSEGMENTREMAP)
	if o.MirrorHorizontal {
		segRemap = _SEGREMAP
	}
	// See page 40.
	comPins := byte(0x02)
	if !o.Sequential {
		comPins |= 0x10
	}
	if o.SwapTopBottom {
		comPins |= 0x20
	}
	return []byte{
		_DISPLAYOFF,
		_SETDISPLAYOFFSET, 0x00,
		_SETSTARTLINE,
		segRemap,
		comScan,
		_SETCOMPINS, comPins,
		_SETCONTRAST, 0xFF,
		_DISPLAYALLON_RESUME,      // Show RAM content.
		_NORMALDISPLAY,            // 1 = lit.
		_SETDISPLAYCLOCKDIV, 0xF0, // Fastest oscillator, limits tearing on I²C.
		_CHARGEPUMP, 0x14,
		_SETPRECHARGE, 0xF1,
		_SETVCOMDETECT, 0x40,
		_DEACTIVATE_SCROLL,
		_SETMULTIPLEX, byte(o.H - 1),
		_MEMORYMODE, 0x00, // Horizontal addressing.
		_COLUMNADDR, 0, byte(o.W - 1),
		_PAGEADDR, 0, byte(o.H/8 - 1),
		_DISPLAYON,
	}
}

// dirty returns the band of pages [p0, p1) and columns [c0, c1) where next
// differs from what the panel shows. ok is false when nothing changed.
func (d *Dev) dirty(next []byte) (p0, p1, c0, c1 int, ok bool) {
	w := d.rect.Dx()
	p1 = d.rect.Dy() / 8
	c1 = w
	if d.stale {
		return 0, p1, 0, c1, true
	}
	for ; p0 < p1 && bytes.Equal(d.shown[p0*w:(p0+1)*w], next[p0*w:(p0+1)*w]); p0++ {
	}
	for ; p1 > p0 && bytes.Equal(d.shown[(p1-1)*w:p1*w], next[(p1-1)*w:p1*w]); p1-- {
	}
	if p0 == p1 {
		return 0, 0, 0, 0, false
	}
	same := func(col int) bool {
		for p := p0; p < p1; p++ {
			if d.shown[p*w+col] != next[p*w+col] {
				return false
			}
		}
		return true
	}
	for ; c0 < c1 && same(c0); c0++ {
	}
	for ; c1 > c0 && same(c1-1); c1-- {
	}
	return p0, p1, c0, c1, true
}

// flush sends the changed part of next to the controller.
func (d *Dev) flush(next []byte) error {
	p0, p1, c0, c1, ok := d.dirty(next)
	if !ok {
		return nil
	}
	copy(d.shown, next)
	d.stale = false
	w := d.rect.Dx()
	col := byte(c0 + d.colOffset)
	for p := p0; p < p1; p++ {
		if err := d.sendCommand([]byte{_PAGESTARTADDRESS | byte(p), _SETLOWCOLUMN | col&0x0F, _SETHIGHCOLUMN | col>>4}); err != nil {
			d.stale = true
			return err
		}
		if err := d.sendData(d.shown[p*w+c0 : p*w+c1]); err != nil {
			d.stale = true
			return err
		}
	}
	return nil
}

func (d *Dev) sendData(b []byte) error {
	if d.halted {
		if err := d.sendCommand(nil); err != nil {
			return err
		}
	}
	return d.c.Tx(append([]byte{i2cData}, b...), nil)
}

func (d *Dev) sendCommand(b []byte) error {
	if d.halted {
		b = append([]byte{_DISPLAYON}, b...)
	}
	if err := d.c.Tx(append([]byte{i2cCmd}, b...), nil); err != nil {
		return err
	}
	d.halted = false
	return nil
}

// status reads the status byte. Bit 6 is display off, bits 0-3 identify the
// controller: 0x03 or 0x06 for SSD1306, 0x08 for SH1106.
func (d *Dev) status() (byte, error) {
	var r [1]byte
	err := d.c.Tx([]byte{i2cCmd}, r[:])
	return r[0], err
}

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}
