// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

var initSSD1306 = []byte{
	0x00,
	0xAE, 0xD3, 0x00, 0x40, 0xA1, 0xC8, 0xDA, 0x12, 0x81, 0xFF, 0xA4, 0xA6,
	0xD5, 0xF0, 0x8D, 0x14, 0xD9, 0xF1, 0xDB, 0x40, 0x2E, 0xA8, 0x3F, 0x20,
	0x00, 0x21, 0x00, 0x7F, 0x22, 0x00, 0x07, 0xAF,
}

// openOps returns the I/O of NewI2C for a controller reporting status id.
func openOps(id byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: 0x3C, W: []byte{0x00}, R: []byte{id}},
		{Addr: 0x3C, W: initSSD1306},
	}
}

// pageOps returns the I/O to send columns [c0, c1) of page p of pix.
func pageOps(p, c0, c1, colOffset int, pix []byte) []i2ctest.IO {
	col := byte(c0 + colOffset)
	return []i2ctest.IO{
		{Addr: 0x3C, W: []byte{0x00, 0xB0 | byte(p), col & 0x0F, 0x10 | col>>4}},
		{Addr: 0x3C, W: append([]byte{0x40}, pix[p*128+c0:p*128+c1]...)},
	}
}

func fullFrameOps(colOffset int, pix []byte) []i2ctest.IO {
	var ops []i2ctest.IO
	for p := 0; p < 8; p++ {
		ops = append(ops, pageOps(p, 0, 128, colOffset, pix)...)
	}
	return ops
}

func TestNewI2C(t *testing.T) {
	data := []struct {
		id      byte
		variant variant
		offset  int
	}{
		{0x06, _SSD1306, 0},
		{0x43, _SSD1306, 0},
		{0x08, _SH1106, 2},
	}
	for _, line := range data {
		bus := &i2ctest.Playback{Ops: openOps(line.id), DontPanic: true}
		opts := DefaultOpts
		dev, err := NewI2C(bus, &opts)
		if err != nil {
			t.Fatal(err)
		}
		if dev.variant != line.variant || dev.colOffset != line.offset {
			t.Errorf("id %#x: got %s offset %d, want %s offset %d", line.id, dev.variant, dev.colOffset, line.variant, line.offset)
		}
		if got, want := dev.Bounds(), image.Rect(0, 0, 128, 64); got != want {
			t.Errorf("Bounds() = %v, want %v", got, want)
		}
		if dev.ColorModel() != image1bit.BitModel {
			t.Error("ColorModel() is not image1bit.BitModel")
		}
		if s := dev.String(); s == "" {
			t.Error("String() is empty")
		}
		if err := bus.Close(); err != nil {
			t.Error(err)
		}
	}
}

type noReadBus struct {
	i2ctest.Playback
}

func (n *noReadBus) Tx(addr uint16, w, r []byte) error {
	if len(r) != 0 {
		return errors.New("read not supported")
	}
	return n.Playback.Tx(addr, w, r)
}

func TestNewI2CStatusFails(t *testing.T) {
	// Without a status byte the controller is assumed to be a SSD1306.
	bus := &noReadBus{Playback: i2ctest.Playback{Ops: openOps(0x08)[1:], DontPanic: true}}
	opts := DefaultOpts
	dev, err := NewI2C(bus, &opts)
	if err != nil {
		t.Fatal(err)
	}
	if dev.variant != _SSD1306 {
		t.Fatalf("variant = %s", dev.variant)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewI2CInvalid(t *testing.T) {
	data := []Opts{
		{W: 0, H: 64},
		{W: 130, H: 64},
		{W: 128, H: 60},
		{W: 128, H: 128},
	}
	for _, o := range data {
		if _, err := NewI2C(&i2ctest.Playback{DontPanic: true}, &o); err == nil {
			t.Errorf("NewI2C(%dx%d) didn't fail", o.W, o.H)
		}
	}
}

func TestNewI2CInitFails(t *testing.T) {
	bus := &i2ctest.Playback{Ops: openOps(0x06)[:1], DontPanic: true}
	opts := DefaultOpts
	if _, err := NewI2C(bus, &opts); err == nil {
		t.Fatal("NewI2C() didn't fail")
	}
}

func TestInitSequenceOptions(t *testing.T) {
	o := Opts{W: 128, H: 32, Sequential: true, MirrorVertical: true, MirrorHorizontal: true, SwapTopBottom: true}
	got := initSequence(&o)
	want := []byte{
		0xAE, 0xD3, 0x00, 0x40, 0xA0, 0xC0, 0xDA, 0x22, 0x81, 0xFF, 0xA4, 0xA6,
		0xD5, 0xF0, 0x8D, 0x14, 0xD9, 0xF1, 0xDB, 0x40, 0x2E, 0xA8, 0x1F, 0x20,
		0x00, 0x21, 0x00, 0x7F, 0x22, 0x00, 0x03, 0xAF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("initSequence() mismatch (-want +got):\n%s", diff)
	}
}

func TestDrawDifferential(t *testing.T) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	img.SetBit(0, 0, image1bit.On)
	first := append([]byte(nil), img.Pix...)

	// Light a pixel on page 2, columns 10 and 11.
	img.SetBit(10, 17, image1bit.On)
	img.SetBit(11, 20, image1bit.On)
	second := append([]byte(nil), img.Pix...)

	ops := openOps(0x06)
	ops = append(ops, fullFrameOps(0, first)...)
	ops = append(ops, pageOps(2, 10, 12, 0, second)...)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	opts := DefaultOpts
	dev, err := NewI2C(bus, &opts)
	if err != nil {
		t.Fatal(err)
	}

	img.Pix = first
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	img.Pix = second
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	// Same frame again: nothing is sent.
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDrawSH1106Offset(t *testing.T) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for x := 0; x < 128; x++ {
		img.SetBit(x, 63, image1bit.On)
	}
	// Column 126 + 2 must carry into the high nibble.
	ops := openOps(0x08)
	ops = append(ops, fullFrameOps(2, img.Pix)...)
	img2 := image1bit.NewVerticalLSB(img.Rect)
	copy(img2.Pix, img.Pix)
	img2.SetBit(126, 0, image1bit.On)
	ops = append(ops, pageOps(0, 126, 127, 2, img2.Pix)...)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	opts := DefaultOpts
	dev, err := NewI2C(bus, &opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if err := dev.Draw(dev.Bounds(), img2, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	if got := ops[len(ops)-2].W; got[2] != 0x00 || got[3] != 0x18 {
		t.Fatalf("column address = %#x %#x, want 0x00 0x18", got[2], got[3])
	}
}

func TestDrawConvert(t *testing.T) {
	// A non image1bit source goes through the scratch frame.
	src := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = 0xFF
	}
	want := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for x := 0; x < 8; x++ {
		want.Pix[x] = 0xFF
	}
	ops := openOps(0x06)
	ops = append(ops, fullFrameOps(0, want.Pix)...)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	opts := DefaultOpts
	dev, err := NewI2C(bus, &opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Draw(image.Rect(0, 0, 8, 8), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWrite(t *testing.T) {
	pix := make([]byte, 1024)
	pix[1023] = 0x80
	ops := openOps(0x06)
	ops = append(ops, fullFrameOps(0, pix)...)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	opts := DefaultOpts
	dev, err := NewI2C(bus, &opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dev.Write(pix[:10]); err == nil {
		t.Fatal("Write() with a short buffer didn't fail")
	}
	if n, err := dev.Write(pix); n != 1024 || err != nil {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCommands(t *testing.T) {
	ops := openOps(0x06)
	ops = append(ops,
		i2ctest.IO{Addr: 0x3C, W: []byte{0x00, 0x81, 0x7F}},
		i2ctest.IO{Addr: 0x3C, W: []byte{0x00, 0xA7}},
		i2ctest.IO{Addr: 0x3C, W: []byte{0x00, 0xA6}},
		i2ctest.IO{Addr: 0x3C, W: []byte{0x00, 0xAE}},
		// Halted: the next command turns the panel back on.
		i2ctest.IO{Addr: 0x3C, W: []byte{0x00, 0xAF, 0x81, 0xFF}},
	)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	opts := DefaultOpts
	dev, err := NewI2C(bus, &opts)
	if err != nil {
		t.Fatal(err)
	}
	steps := []func() error{
		func() error { return dev.SetContrast(0x7F) },
		func() error { return dev.Invert(true) },
		func() error { return dev.Invert(false) },
		dev.Halt,
		func() error { return dev.SetContrast(0xFF) },
	}
	for i, f := range steps {
		if err := f(); err != nil {
			t.Fatalf("#%d: %v", i, err)
		}
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

type failingBus struct {
	i2ctest.Playback
	failAfter int
}

func (f *failingBus) Tx(addr uint16, w, r []byte) error {
	if f.Count >= f.failAfter {
		return errors.New("bus error")
	}
	return f.Playback.Tx(addr, w, r)
}

func TestDrawBusError(t *testing.T) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	bus := &failingBus{Playback: i2ctest.Playback{Ops: openOps(0x06), DontPanic: true}, failAfter: 2}
	opts := DefaultOpts
	dev, err := NewI2C(bus, &opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err == nil {
		t.Fatal("Draw() didn't fail")
	}
	if !dev.stale {
		t.Fatal("a failed flush must resend the whole frame")
	}
}
