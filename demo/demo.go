// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package demo implements the frame loops of the OLED demos.
//
// A Context owns the frame buffer, the displays it is flushed to, the delay
// used for pauses and the optional LED. It is used by a single goroutine.
package demo

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/GermanBionicSystems/oleddemo/bounce"
	"github.com/GermanBionicSystems/oleddemo/countdown"
	"github.com/GermanBionicSystems/oleddemo/glyph"
	"github.com/GermanBionicSystems/oleddemo/textbuf"
)

// Delayer blocks for a duration. countdown.Timer implements it.
type Delayer interface {
	Delay(ctx context.Context, d time.Duration) error
}

// Options configures a Context.
type Options struct {
	// Sinks receive every frame. At least one is required.
	Sinks []display.Drawer
	// W and H are the frame size. Default to 128x64.
	W, H int

	// MinOffset and MaxOffset bound the vertical logo offset. Default to
	// -70 and 0, the logo being 70 pixels taller than the panel.
	MinOffset, MaxOffset int
	// Pause is how long the frame at either bound is held.
	Pause time.Duration
	// Interval is the time between two counter frames.
	Interval time.Duration
	// Delay defaults to a countdown.Timer on the real clock.
	Delay Delayer

	// Face defaults to basicfont.Face7x13.
	Face font.Face
	// Lines are drawn above the counter.
	Lines []string

	// LED is driven high by BounceLED.
	LED gpio.PinOut

	// Frames stops the loops after that many frames. 0 runs forever.
	Frames int
}

// Context is the state shared by the frame loops.
type Context struct {
	frame  *image1bit.VerticalLSB
	sinks  []display.Drawer
	delay  Delayer
	led    gpio.PinOut
	pause  time.Duration
	every  time.Duration
	face   font.Face
	lines  []string
	limit  int
	bounce *bounce.Bouncer
	text   *textbuf.Buffer

	counter uint32
	frames  int
}

// New returns a Context ready to run one of the loops.
func New(opts *Options) (*Context, error) {
	if len(opts.Sinks) == 0 {
		return nil, errors.New("demo: no display")
	}
	w, h := opts.W, opts.H
	if w == 0 && h == 0 {
		w, h = 128, 64
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("demo: invalid frame size %dx%d", w, h)
	}
	lo, hi := opts.MinOffset, opts.MaxOffset
	if lo == 0 && hi == 0 {
		lo = -70
	}
	if lo >= hi {
		return nil, fmt.Errorf("demo: invalid offset range [%d, %d]", lo, hi)
	}
	if opts.Pause < 0 || opts.Interval < 0 {
		return nil, errors.New("demo: negative delay")
	}
	if opts.Frames < 0 {
		return nil, fmt.Errorf("demo: invalid frame count %d", opts.Frames)
	}
	c := &Context{
		frame:  image1bit.NewVerticalLSB(image.Rect(0, 0, w, h)),
		sinks:  append([]display.Drawer(nil), opts.Sinks...),
		delay:  opts.Delay,
		led:    opts.LED,
		pause:  opts.Pause,
		every:  opts.Interval,
		face:   opts.Face,
		lines:  append([]string(nil), opts.Lines...),
		limit:  opts.Frames,
		bounce: bounce.New(lo, hi),
		text:   textbuf.New(textbuf.DefaultSize),
	}
	if c.delay == nil {
		c.delay = countdown.New(nil)
	}
	if c.face == nil {
		c.face = basicfont.Face7x13
	}
	return c, nil
}

// Frames returns the number of frames drawn so far.
func (c *Context) Frames() int {
	return c.frames
}

// Bounce scrolls img up and down across the frame, holding it for the pause
// each time it reaches the top or the bottom.
//
// It returns nil when ctx is canceled, after halting the displays.
func (c *Context) Bounce(ctx context.Context, img image.Image) error {
	for c.more() {
		if ctx.Err() != nil {
			return c.halt()
		}
		y := c.bounce.Offset
		c.erase()
		sp := img.Bounds().Min.Sub(image.Pt(0, y))
		draw.Draw(c.frame, c.frame.Rect, img, sp, draw.Src)
		if err := c.flush(); err != nil {
			return err
		}
		log.Info().Int("y", y).Msg("frame")
		if c.bounce.AtBound() {
			if err := c.delay.Delay(ctx, c.pause); err != nil {
				return c.stop(ctx, err)
			}
		}
		c.bounce.Step()
		c.frames++
	}
	return nil
}

// BounceLED drives the LED high, then runs Bounce.
func (c *Context) BounceLED(ctx context.Context, img image.Image) error {
	if c.led == nil {
		return errors.New("demo: no LED")
	}
	if err := c.led.Out(gpio.High); err != nil {
		return fmt.Errorf("demo: failed to drive %s high: %w", c.led, err)
	}
	log.Info().Stringer("led", c.led).Msg("led on")
	return c.Bounce(ctx, img)
}

// Counter draws the static lines followed by an incrementing counter.
//
// The counter is a uint32 and wraps to 0 after 4294967295.
func (c *Context) Counter(ctx context.Context) error {
	lines := make([]string, len(c.lines)+1)
	copy(lines, c.lines)
	for c.more() {
		if ctx.Err() != nil {
			return c.halt()
		}
		c.format()
		lines[len(lines)-1] = c.text.String()
		c.erase()
		glyph.DrawLines(c.frame, c.face, image.Point{}, lines...)
		if err := c.flush(); err != nil {
			return err
		}
		log.Info().Uint32("counter", c.counter).Msg("frame")
		c.counter++
		c.frames++
		if c.every > 0 {
			if err := c.delay.Delay(ctx, c.every); err != nil {
				return c.stop(ctx, err)
			}
		}
	}
	return nil
}

// RunBounce decodes the logo then runs Bounce, or BounceLED when led is
// true. Nothing is drawn when decoding fails.
func RunBounce(ctx context.Context, c *Context, decode func() (image.Image, error), led bool) error {
	img, err := decode()
	if err != nil {
		return err
	}
	if led {
		return c.BounceLED(ctx, img)
	}
	return c.Bounce(ctx, img)
}

// format writes the counter line in the text buffer.
func (c *Context) format() {
	c.text.Reset()
	fmt.Fprintf(c.text, "counter: %d", c.counter)
	if c.text.Truncated() {
		log.Debug().Int("cap", c.text.Cap()).Msg("counter line truncated")
	}
}

func (c *Context) more() bool {
	return c.limit == 0 || c.frames < c.limit
}

func (c *Context) erase() {
	clear(c.frame.Pix)
}

func (c *Context) flush() error {
	for _, s := range c.sinks {
		if err := s.Draw(s.Bounds(), c.frame, image.Point{}); err != nil {
			return fmt.Errorf("demo: failed to draw on %s: %w", s, err)
		}
	}
	return nil
}

// stop handles a failed delay. A cancellation halts the displays and is not
// an error.
func (c *Context) stop(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return c.halt()
	}
	return fmt.Errorf("demo: delay failed: %w", err)
}

func (c *Context) halt() error {
	var errs []error
	for _, s := range c.sinks {
		errs = append(errs, s.Halt())
	}
	return errors.Join(errs...)
}
