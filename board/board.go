// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package board brings up the host peripherals used by the demos: the I²C
// bus, the panel on it and the indicator LED.
package board

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/oleddemo/config"
	"github.com/GermanBionicSystems/oleddemo/ssd1306"
)

// ErrNoLED is returned when the configured LED pin doesn't exist on this
// host.
var ErrNoLED = errors.New("board: LED pin not found")

// Board holds the opened peripherals.
//
// Display is nil when the panel is disabled in the configuration. LED is nil
// unless it was requested.
type Board struct {
	Display *ssd1306.Dev
	LED     gpio.PinOut

	bus i2c.BusCloser
}

// Open initializes the host drivers and the peripherals described by cfg.
func Open(cfg *config.Values, withLED bool) (*Board, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("board: host init failed: %w", err)
	}
	for _, f := range state.Failed {
		log.Debug().Str("driver", f.D.String()).Err(f.Err).Msg("host driver failed")
	}
	var bus i2c.BusCloser
	if cfg.Display.Enabled {
		if bus, err = i2creg.Open(cfg.Display.Bus); err != nil {
			return nil, fmt.Errorf("board: failed to open I²C bus %q: %w", cfg.Display.Bus, err)
		}
	}
	b, err := attach(cfg, bus, withLED)
	if err != nil && bus != nil {
		_ = bus.Close()
	}
	return b, err
}

// attach sets up the peripherals on an already opened bus. bus may be nil
// when the panel is disabled.
func attach(cfg *config.Values, bus i2c.BusCloser, withLED bool) (*Board, error) {
	b := &Board{bus: bus}
	if bus != nil {
		f, err := cfg.Display.BusSpeed()
		if err != nil {
			return nil, fmt.Errorf("board: %w", err)
		}
		if err := bus.SetSpeed(f); err != nil {
			return nil, fmt.Errorf("board: failed to set bus speed to %s: %w", f, err)
		}
		ev := log.Info().Str("bus", bus.String()).Stringer("speed", f)
		if p, ok := bus.(i2c.Pins); ok {
			if sda := p.SDA(); sda != nil {
				ev = ev.Stringer("sda", sda)
			}
			if scl := p.SCL(); scl != nil {
				ev = ev.Stringer("scl", scl)
			}
		}
		ev.Msg("i2c bus ready")

		opts := ssd1306.Opts{
			W:                cfg.Display.Width,
			H:                cfg.Display.Height,
			Addr:             cfg.Display.Address,
			Sequential:       cfg.Display.Sequential,
			MirrorVertical:   cfg.Display.MirrorVertical,
			MirrorHorizontal: cfg.Display.MirrorHorizontal,
		}
		if b.Display, err = ssd1306.NewI2C(bus, &opts); err != nil {
			return nil, fmt.Errorf("board: %w", err)
		}
		if err := b.Display.SetContrast(cfg.Display.Contrast); err != nil {
			return nil, fmt.Errorf("board: %w", err)
		}
		log.Info().Stringer("display", b.Display).Msg("display ready")
	}
	if withLED {
		p := gpioreg.ByName(cfg.LED.Pin)
		if p == nil {
			return nil, fmt.Errorf("%w: %q", ErrNoLED, cfg.LED.Pin)
		}
		b.LED = p
	}
	return b, nil
}

// Close turns the panel off and releases the bus.
//
// The LED is left as is.
func (b *Board) Close() error {
	var errs []error
	if b.Display != nil {
		errs = append(errs, b.Display.Halt())
	}
	if b.bus != nil {
		errs = append(errs, b.bus.Close())
	}
	return errors.Join(errs...)
}
