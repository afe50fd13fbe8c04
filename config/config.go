// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the demo settings from a TOML file.
//
// Values not present in the file keep their default. A missing file is not
// an error: the defaults describe the common 128x64 I²C module.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
)

// Env is the environment variable naming the config file when the -config
// flag is not set.
const Env = "OLEDDEMO_CONFIG"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid values")

// Values is the whole configuration.
type Values struct {
	DebugLogging bool      `toml:"debug_logging"`
	LogFile      string    `toml:"log_file,omitempty"`
	Display      Display   `toml:"display"`
	Animation    Animation `toml:"animation"`
	Counter      Counter   `toml:"counter"`
	LED          LED       `toml:"led"`
	Preview      Preview   `toml:"preview"`
}

// Display configures the panel and its bus.
type Display struct {
	Enabled bool `toml:"enabled"`
	// Bus is the i2creg name of the bus, empty for the first one.
	Bus              string `toml:"bus"`
	Address          uint16 `toml:"address" validate:"gte=3,lte=119"`
	Width            int    `toml:"width" validate:"gte=8,lte=128"`
	Height           int    `toml:"height" validate:"gte=8,lte=64"`
	Speed            string `toml:"speed" validate:"frequency"`
	MirrorVertical   bool   `toml:"mirror_vertical"`
	MirrorHorizontal bool   `toml:"mirror_horizontal"`
	Sequential       bool   `toml:"sequential"`
	Contrast         uint8  `toml:"contrast"`
}

// Animation configures the bounce loop.
type Animation struct {
	MinOffset int `toml:"min_offset" validate:"ltfield=MaxOffset"`
	MaxOffset int `toml:"max_offset"`
	// Pause is how long the frame at either bound is held.
	Pause Duration `toml:"pause" validate:"gte=0"`
	// Frames stops the loop after that many frames; 0 runs forever.
	Frames int `toml:"frames" validate:"gte=0"`
}

// Counter configures the counter demo.
type Counter struct {
	Lines    []string `toml:"lines" validate:"max=4"`
	Font     string   `toml:"font"`
	FontSize float64  `toml:"font_size" validate:"gt=0"`
	// Interval is the time between two frames; 0 draws as fast as the bus
	// allows.
	Interval Duration `toml:"interval" validate:"gte=0"`
}

// LED configures the indicator of the combined demo.
type LED struct {
	Pin string `toml:"pin" validate:"required"`
}

// Preview configures the panel mirrors.
type Preview struct {
	Terminal bool   `toml:"terminal"`
	HTTP     string `toml:"http,omitempty" validate:"omitempty,hostname_port"`
	Format   string `toml:"format" validate:"oneof=png jpg jpeg"`
}

// Duration is a time.Duration written as "5s" in TOML.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Defaults describe the usual setup: a 128x64 panel at 0x3C
// on a 400kHz bus, a 134 pixels logo bounced between -70 and 0 with a 5s
// pause at each end.
var Defaults = Values{
	Display: Display{
		Enabled:  true,
		Address:  0x3C,
		Width:    128,
		Height:   64,
		Speed:    "400kHz",
		Contrast: 0xFF,
	},
	Animation: Animation{
		MinOffset: -70,
		MaxOffset: 0,
		Pause:     Duration(5 * time.Second),
	},
	Counter: Counter{
		Lines:    []string{"Hello world!", "Hello periph!"},
		Font:     "basic",
		FontSize: 10,
	},
	LED: LED{
		Pin: "GPIO25",
	},
	Preview: Preview{
		Format: "png",
	},
}

// Default returns a deep copy of Defaults.
func Default() Values {
	v := Defaults
	v.Counter.Lines = append([]string(nil), Defaults.Counter.Lines...)
	return v
}

// Load reads the file at path on top of the defaults and validates the
// result. An empty path or a missing file yields the defaults.
func Load(path string) (Values, error) {
	v := Default()
	if path == "" {
		return v, v.Validate()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", path).Msg("config file not found, using defaults")
		return v, v.Validate()
	}
	if err != nil {
		return Values{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := Parse(data, &v); err != nil {
		return Values{}, err
	}
	log.Debug().Str("path", path).Msg("config loaded")
	return v, nil
}

// Parse unmarshals data on top of v and validates the result.
func Parse(data []byte, v *Values) error {
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		return fmt.Errorf("config: failed to parse: %w", err)
	}
	return v.Validate()
}

// Marshal encodes v as TOML.
func Marshal(v *Values) ([]byte, error) {
	return toml.Marshal(v)
}

// BusSpeed returns the parsed bus frequency.
func (d *Display) BusSpeed() (physic.Frequency, error) {
	var f physic.Frequency
	if err := f.Set(d.Speed); err != nil {
		return 0, fmt.Errorf("config: invalid speed %q: %w", d.Speed, err)
	}
	return f, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		var f physic.Frequency
		return f.Set(fl.Field().String()) == nil && f > 0
	})
	return v
}

// Validate checks the values.
func (v *Values) Validate() error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
