// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package cli is the shared entry point of the oled* commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"

	"github.com/GermanBionicSystems/oleddemo/board"
	"github.com/GermanBionicSystems/oleddemo/config"
	"github.com/GermanBionicSystems/oleddemo/demo"
	"github.com/GermanBionicSystems/oleddemo/glyph"
	"github.com/GermanBionicSystems/oleddemo/logging"
	"github.com/GermanBionicSystems/oleddemo/logo"
	"github.com/GermanBionicSystems/oleddemo/termview"
	"github.com/GermanBionicSystems/oleddemo/webview"
)

// Variant selects the frame loop.
type Variant int

const (
	// Bounce scrolls the logo.
	Bounce Variant = iota
	// Counter prints an incrementing counter.
	Counter
	// BounceLED scrolls the logo with the LED on.
	BounceLED
)

func (v Variant) String() string {
	switch v {
	case Bounce:
		return "oledbounce"
	case Counter:
		return "oledcounter"
	case BounceLED:
		return "oledbounceled"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Main parses args, sets up logging and runs the loop until it completes or
// the process is interrupted.
func Main(v Variant, args []string) error {
	cfg, err := parse(v, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	closer, err := logging.Setup(&logging.Opts{Debug: cfg.DebugLogging, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info().Stringer("demo", v).Msg("starting")
	return run(ctx, v, &cfg, colorable.NewColorableStdout())
}

// parse loads the configuration file then applies the flags that were set.
func parse(v Variant, args []string) (config.Values, error) {
	fs := flag.NewFlagSet(v.String(), flag.ContinueOnError)
	path := fs.String("config", os.Getenv(config.Env), "path to the TOML configuration file")
	frames := fs.Int("frames", 0, "stop after that many frames, 0 runs forever")
	term := fs.Bool("term", false, "mirror the panel on the terminal")
	addr := fs.String("http", "", "serve a preview of the panel on this address, e.g. :8080")
	verbose := fs.Bool("v", false, "enable debug logs")
	noPanel := fs.Bool("no-panel", false, "don't open the I²C panel")
	if err := fs.Parse(args); err != nil {
		return config.Values{}, err
	}
	if fs.NArg() != 0 {
		return config.Values{}, fmt.Errorf("%s: unexpected argument %q", v, fs.Arg(0))
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return config.Values{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frames":
			cfg.Animation.Frames = *frames
		case "term":
			cfg.Preview.Terminal = *term
		case "http":
			cfg.Preview.HTTP = *addr
		case "v":
			cfg.DebugLogging = *verbose
		case "no-panel":
			cfg.Display.Enabled = !*noPanel
		}
	})
	if err := cfg.Validate(); err != nil {
		return config.Values{}, err
	}
	return cfg, nil
}

// run opens the peripherals and previews, then runs the loop.
func run(ctx context.Context, v Variant, cfg *config.Values, term io.Writer) error {
	b, err := board.Open(cfg, v == BounceLED)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close the board")
		}
	}()

	w, h := cfg.Display.Width, cfg.Display.Height
	var sinks []display.Drawer
	if b.Display != nil {
		sinks = append(sinks, b.Display)
	}
	if cfg.Preview.Terminal {
		sinks = append(sinks, termview.New(&termview.Opts{W: w, H: h, Out: term}))
	}
	if cfg.Preview.HTTP != "" {
		wv, shutdown, err := serve(cfg.Preview.HTTP, cfg.Preview.Format, w, h)
		if err != nil {
			return err
		}
		defer shutdown()
		sinks = append(sinks, wv)
	}
	if len(sinks) == 0 {
		return errors.New("no display: enable the panel or a preview")
	}

	opts := demo.Options{
		Sinks:     sinks,
		W:         w,
		H:         h,
		MinOffset: cfg.Animation.MinOffset,
		MaxOffset: cfg.Animation.MaxOffset,
		Pause:     time.Duration(cfg.Animation.Pause),
		Interval:  time.Duration(cfg.Counter.Interval),
		Lines:     cfg.Counter.Lines,
		LED:       b.LED,
		Frames:    cfg.Animation.Frames,
	}
	if v == Counter {
		if opts.Face, err = glyph.Face(cfg.Counter.Font, cfg.Counter.FontSize); err != nil {
			return err
		}
	}
	c, err := demo.New(&opts)
	if err != nil {
		return err
	}
	switch v {
	case Bounce, BounceLED:
		err = demo.RunBounce(ctx, c, logo.Default, v == BounceLED)
	case Counter:
		err = c.Counter(ctx)
	default:
		err = fmt.Errorf("unknown variant %s", v)
	}
	log.Info().Int("frames", c.Frames()).Msg("done")
	return err
}

// serve starts the HTTP preview on addr.
func serve(addr, format string, w, h int) (*webview.Display, func(), error) {
	f, err := webview.ParseFormat(format)
	if err != nil {
		return nil, nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("preview: %w", err)
	}
	wv := webview.New(&webview.Opts{W: w, H: h, Format: f})
	srv := &http.Server{Handler: wv, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("preview server failed")
		}
	}()
	log.Info().Stringer("addr", ln.Addr()).Msg("serving preview")
	shutdown := func() {
		// Streams only end once the display is halted.
		_ = wv.Halt()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("preview shutdown")
		}
	}
	return wv, shutdown, nil
}
