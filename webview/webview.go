// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package webview mirrors a monochrome panel to web browsers.
//
// Display implements display.Drawer and http.Handler. The stream endpoint
// uses "MJPEG" (https://en.wikipedia.org/wiki/Motion_JPEG): a
// multipart/x-mixed-replace response with a new image part every time a
// frame is drawn. PNG is the default format as it suits computer drawn
// graphics; JPEG can be selected with the "format" URL parameter.
//
// Routes:
//
//	GET /           stream, ?format=png|jpeg
//	GET /frame.png  current frame as PNG
//	GET /frame.jpg  current frame as JPEG
package webview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"net/http"
	"net/textproto"
	"slices"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"
)

// Format is the image encoding sent to clients.
type Format int

// Supported formats.
const (
	PNG Format = iota
	JPEG

	// DefaultFormat is used when neither the options nor the URL select one.
	DefaultFormat = PNG
)

// codec is everything the handlers need to know about a Format.
type codec struct {
	// names are accepted by ParseFormat. The first one is what String returns.
	names []string
	mime  string
	enc   func(w io.Writer, img image.Image) error
}

// Monochrome frames compress extremely well, BestSpeed is plenty.
var codecs = [...]codec{
	PNG: {
		names: []string{"png"},
		mime:  "image/png",
		enc:   (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode,
	},
	JPEG: {
		names: []string{"jpeg", "jpg"},
		mime:  "image/jpeg",
		enc: func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
		},
	},
}

// ParseFormat returns the Format called s: "png", "jpg" or "jpeg".
func ParseFormat(s string) (Format, error) {
	for i := range codecs {
		if slices.Contains(codecs[i].names, s) {
			return Format(i), nil
		}
	}
	return DefaultFormat, fmt.Errorf("webview: unrecognized image format %q", s)
}

func (f Format) codec() *codec {
	if f < 0 || int(f) >= len(codecs) {
		return nil
	}
	return &codecs[f]
}

func (f Format) String() string {
	if c := f.codec(); c != nil {
		return c.names[0]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func (f Format) mimeType() string {
	if c := f.codec(); c != nil {
		return c.mime
	}
	return "application/octet-stream"
}

func (f Format) encode(img image.Image) ([]byte, error) {
	c := f.codec()
	if c == nil {
		return nil, fmt.Errorf("webview: unhandled image format %s", f)
	}
	var buf bytes.Buffer
	if err := c.enc(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Opts for Display.
type Opts struct {
	// W and H are the panel size.
	W, H int
	// Scale enlarges each panel pixel to Scale x Scale image pixels. Defaults
	// to 4.
	Scale int
	// Format is the default stream format.
	Format Format
}

// Display is a display.Drawer served over HTTP.
type Display struct {
	format Format
	scale  int
	router chi.Router

	mu      sync.Mutex
	frame   *image.Gray
	changed chan struct{}
	cache   map[Format][]byte
	halted  chan struct{}
	once    sync.Once
}

// New returns a Display with a black frame.
func New(opts *Opts) *Display {
	scale := opts.Scale
	if scale <= 0 {
		scale = 4
	}
	d := &Display{
		format:  opts.Format,
		scale:   scale,
		frame:   image.NewGray(image.Rect(0, 0, opts.W, opts.H)),
		changed: make(chan struct{}),
		cache:   map[Format][]byte{},
		halted:  make(chan struct{}),
	}
	r := chi.NewRouter()
	r.Get("/", d.serveStream)
	r.Get("/frame.png", d.serveFrame(PNG))
	r.Get("/frame.jpg", d.serveFrame(JPEG))
	d.router = r
	return d
}

func (d *Display) String() string {
	return fmt.Sprintf("WebView{%s}", d.frame.Rect.Max)
}

// Halt implements conn.Resource. It ends all running streams.
func (d *Display) Halt() error {
	d.once.Do(func() { close(d.halted) })
	return nil
}

// ColorModel implements display.Drawer.
func (d *Display) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements display.Drawer.
func (d *Display) Bounds() image.Rectangle {
	return d.frame.Rect
}

// Draw implements display.Drawer and wakes up the streams.
func (d *Display) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	xdraw.Src.Draw(d.frame, r, src, sp)
	clear(d.cache)
	close(d.changed)
	d.changed = make(chan struct{})
	return nil
}

// ServeHTTP implements http.Handler.
func (d *Display) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.router.ServeHTTP(w, r)
}

// snapshot returns the encoded current frame and a channel closed on the
// next Draw.
func (d *Display) snapshot(f Format) ([]byte, <-chan struct{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.cache[f]
	if !ok {
		r := d.frame.Rect
		big := image.NewGray(image.Rect(0, 0, r.Dx()*d.scale, r.Dy()*d.scale))
		xdraw.NearestNeighbor.Scale(big, big.Rect, d.frame, r, xdraw.Src, nil)
		var err error
		if b, err = f.encode(big); err != nil {
			return nil, nil, err
		}
		d.cache[f] = b
	}
	return b, d.changed, nil
}

func (d *Display) serveFrame(f Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, _, err := d.snapshot(f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", f.mimeType())
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(b)
	}
}

func (d *Display) serveStream(w http.ResponseWriter, r *http.Request) {
	f := d.format
	if v := r.URL.Query().Get("format"); v != "" {
		var err error
		if f, err = ParseFormat(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	fw := newFrameWriter(w)
	w.Header().Set("Content-Type", mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{"boundary": fw.boundary}))
	w.Header().Set("Cache-Control", "no-store")
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Type", f.mimeType())
	log.Debug().Str("remote", r.RemoteAddr).Stringer("format", f).Msg("webview: stream started")
	defer log.Debug().Str("remote", r.RemoteAddr).Msg("webview: stream ended")
	for {
		b, changed, err := d.snapshot(f)
		if err != nil {
			// There's no way to report an error in the middle of an image
			// stream; end it.
			log.Error().Err(err).Msg("webview: encoding failed")
			return
		}
		if err := fw.write(hdr, b); err != nil {
			return
		}
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		select {
		case <-changed:
		case <-d.halted:
			return
		case <-r.Context().Done():
			return
		}
	}
}

var _ display.Drawer = &Display{}
var _ http.Handler = &Display{}
