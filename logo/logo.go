// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package logo bundles the bitmap bounced by the demos.
//
// The asset is 128 pixels wide, matching the panel, and 134 pixels high so
// that scrolling it between offsets 0 and -70 on a 64 pixel high panel shows
// every row once.
package logo

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/bmp"
)

//go:embed logo.bmp
var asset []byte

// Height is the height of the embedded bitmap in pixels.
const Height = 134

// Default decodes the embedded bitmap.
func Default() (image.Image, error) {
	return Decode(asset)
}

// Decode decodes a BMP image.
//
// Only uncompressed 8, 24 and 32 bits images are supported, which is what
// golang.org/x/image/bmp handles.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("logo: empty bitmap")
	}
	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("logo: failed to decode bitmap: %w", err)
	}
	return img, nil
}

// Bytes returns a copy of the embedded asset.
func Bytes() []byte {
	return bytes.Clone(asset)
}
