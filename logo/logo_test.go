// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package logo

import (
	"image"
	"image/color"
	"testing"
)

func TestDefault(t *testing.T) {
	img, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := img.Bounds(), image.Rect(0, 0, 128, Height); got != want {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}
	// The border is lit, the area next to it is not.
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0xffff {
		t.Errorf("At(0, 0) = %v, want white", img.At(0, 0))
	}
	if got := color.GrayModel.Convert(img.At(2, 2)).(color.Gray); got.Y != 0 {
		t.Errorf("At(2, 2) = %v, want black", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	data := []struct {
		name string
		in   []byte
	}{
		{"nil", nil},
		{"garbage", []byte("not a bitmap")},
		{"truncated", Bytes()[:40]},
	}
	for _, line := range data {
		t.Run(line.name, func(t *testing.T) {
			if img, err := Decode(line.in); err == nil {
				t.Fatalf("Decode() = %v, want error", img.Bounds())
			}
		})
	}
}

func TestBytesIsCopy(t *testing.T) {
	b := Bytes()
	b[0] = 'X'
	if asset[0] != 'B' {
		t.Fatal("Bytes() aliases the embedded asset")
	}
}
