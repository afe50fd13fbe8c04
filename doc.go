// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oleddemo contains small demos driving a 128x64 SSD1306 OLED panel
// over I²C.
//
// The commands live in cmd/: oledbounce scrolls a logo up and down,
// oledcounter prints an incrementing counter and oledbounceled does the
// former with an indicator LED on. Each of them can mirror the panel on the
// terminal or over HTTP, which makes them usable on a host without a panel.
//
// The frame loops are in package demo. Package ssd1306 is the panel driver.
package oleddemo
