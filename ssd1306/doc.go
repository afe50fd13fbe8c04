// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306 drives a monochrome OLED panel through a SSD1306 or SH1106
// controller over I²C.
//
// The driver keeps a copy of what the panel shows. Draw only sends the
// smallest band of pages and columns that changed since the previous frame,
// which matters on I²C: at 400kHz a full 128x64 frame takes about 25ms.
//
// The SH1106 is detected from its status byte and handled transparently; its
// RAM is 132 columns wide with the panel starting at column 2.
//
// # Datasheets
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
//
// https://cdn.velleman.eu/downloads/29/infosheets/sh1106_datasheet.pdf
package ssd1306
