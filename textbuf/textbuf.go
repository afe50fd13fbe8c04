// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package textbuf implements a fixed capacity text buffer.
//
// Writes past the capacity are dropped silently: the prefix that fits is
// kept and Write still reports success, so fmt.Fprintf into a Buffer never
// fails. Truncated tells whether anything was dropped since the last Reset.
package textbuf

import "io"

// DefaultSize is the capacity used for the on-screen counter line.
const DefaultSize = 64

// Buffer is a byte buffer that never grows.
type Buffer struct {
	b         []byte
	n         int
	truncated bool
}

// New returns an empty Buffer of the given capacity.
func New(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	return &Buffer{b: make([]byte, size)}
}

// Write implements io.Writer.
//
// It copies as much of p as fits and always returns len(p), nil.
func (b *Buffer) Write(p []byte) (int, error) {
	n := copy(b.b[b.n:], p)
	b.n += n
	if n < len(p) {
		b.truncated = true
	}
	return len(p), nil
}

// WriteString implements io.StringWriter with the same semantics as Write.
func (b *Buffer) WriteString(s string) (int, error) {
	n := copy(b.b[b.n:], s)
	b.n += n
	if n < len(s) {
		b.truncated = true
	}
	return len(s), nil
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.n = 0
	b.truncated = false
}

// Bytes returns the buffered content. It is valid until the next Write or
// Reset.
func (b *Buffer) Bytes() []byte {
	return b.b[:b.n]
}

func (b *Buffer) String() string {
	return string(b.b[:b.n])
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.b)
}

// Truncated reports whether a write was cut short since the last Reset.
func (b *Buffer) Truncated() bool {
	return b.truncated
}

var _ io.Writer = &Buffer{}
var _ io.StringWriter = &Buffer{}
