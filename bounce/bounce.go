// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bounce moves a value back and forth between two bounds.
//
// It is the state machine behind the bouncing logo: an offset and a
// direction. The offset moves by one every step and the direction flips when
// the offset reaches either bound. The caller holds the frame drawn at a
// bound for as long as it wants; see AtBound.
package bounce

import "fmt"

// Direction is the direction the offset moves in.
type Direction int

// Possible directions.
const (
	// Descending decrements the offset; the image moves up.
	Descending Direction = iota
	// Ascending increments the offset; the image moves down.
	Ascending
)

func (d Direction) String() string {
	switch d {
	case Descending:
		return "descending"
	case Ascending:
		return "ascending"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Bouncer is the offset and direction pair.
//
// The zero value is not usable, use New.
type Bouncer struct {
	Min, Max int
	Offset   int
	Dir      Direction
}

// New returns a Bouncer at hi, moving toward lo.
//
// It panics if lo is not lower than hi.
func New(lo, hi int) *Bouncer {
	if lo >= hi {
		panic(fmt.Sprintf("bounce: lower bound (%d) must be lower than upper bound (%d)", lo, hi))
	}
	return &Bouncer{Min: lo, Max: hi, Offset: hi, Dir: Descending}
}

func (b *Bouncer) String() string {
	return fmt.Sprintf("Bouncer{%d in [%d, %d], %s}", b.Offset, b.Min, b.Max, b.Dir)
}

// AtBound reports whether the offset sits on either bound.
func (b *Bouncer) AtBound() bool {
	return b.Offset == b.Min || b.Offset == b.Max
}

// Step moves the offset by one in the current direction.
//
// When the new offset reaches a bound, the direction flips and Step returns
// true. The offset never leaves [Min, Max]: a Bouncer built by hand with an
// offset out of the range is clamped first, then turned around if its
// direction points out of the range.
func (b *Bouncer) Step() bool {
	if b.Offset > b.Max {
		b.Offset = b.Max
	} else if b.Offset < b.Min {
		b.Offset = b.Min
	}
	if b.Dir == Descending && b.Offset <= b.Min {
		b.Offset, b.Dir = b.Min, Ascending
	} else if b.Dir == Ascending && b.Offset >= b.Max {
		b.Offset, b.Dir = b.Max, Descending
	}
	if b.Dir == Descending {
		b.Offset--
	} else {
		b.Offset++
	}
	switch b.Offset {
	case b.Min:
		b.Dir = Ascending
		return true
	case b.Max:
		b.Dir = Descending
		return true
	}
	return false
}
