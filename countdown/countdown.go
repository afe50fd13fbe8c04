// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package countdown implements a polled countdown timer.
//
// A Timer is started with a duration and then polled with Wait, which
// returns ErrWouldBlock until the duration elapsed. Block polls until expiry
// and is what the demos use to hold a frame.
//
// Time comes from a clockwork.Clock so tests can drive it with a fake clock.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrWouldBlock is returned by Wait while the countdown is running.
var ErrWouldBlock = errors.New("countdown: would block")

// ErrNotStarted is returned by Wait when Start was never called.
var ErrNotStarted = errors.New("countdown: not started")

// DefaultPollInterval is the time slept between two polls in Block.
const DefaultPollInterval = time.Millisecond

// Timer is a one shot countdown.
type Timer struct {
	clock    clockwork.Clock
	poll     time.Duration
	deadline time.Time
	started  bool
}

// New returns a Timer reading time from clock. A nil clock means the real
// clock.
func New(clock clockwork.Clock) *Timer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timer{clock: clock, poll: DefaultPollInterval}
}

// SetPollInterval changes the time slept between two polls in Block.
func (t *Timer) SetPollInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("countdown: invalid poll interval %s", d)
	}
	t.poll = d
	return nil
}

func (t *Timer) String() string {
	if !t.started {
		return "countdown.Timer{stopped}"
	}
	return fmt.Sprintf("countdown.Timer{%s left}", t.Remaining())
}

// Start (re)starts the countdown for d.
func (t *Timer) Start(d time.Duration) {
	t.deadline = t.clock.Now().Add(d)
	t.started = true
}

// Remaining returns the time left, or 0 once expired.
func (t *Timer) Remaining() time.Duration {
	if !t.started {
		return 0
	}
	if r := t.clock.Until(t.deadline); r > 0 {
		return r
	}
	return 0
}

// Wait returns nil once the countdown expired and ErrWouldBlock before.
//
// It never blocks.
func (t *Timer) Wait() error {
	if !t.started {
		return ErrNotStarted
	}
	if t.clock.Now().Before(t.deadline) {
		return ErrWouldBlock
	}
	return nil
}

// Block polls Wait until the countdown expired or ctx is done.
func (t *Timer) Block(ctx context.Context) error {
	for {
		err := t.Wait()
		if err != ErrWouldBlock {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		t.clock.Sleep(t.poll)
	}
}

// Delay starts the countdown for d and blocks until it expired.
func (t *Timer) Delay(ctx context.Context, d time.Duration) error {
	t.Start(d)
	return t.Block(ctx)
}
