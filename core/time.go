// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	return &Time{
		fps:            cfg.FramesPerSecond,
		fpsTicker:      time.NewTicker(FrameInterval(cfg.FramesPerSecond)),
		eventPollDelay: cfg.EventPollDelay,
		eventTicker:    time.NewTicker(PollInterval(cfg.EventPollDelay)),
	}
}

// FrameInterval is the time between frames at fps, a zero fps runs
// unlimited.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		return time.Nanosecond
	}
	return time.Second / time.Duration(fps)
}

// PollInterval is the time between event polls, at least a millisecond.
func PollInterval(delayMs int) time.Duration {
	if delayMs <= 0 {
		return time.Millisecond
	}
	return time.Duration(delayMs) * time.Millisecond
}

// Time contains all the time services and tickers
type Time struct {
	fps       int
	fpsTicker *time.Ticker

	eventPollDelay int
	eventTicker    *time.Ticker
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// FpsTicker gets the initialized fps ticker
func (t *Time) FpsTicker() *time.Ticker {
	return t.fpsTicker
}

// EventTicker gets the initialized event ticker for the event loop
func (t *Time) EventTicker() *time.Ticker {
	return t.eventTicker
}

// Stop stops both tickers.
func (t *Time) Stop() {
	t.fpsTicker.Stop()
	t.eventTicker.Stop()
}
