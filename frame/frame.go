// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package frame drives the per-frame lifecycle of an immediate-mode
// toolkit session: input is snapshotted at Begin, layout code runs, and
// End collects the frame's meshes, texture changes and cursor request.
package frame

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/korugui/input"
	"github.com/devblok/korugui/model"
)

// Toolkit is the immediate-mode UI session the Context drives.
// Its internal state is opaque to the frame lifecycle.
type Toolkit interface {
	// Begin starts a new UI frame with the given input.
	Begin(in model.RawInput)

	// End finishes the UI frame and returns its output.
	End() model.FrameOutput
}

// State is the lifecycle state of a Context.
type State int

// Context states
const (
	Idle State = iota
	FrameOpen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case FrameOpen:
		return "FrameOpen"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// New creates an idle Context over toolkit, fed by adapter.
func New(toolkit Toolkit, adapter *input.Adapter) *Context {
	if toolkit == nil {
		panic("frame: nil Toolkit")
	}
	if adapter == nil {
		panic("frame: nil input Adapter")
	}
	return &Context{
		toolkit: toolkit,
		adapter: adapter,
	}
}

// Context owns the toolkit session and guards its frame ordering.
// Ordering violations are programming errors and panic.
type Context struct {
	state   State
	toolkit Toolkit
	adapter *input.Adapter
	frames  uint64
}

// HandleEvent forwards a platform event to the input adapter. It is
// applied at the next Begin.
func (c *Context) HandleEvent(ev input.Event) {
	c.adapter.HandleEvent(ev)
}

// Begin snapshots pending input and starts a toolkit frame.
func (c *Context) Begin() {
	if c.state != Idle {
		panic("frame: Begin called while a frame is open, End was skipped")
	}
	raw := c.adapter.Take()
	c.state = FrameOpen
	c.toolkit.Begin(raw)
}

// End finishes the toolkit frame and returns its output.
func (c *Context) End() model.FrameOutput {
	if c.state != FrameOpen {
		panic("frame: End called without a matching Begin")
	}
	out := c.toolkit.End()
	c.state = Idle
	c.frames++

	log.WithFields(log.Fields{
		"frame":      c.frames,
		"primitives": len(out.Primitives),
		"textures":   len(out.Textures.Changes),
	}).Trace("UI frame finished")
	return out
}

// Frame runs layout between Begin and End.
func (c *Context) Frame(layout func()) model.FrameOutput {
	c.Begin()
	layout()
	return c.End()
}

// State returns the current lifecycle state.
func (c *Context) State() State {
	return c.state
}

// Frames returns how many frames have been completed.
func (c *Context) Frames() uint64 {
	return c.frames
}

// Adapter returns the input adapter, for size and scale queries.
func (c *Context) Adapter() *input.Adapter {
	return c.adapter
}

// Toolkit returns the driven toolkit session.
func (c *Context) Toolkit() Toolkit {
	return c.toolkit
}
