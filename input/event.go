// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package input

import "github.com/devblok/korugui/model"

// Event is a platform input or window event. Positions and sizes
// are in physical pixels.
type Event interface{ isEvent() }

// PointerMoved reports the pointer position inside the window.
type PointerMoved struct{ X, Y float64 }

// PointerButton reports a button press or release at the current position.
type PointerButton struct {
	Button  model.PointerButton
	Pressed bool
}

// PointerLeft reports the pointer left the window.
type PointerLeft struct{}

// Scroll reports a scroll delta in pixels.
type Scroll struct{ DX, DY float32 }

// Key reports a key press or release with the modifiers held at the time.
type Key struct {
	Key     model.Key
	Pressed bool
	Mods    model.Modifiers
}

// Text carries committed text input.
type Text struct{ Text string }

// Resized reports a new physical surface size.
type Resized struct{ Width, Height int }

// ScaleChanged reports a new pixels per point factor, along with the
// surface size that goes with it.
type ScaleChanged struct {
	Scale         float32
	Width, Height int
}

// Focus reports the window gaining or losing keyboard focus.
type Focus struct{ Focused bool }

// RedrawRequested is emitted when the platform wants the window redrawn.
type RedrawRequested struct{}

// CloseRequested is emitted when the user asks to close the window.
type CloseRequested struct{}

func (PointerMoved) isEvent()    {}
func (PointerButton) isEvent()   {}
func (PointerLeft) isEvent()     {}
func (Scroll) isEvent()          {}
func (Key) isEvent()             {}
func (Text) isEvent()            {}
func (Resized) isEvent()         {}
func (ScaleChanged) isEvent()    {}
func (Focus) isEvent()           {}
func (RedrawRequested) isEvent() {}
func (CloseRequested) isEvent()  {}
