// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// RawInput is the input snapshot the toolkit receives when a frame
// begins. All positions are in points.
type RawInput struct {
	ScreenRect     Rect
	PixelsPerPoint float32
	Time           float64
	Modifiers      Modifiers
	HasFocus       bool
	Events         []InputEvent
}

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

// Modifier keys
const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Has reports whether all of m2 are held.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// PointerButton identifies a mouse button.
type PointerButton int

// Pointer buttons
const (
	ButtonPrimary PointerButton = iota
	ButtonSecondary
	ButtonMiddle
)

// Key identifies a keyboard key the toolkit understands.
type Key int

// Keys, a subset the toolkit reacts to.
const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeySpace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

// InputEvent is one event of a RawInput.
type InputEvent interface {
	isInputEvent()
}

// PointerMovedEvent reports a new pointer position.
type PointerMovedEvent struct {
	Pos glm.Vec2
}

// PointerButtonEvent reports a press or release at a position.
type PointerButtonEvent struct {
	Pos       glm.Vec2
	Button    PointerButton
	Pressed   bool
	Modifiers Modifiers
}

// PointerGoneEvent reports the pointer left the window.
type PointerGoneEvent struct{}

// ScrollEvent reports a scroll delta in points.
type ScrollEvent struct {
	Delta glm.Vec2
}

// KeyEvent reports a key press or release.
type KeyEvent struct {
	Key       Key
	Pressed   bool
	Modifiers Modifiers
}

// TextEvent carries committed text input.
type TextEvent struct {
	Text string
}

func (PointerMovedEvent) isInputEvent()  {}
func (PointerButtonEvent) isInputEvent() {}
func (PointerGoneEvent) isInputEvent()   {}
func (ScrollEvent) isInputEvent()        {}
func (KeyEvent) isInputEvent()           {}
func (TextEvent) isInputEvent()          {}

// CursorIcon is the pointer shape the UI requests for the window.
type CursorIcon int

// Cursor icons
const (
	CursorDefault CursorIcon = iota
	CursorNone
	CursorPointingHand
	CursorText
	CursorMove
	CursorCrosshair
	CursorWait
	CursorNotAllowed
	CursorResizeHorizontal
	CursorResizeVertical
)
