// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package input translates platform events into the toolkit's input
// representation. It tracks pointer, modifiers, surface size and scale
// between frames and queues events until the next frame takes them.
package input

import (
	"image"
	"time"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korugui/model"
)

// NewAdapter creates an adapter for a surface of the given physical
// size and pixels per point.
func NewAdapter(width, height int, scale float32) *Adapter {
	if scale <= 0 {
		scale = 1
	}
	return &Adapter{
		size:    image.Pt(width, height),
		scale:   scale,
		focused: true,
		start:   time.Now(),
	}
}

// Adapter accumulates input between frames.
type Adapter struct {
	size  image.Point
	scale float32

	pointer    glm.Vec2
	hasPointer bool
	modifiers  model.Modifiers
	focused    bool

	events []model.InputEvent
	start  time.Time
}

// HandleEvent consumes one platform event. Events the toolkit does not
// model are ignored.
func (a *Adapter) HandleEvent(ev Event) {
	switch e := ev.(type) {
	case PointerMoved:
		a.pointer = a.toPoints(e.X, e.Y)
		a.hasPointer = true
		a.push(model.PointerMovedEvent{Pos: a.pointer})
	case PointerButton:
		if !a.hasPointer {
			return
		}
		a.push(model.PointerButtonEvent{
			Pos:       a.pointer,
			Button:    e.Button,
			Pressed:   e.Pressed,
			Modifiers: a.modifiers,
		})
	case PointerLeft:
		a.hasPointer = false
		a.push(model.PointerGoneEvent{})
	case Scroll:
		a.push(model.ScrollEvent{Delta: glm.Vec2{e.DX / a.scale, e.DY / a.scale}})
	case Key:
		a.modifiers = e.Mods
		if e.Key != model.KeyUnknown {
			a.push(model.KeyEvent{Key: e.Key, Pressed: e.Pressed, Modifiers: e.Mods})
		}
	case Text:
		if e.Text != "" && !a.modifiers.Has(model.ModCtrl) && !a.modifiers.Has(model.ModSuper) {
			a.push(model.TextEvent{Text: e.Text})
		}
	case Resized:
		a.size = image.Pt(e.Width, e.Height)
	case ScaleChanged:
		if e.Scale > 0 {
			a.scale = e.Scale
		}
		a.size = image.Pt(e.Width, e.Height)
	case Focus:
		a.focused = e.Focused
		if !e.Focused {
			a.modifiers = 0
		}
	}
}

// Take returns the input gathered since the previous call and clears
// the event queue. Size, scale, pointer and modifiers carry over.
func (a *Adapter) Take() model.RawInput {
	raw := model.RawInput{
		ScreenRect:     model.Rect{Max: a.LogicalSize()},
		PixelsPerPoint: a.scale,
		Time:           time.Since(a.start).Seconds(),
		Modifiers:      a.modifiers,
		HasFocus:       a.focused,
		Events:         a.events,
	}
	a.events = nil
	return raw
}

// Size returns the physical surface size.
func (a *Adapter) Size() image.Point {
	return a.size
}

// Scale returns pixels per point.
func (a *Adapter) Scale() float32 {
	return a.scale
}

// LogicalSize returns the surface size in points.
func (a *Adapter) LogicalSize() glm.Vec2 {
	return glm.Vec2{float32(a.size.X) / a.scale, float32(a.size.Y) / a.scale}
}

// Pointer returns the last known pointer position in points.
func (a *Adapter) Pointer() (glm.Vec2, bool) {
	return a.pointer, a.hasPointer
}

// Modifiers returns the currently held modifiers.
func (a *Adapter) Modifiers() model.Modifiers {
	return a.modifiers
}

func (a *Adapter) toPoints(x, y float64) glm.Vec2 {
	return glm.Vec2{float32(x) / a.scale, float32(y) / a.scale}
}

func (a *Adapter) push(ev model.InputEvent) {
	a.events = append(a.events, ev)
}
