// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package input_test

import (
	"image"
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korugui/input"
	"github.com/devblok/korugui/model"
)

func TestPointerIsConvertedToPoints(t *testing.T) {
	c := qt.New(t)
	a := input.NewAdapter(1600, 1200, 2)

	a.HandleEvent(input.PointerMoved{X: 200, Y: 100})
	a.HandleEvent(input.PointerButton{Button: model.ButtonPrimary, Pressed: true})

	raw := a.Take()
	c.Assert(raw.ScreenRect, qt.Equals, model.NewRect(0, 0, 800, 600))
	c.Assert(raw.PixelsPerPoint, qt.Equals, float32(2))
	c.Assert(raw.Events, qt.DeepEquals, []model.InputEvent{
		model.PointerMovedEvent{Pos: glm.Vec2{100, 50}},
		model.PointerButtonEvent{Pos: glm.Vec2{100, 50}, Button: model.ButtonPrimary, Pressed: true},
	})
}

func TestTakeClearsEventsOnly(t *testing.T) {
	c := qt.New(t)
	a := input.NewAdapter(800, 600, 1)

	a.HandleEvent(input.PointerMoved{X: 10, Y: 20})
	a.HandleEvent(input.Key{Key: model.KeyEnter, Pressed: true, Mods: model.ModShift})
	c.Assert(a.Take().Events, qt.HasLen, 2)

	raw := a.Take()
	c.Assert(raw.Events, qt.HasLen, 0)
	c.Assert(raw.Modifiers, qt.Equals, model.ModShift)
	pos, ok := a.Pointer()
	c.Assert(ok, qt.IsTrue)
	c.Assert(pos, qt.Equals, glm.Vec2{10, 20})
}

func TestUnmodelledEventsAreIgnored(t *testing.T) {
	c := qt.New(t)
	a := input.NewAdapter(800, 600, 1)

	a.HandleEvent(input.RedrawRequested{})
	a.HandleEvent(input.CloseRequested{})
	a.HandleEvent(nil)

	raw := a.Take()
	c.Assert(raw.Events, qt.HasLen, 0)
	c.Assert(a.Size(), qt.Equals, image.Pt(800, 600))
}

func TestButtonWithoutPointerIsDropped(t *testing.T) {
	c := qt.New(t)
	a := input.NewAdapter(800, 600, 1)

	a.HandleEvent(input.PointerButton{Button: model.ButtonPrimary, Pressed: true})
	c.Assert(a.Take().Events, qt.HasLen, 0)

	a.HandleEvent(input.PointerMoved{X: 1, Y: 1})
	a.HandleEvent(input.PointerLeft{})
	a.HandleEvent(input.PointerButton{Button: model.ButtonPrimary, Pressed: false})
	c.Assert(a.Take().Events, qt.DeepEquals, []model.InputEvent{
		model.PointerMovedEvent{Pos: glm.Vec2{1, 1}},
		model.PointerGoneEvent{},
	})
}

func TestResizeAndScaleAreReadAtNextTake(t *testing.T) {
	c := qt.New(t)
	a := input.NewAdapter(800, 600, 1)

	a.HandleEvent(input.Resized{Width: 1024, Height: 768})
	c.Assert(a.Take().ScreenRect, qt.Equals, model.NewRect(0, 0, 1024, 768))

	a.HandleEvent(input.ScaleChanged{Scale: 2, Width: 2048, Height: 1536})
	raw := a.Take()
	c.Assert(raw.PixelsPerPoint, qt.Equals, float32(2))
	c.Assert(raw.ScreenRect, qt.Equals, model.NewRect(0, 0, 1024, 768))

	a.HandleEvent(input.ScaleChanged{Scale: 0, Width: 100, Height: 100})
	c.Assert(a.Scale(), qt.Equals, float32(2))
}

func TestTextIsSuppressedWithShortcutModifiers(t *testing.T) {
	c := qt.New(t)
	a := input.NewAdapter(800, 600, 1)

	a.HandleEvent(input.Text{Text: "a"})
	a.HandleEvent(input.Key{Key: model.KeyUnknown, Pressed: true, Mods: model.ModCtrl})
	a.HandleEvent(input.Text{Text: "c"})

	c.Assert(a.Take().Events, qt.DeepEquals, []model.InputEvent{
		model.TextEvent{Text: "a"},
	})
	c.Assert(a.Modifiers(), qt.Equals, model.ModCtrl)

	a.HandleEvent(input.Focus{Focused: false})
	raw := a.Take()
	c.Assert(raw.HasFocus, qt.IsFalse)
	c.Assert(raw.Modifiers, qt.Equals, model.Modifiers(0))
}

func TestScrollIsScaled(t *testing.T) {
	c := qt.New(t)
	a := input.NewAdapter(800, 600, 2)
	a.HandleEvent(input.Scroll{DX: 0, DY: -100})
	c.Assert(a.Take().Events, qt.DeepEquals, []model.InputEvent{
		model.ScrollEvent{Delta: glm.Vec2{0, -50}},
	})
}
