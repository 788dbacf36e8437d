// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package imui_test

import (
	"image"
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korugui/bridge"
	"github.com/devblok/korugui/frame"
	"github.com/devblok/korugui/gfx/gfxtest"
	"github.com/devblok/korugui/imui"
	"github.com/devblok/korugui/input"
	"github.com/devblok/korugui/model"
)

func newFrame() (*frame.Context, *imui.Context) {
	ui := imui.New()
	return frame.New(ui, input.NewAdapter(800, 600, 1)), ui
}

func TestFontTextureSentOnce(t *testing.T) {
	c := qt.New(t)
	fc, _ := newFrame()

	out := fc.Frame(func() {})
	c.Assert(out.Textures.Changes, qt.HasLen, 1)
	change := out.Textures.Changes[0]
	c.Assert(change.ID, qt.Equals, model.FontTexture)
	c.Assert(change.IsRemoval(), qt.IsFalse)
	c.Assert(change.Update.Pos, qt.IsNil)

	// the white header lets solid shapes sample the font texture
	c.Assert(change.Update.Image.RGBAAt(0, 0).A, qt.Equals, uint8(255))

	out = fc.Frame(func() {})
	c.Assert(out.Textures.IsEmpty(), qt.IsTrue)
}

func TestShapesBatchByClipAndTexture(t *testing.T) {
	c := qt.New(t)
	fc, ui := newFrame()

	out := fc.Frame(func() {
		ui.FillRect(model.NewRect(0, 0, 10, 10), model.White)
		ui.Text(glm.Vec2{0, 20}, "hi", model.White)
		ui.Image(7, model.NewRect(0, 40, 10, 10), model.White)
		ui.FillRect(model.NewRect(0, 60, 10, 10), model.White)
		ui.WithClip(model.NewRect(0, 0, 100, 100), func() {
			ui.FillRect(model.NewRect(0, 80, 10, 10), model.White)
		})
	})

	textures := []model.TextureID{}
	for _, p := range out.Primitives {
		textures = append(textures, p.Mesh.Texture)
	}
	c.Assert(textures, qt.DeepEquals, []model.TextureID{
		model.FontTexture, 7, model.FontTexture, model.FontTexture,
	})
	c.Assert(out.Primitives[0].Mesh.Vertices, qt.HasLen, 4*3)
	c.Assert(out.Primitives[0].Mesh.Indices, qt.HasLen, 6*3)
	c.Assert(out.Primitives[3].Clip, qt.Equals, model.NewRect(0, 0, 100, 100))
}

func TestClippedOutShapesAreDropped(t *testing.T) {
	c := qt.New(t)
	fc, ui := newFrame()

	out := fc.Frame(func() {
		ui.FillRect(model.NewRect(900, 900, 10, 10), model.White)
		ui.WithClip(model.NewRect(0, 0, 5, 5), func() {
			ui.FillRect(model.NewRect(10, 10, 5, 5), model.White)
		})
		ui.FillRect(model.NewRect(0, 0, 0, 5), model.White)
	})
	c.Assert(out.Primitives, qt.HasLen, 0)
}

func TestButtonClick(t *testing.T) {
	c := qt.New(t)
	fc, ui := newFrame()
	btn := model.NewRect(100, 100, 80, 24)

	fc.HandleEvent(input.PointerMoved{X: 120, Y: 110})
	var clicked bool
	out := fc.Frame(func() { clicked = ui.Button(btn, "OK") })
	c.Assert(clicked, qt.IsFalse)
	c.Assert(out.Cursor, qt.Equals, model.CursorPointingHand)

	fc.HandleEvent(input.PointerButton{Button: model.ButtonPrimary, Pressed: true})
	fc.Frame(func() { clicked = ui.Button(btn, "OK") })
	c.Assert(clicked, qt.IsFalse)
	c.Assert(ui.PointerDown(), qt.IsTrue)

	fc.HandleEvent(input.PointerButton{Button: model.ButtonPrimary, Pressed: false})
	fc.Frame(func() { clicked = ui.Button(btn, "OK") })
	c.Assert(clicked, qt.IsTrue)

	fc.Frame(func() { clicked = ui.Button(btn, "OK") })
	c.Assert(clicked, qt.IsFalse)
}

func TestDragOntoButtonIsNotAClick(t *testing.T) {
	c := qt.New(t)
	fc, ui := newFrame()
	btn := model.NewRect(100, 100, 80, 24)

	fc.HandleEvent(input.PointerMoved{X: 10, Y: 10})
	fc.HandleEvent(input.PointerButton{Button: model.ButtonPrimary, Pressed: true})
	fc.HandleEvent(input.PointerMoved{X: 120, Y: 110})
	fc.HandleEvent(input.PointerButton{Button: model.ButtonPrimary, Pressed: false})

	var clicked bool
	out := fc.Frame(func() { clicked = ui.Button(btn, "OK") })
	c.Assert(clicked, qt.IsFalse)
	c.Assert(out.Cursor, qt.Equals, model.CursorPointingHand)
}

func TestCheckboxToggles(t *testing.T) {
	c := qt.New(t)
	fc, ui := newFrame()
	r := model.NewRect(0, 0, 100, 20)
	value := false

	fc.HandleEvent(input.PointerMoved{X: 5, Y: 10})
	fc.HandleEvent(input.PointerButton{Button: model.ButtonPrimary, Pressed: true})
	fc.HandleEvent(input.PointerButton{Button: model.ButtonPrimary, Pressed: false})
	fc.Frame(func() { ui.Checkbox(r, "vsync", &value) })
	c.Assert(value, qt.IsTrue)
}

func TestTextInputAndKeys(t *testing.T) {
	c := qt.New(t)
	fc, ui := newFrame()

	fc.HandleEvent(input.Text{Text: "ab"})
	fc.HandleEvent(input.Text{Text: "c"})
	fc.HandleEvent(input.Key{Key: model.KeyEnter, Pressed: true})
	fc.HandleEvent(input.Scroll{DX: 0, DY: -3})

	fc.Frame(func() {
		c.Check(ui.TypedText(), qt.Equals, "abc")
		c.Check(ui.KeyPressed(model.KeyEnter), qt.IsTrue)
		c.Check(ui.KeyPressed(model.KeyEscape), qt.IsFalse)
		c.Check(ui.Scroll(), qt.Equals, glm.Vec2{0, -3})
	})
	fc.Frame(func() {
		c.Check(ui.TypedText(), qt.Equals, "")
		c.Check(ui.KeyPressed(model.KeyEnter), qt.IsFalse)
	})
}

func TestTextureLifecycle(t *testing.T) {
	c := qt.New(t)
	fc, ui := newFrame()
	fc.Frame(func() {})

	var id model.TextureID
	out := fc.Frame(func() {
		id = ui.LoadTexture(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	})
	c.Assert(id, qt.Equals, model.TextureID(1))
	c.Assert(id.IsUser(), qt.IsFalse)
	c.Assert(out.Textures.Changes, qt.HasLen, 1)

	out = fc.Frame(func() {
		ui.UpdateTexture(id, image.Pt(1, 1), image.NewRGBA(image.Rect(0, 0, 2, 2)))
		ui.FreeTexture(id)
	})
	c.Assert(out.Textures.Changes, qt.HasLen, 2)
	c.Assert(*out.Textures.Changes[0].Update.Pos, qt.Equals, image.Pt(1, 1))
	c.Assert(out.Textures.Changes[1].IsRemoval(), qt.IsTrue)
}

func TestPopClipUnderflowPanics(t *testing.T) {
	c := qt.New(t)
	fc, ui := newFrame()
	fc.Begin()
	c.Assert(ui.PopClip, qt.PanicMatches, "imui: PopClip without PushClip")
	fc.End()
}

func TestMeasureText(t *testing.T) {
	c := qt.New(t)
	ui := imui.New()
	size := ui.MeasureText("abcd")
	c.Assert(size, qt.Equals, glm.Vec2{28, 13})
}

func TestSingleButtonFrameDrawsOnce(t *testing.T) {
	c := qt.New(t)
	fc, ui := newFrame()
	dev := gfxtest.NewDevice()
	br := bridge.New(dev, bridge.Configuration{FramesInFlight: 3})

	// warm up so the font texture is resident
	out := fc.Frame(func() {})
	c.Assert(br.ApplyDelta(out.Textures), qt.IsNil)

	fc.Begin()
	ui.Button(model.NewRect(350, 288, 100, 24), "Click me")
	out = fc.End()

	c.Assert(out.Primitives, qt.HasLen, 1)
	c.Assert(out.Textures.IsEmpty(), qt.IsTrue)
	c.Assert(br.ApplyDelta(out.Textures), qt.IsNil)

	cb, err := br.BuildCommands(out.Primitives, image.Pt(800, 600), 1)
	c.Assert(err, qt.IsNil)
	rec := cb.(*gfxtest.CommandBuffer)
	c.Assert(rec.Draws(), qt.Equals, 1)
	scissors := rec.Scissors()
	c.Assert(scissors, qt.HasLen, 1)
	c.Assert(scissors[0].In(image.Rect(0, 0, 800, 600)), qt.IsTrue)
}
