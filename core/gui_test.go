// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/korugui/core"
	"github.com/devblok/korugui/frame"
	"github.com/devblok/korugui/gfx"
	"github.com/devblok/korugui/gfx/gfxtest"
	"github.com/devblok/korugui/imui"
	"github.com/devblok/korugui/input"
	"github.com/devblok/korugui/model"
)

type fakeWindow struct {
	cursors []model.CursorIcon
	err     error
}

func (w *fakeWindow) SetCursor(icon model.CursorIcon) error {
	w.cursors = append(w.cursors, icon)
	return w.err
}

func newGui(cfg core.GuiConfiguration) (*core.Gui, *gfxtest.Device) {
	dev := gfxtest.NewDevice()
	return core.NewGui(cfg, dev, 800, 600, 1), dev
}

func TestNewGuiValidates(t *testing.T) {
	c := qt.New(t)
	dev := gfxtest.NewDevice()
	c.Assert(func() { core.NewGui(core.GuiConfiguration{}, nil, 1, 1, 1) }, qt.PanicMatches, "core: NewGui with nil Device")
	c.Assert(func() { core.NewGui(core.GuiConfiguration{}, dev, 0, 600, 1) }, qt.PanicMatches, "core: NewGui with empty surface 0x600")
	c.Assert(func() { core.NewGui(core.GuiConfiguration{}, dev, 800, 600, 0) }, qt.PanicMatches, "core: NewGui with scale 0, must be above zero")

	// a configured scale factor stands in for a missing window scale
	g := core.NewGui(core.GuiConfiguration{ScaleFactor: 2}, dev, 800, 600, 0)
	c.Assert(g.Input().Scale(), qt.Equals, float32(2))
}

func TestFrameDrawsButton(t *testing.T) {
	c := qt.New(t)
	g, dev := newGui(core.GuiConfiguration{FramesInFlight: 2})
	win := &fakeWindow{}

	g.Update(input.PointerMoved{X: 400, Y: 300})
	var clicked bool
	g.ImmediateUI(func(ui *imui.Context) {
		c.Assert(g.State(), qt.Equals, frame.FrameOpen)
		clicked = ui.Button(model.NewRect(350, 288, 100, 24), "Click me")
	})
	cb, err := g.Draw(win, image.Pt(800, 600))
	c.Assert(err, qt.IsNil)
	c.Assert(clicked, qt.IsFalse)
	c.Assert(g.State(), qt.Equals, frame.Idle)

	rec := cb.(*gfxtest.CommandBuffer)
	c.Assert(rec.Draws(), qt.Equals, 1)
	c.Assert(rec.Scissors(), qt.DeepEquals, []image.Rectangle{image.Rect(0, 0, 800, 600)})
	c.Assert(dev.Images, qt.HasLen, 1)
	c.Assert(win.cursors, qt.DeepEquals, []model.CursorIcon{model.CursorPointingHand})

	// the same cursor is not applied again
	g.ImmediateUI(func(ui *imui.Context) {
		ui.Button(model.NewRect(350, 288, 100, 24), "Click me")
	})
	_, err = g.Draw(win, image.Pt(800, 600))
	c.Assert(err, qt.IsNil)
	c.Assert(win.cursors, qt.HasLen, 1)
}

func TestCursorErrorsAreIgnored(t *testing.T) {
	c := qt.New(t)
	g, _ := newGui(core.GuiConfiguration{})
	win := &fakeWindow{err: errors.New("cursor unsupported")}

	for i := 0; i < 2; i++ {
		g.ImmediateUI(func(*imui.Context) {})
		_, err := g.Draw(win, image.Pt(800, 600))
		c.Assert(err, qt.IsNil)
	}
	// a rejected cursor is retried next frame
	c.Assert(win.cursors, qt.HasLen, 2)

	g.ImmediateUI(func(*imui.Context) {})
	_, err := g.Draw(nil, image.Pt(800, 600))
	c.Assert(err, qt.IsNil)
}

func TestFrameOrderingPanics(t *testing.T) {
	c := qt.New(t)
	g, _ := newGui(core.GuiConfiguration{})

	c.Assert(func() { g.Draw(nil, image.Pt(800, 600)) }, qt.PanicMatches, "frame: End called without a matching Begin")

	g.ImmediateUI(func(*imui.Context) {})
	c.Assert(func() { g.ImmediateUI(func(*imui.Context) {}) }, qt.PanicMatches, "frame: Begin called while a frame is open.*")
}

func TestRegisterUserImage(t *testing.T) {
	c := qt.New(t)
	g, dev := newGui(core.GuiConfiguration{FramesInFlight: -1})

	var buf bytes.Buffer
	c.Assert(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16))), qt.IsNil)
	id := g.RegisterUserImage(buf.Bytes())
	c.Assert(id.IsUser(), qt.IsTrue)

	g.ImmediateUI(func(ui *imui.Context) {
		ui.Image(id, model.NewRect(0, 0, 16, 16), model.White)
	})
	cb, err := g.Draw(nil, image.Pt(800, 600))
	c.Assert(err, qt.IsNil)
	c.Assert(cb.(*gfxtest.CommandBuffer).Draws(), qt.Equals, 1)

	g.UnregisterUserImage(id)
	g.UnregisterUserImage(id)
	c.Assert(dev.Images[0].Released, qt.Equals, 1)
}

func TestRegisterUserImagePanicsOnGarbage(t *testing.T) {
	c := qt.New(t)
	g, _ := newGui(core.GuiConfiguration{})
	c.Assert(func() { g.RegisterUserImage([]byte{0, 0, 0, 0}) }, qt.PanicMatches, "core: RegisterUserImage: bridge: bytes are not a supported image encoding.*")
}

func TestRegisterUserImageView(t *testing.T) {
	c := qt.New(t)
	g, dev := newGui(core.GuiConfiguration{FramesInFlight: -1})

	img, err := dev.NewImage(image.Pt(4, 4))
	c.Assert(err, qt.IsNil)
	shared := gfx.Share(img)
	id := g.RegisterUserImageView(shared)
	c.Assert(shared.Refs(), qt.Equals, 2)

	g.UnregisterUserImage(id)
	c.Assert(shared.Refs(), qt.Equals, 1)
}

func TestFixedScaleFactor(t *testing.T) {
	c := qt.New(t)
	g, _ := newGui(core.GuiConfiguration{ScaleFactor: 2})
	c.Assert(g.Input().LogicalSize().X(), qt.Equals, float32(400))

	g.Update(input.ScaleChanged{Scale: 1.5, Width: 1000, Height: 800})
	c.Assert(g.Input().Scale(), qt.Equals, float32(2))
	c.Assert(g.Input().Size(), qt.Equals, image.Pt(1000, 800))

	g.ImmediateUI(func(ui *imui.Context) {
		c.Assert(ui.ScreenRect(), qt.Equals, model.NewRect(0, 0, 500, 400))
		ui.FillRect(model.NewRect(10, 10, 10, 10), model.White)
	})
	cb, err := g.Draw(nil, image.Pt(1000, 800))
	c.Assert(err, qt.IsNil)
	c.Assert(cb.(*gfxtest.CommandBuffer).Scissors(), qt.DeepEquals, []image.Rectangle{image.Rect(0, 0, 1000, 800)})
}

func TestFreedTextureOutlivesFramesInFlight(t *testing.T) {
	c := qt.New(t)
	g, dev := newGui(core.DefaultConfiguration().Gui)

	var id model.TextureID
	g.ImmediateUI(func(ui *imui.Context) {
		id = ui.LoadTexture(image.NewRGBA(image.Rect(0, 0, 4, 4)))
		ui.Image(id, model.NewRect(0, 0, 4, 4), model.White)
	})
	_, err := g.Draw(nil, image.Pt(800, 600))
	c.Assert(err, qt.IsNil)
	img := dev.Images[len(dev.Images)-1]

	g.ImmediateUI(func(ui *imui.Context) {
		ui.FreeTexture(id)
	})
	_, err = g.Draw(nil, image.Pt(800, 600))
	c.Assert(err, qt.IsNil)

	for frame := 0; frame < core.DefaultFramesInFlight-1; frame++ {
		c.Assert(img.Released, qt.Equals, 0, qt.Commentf("frame %d", frame))
		g.ImmediateUI(func(*imui.Context) {})
		_, err = g.Draw(nil, image.Pt(800, 600))
		c.Assert(err, qt.IsNil)
	}
	c.Assert(img.Released, qt.Equals, 0)

	g.ImmediateUI(func(*imui.Context) {})
	_, err = g.Draw(nil, image.Pt(800, 600))
	c.Assert(err, qt.IsNil)
	c.Assert(img.Released, qt.Equals, 1)
}

func TestDrawReportsUploadFailure(t *testing.T) {
	c := qt.New(t)
	dev := gfxtest.NewDevice()
	dev.FailImages = errors.New("out of device memory")
	g := core.NewGui(core.GuiConfiguration{}, dev, 800, 600, 1)

	g.ImmediateUI(func(*imui.Context) {})
	cb, err := g.Draw(nil, image.Pt(800, 600))
	c.Assert(cb, qt.IsNil)
	c.Assert(errors.Is(err, dev.FailImages), qt.IsTrue)
	c.Assert(g.State(), qt.Equals, frame.Idle)
}

func TestDestroyReleasesImages(t *testing.T) {
	c := qt.New(t)
	g, dev := newGui(core.GuiConfiguration{FramesInFlight: 3})

	var buf bytes.Buffer
	c.Assert(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))), qt.IsNil)
	g.RegisterUserImage(buf.Bytes())

	g.ImmediateUI(func(*imui.Context) {})
	_, err := g.Draw(nil, image.Pt(800, 600))
	c.Assert(err, qt.IsNil)

	g.Destroy()
	c.Assert(dev.Live(), qt.Equals, 0)
}
