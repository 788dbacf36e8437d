// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"image"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/korugui/bridge"
	"github.com/devblok/korugui/frame"
	"github.com/devblok/korugui/gfx"
	"github.com/devblok/korugui/imui"
	"github.com/devblok/korugui/input"
	"github.com/devblok/korugui/model"
)

// CursorSetter is a window that can show a cursor icon.
type CursorSetter interface {
	SetCursor(model.CursorIcon) error
}

// NewGui creates the UI integration for a surface of width by height
// pixels at scale pixels per point, drawing through device.
func NewGui(cfg GuiConfiguration, device gfx.Device, width, height int, scale float32) *Gui {
	if device == nil {
		panic("core: NewGui with nil Device")
	}
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("core: NewGui with empty surface %dx%d", width, height))
	}
	if cfg.ScaleFactor > 0 {
		scale = cfg.ScaleFactor
	}
	if scale <= 0 {
		panic(fmt.Sprintf("core: NewGui with scale %v, must be above zero", scale))
	}

	delay := cfg.releaseDelay()
	ui := imui.New()
	g := &Gui{
		ui:         ui,
		frame:      frame.New(ui, input.NewAdapter(width, height, scale)),
		bridge:     bridge.New(device, bridge.Configuration{FramesInFlight: delay}),
		fixedScale: cfg.ScaleFactor > 0,
	}

	log.WithFields(log.Fields{
		"width":          width,
		"height":         height,
		"scale":          scale,
		"framesInFlight": delay,
	}).Info("UI integration created")
	return g
}

// Gui ties input, the toolkit frame and GPU resources together.
// It must be used from a single goroutine.
type Gui struct {
	ui     *imui.Context
	frame  *frame.Context
	bridge *bridge.Bridge

	fixedScale bool

	cursor      model.CursorIcon
	cursorValid bool
}

// Update feeds a window event to the UI. With a configured scale factor
// the window's own scale changes only resize the surface.
func (g *Gui) Update(ev input.Event) {
	if sc, ok := ev.(input.ScaleChanged); ok && g.fixedScale {
		ev = input.Resized{Width: sc.Width, Height: sc.Height}
	}
	g.frame.HandleEvent(ev)
}

// ImmediateUI begins a frame and runs layout on the toolkit. Draw must
// follow before the next ImmediateUI.
func (g *Gui) ImmediateUI(layout func(ui *imui.Context)) {
	g.frame.Begin()
	layout(g.ui)
}

// Draw ends the frame, applies the requested cursor to window and
// returns the commands that draw the frame onto a dims pixel target.
// Cursor errors are ignored. The commands are not submitted.
//
// A texture upload error is fatal for the integration: the toolkit has
// already handed over its texture changes, so later frames may refer to
// textures that never reached the GPU. Destroy the Gui after one.
func (g *Gui) Draw(window CursorSetter, dims image.Point) (gfx.CommandBuffer, error) {
	out := g.frame.End()
	g.applyCursor(window, out.Cursor)

	if err := g.bridge.ApplyDelta(out.Textures); err != nil {
		return nil, err
	}
	return g.bridge.BuildCommands(out.Primitives, dims, g.frame.Adapter().Scale())
}

func (g *Gui) applyCursor(window CursorSetter, icon model.CursorIcon) {
	if window == nil || (g.cursorValid && icon == g.cursor) {
		return
	}
	if err := window.SetCursor(icon); err != nil {
		log.WithError(err).WithField("cursor", icon).Debug("Cursor not applied")
		return
	}
	g.cursor, g.cursorValid = icon, true
}

// RegisterUserImageView registers an image the application already
// created and returns the id to draw it with.
func (g *Gui) RegisterUserImageView(img *gfx.SharedImage) model.TextureID {
	return g.bridge.RegisterImage(img)
}

// RegisterUserImage decodes and uploads an encoded image and returns
// the id to draw it with. It panics when the bytes cannot be decoded or
// uploaded, image bytes are expected to come from trusted assets.
func (g *Gui) RegisterUserImage(data []byte) model.TextureID {
	id, err := g.bridge.RegisterImageBytes(data)
	if err != nil {
		panic(fmt.Sprintf("core: RegisterUserImage: %v", err))
	}
	return id
}

// UnregisterUserImage releases an image registered earlier. Unknown ids
// are ignored.
func (g *Gui) UnregisterUserImage(id model.TextureID) {
	g.bridge.Unregister(id)
}

// Context returns the toolkit context.
func (g *Gui) Context() *imui.Context {
	return g.ui
}

// Input returns the input adapter, which tracks surface size and scale.
func (g *Gui) Input() *input.Adapter {
	return g.frame.Adapter()
}

// State returns the frame state.
func (g *Gui) State() frame.State {
	return g.frame.State()
}

// Destroy releases every GPU image the integration holds. The device
// must be idle.
func (g *Gui) Destroy() {
	g.bridge.Destroy()
	log.Info("UI integration destroyed")
}
