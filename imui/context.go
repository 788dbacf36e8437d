// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package imui is a small immediate mode toolkit. Widgets are described
// anew every frame between Begin and End, which return the clipped
// meshes to draw and the texture changes the renderer has to apply
// first.
//
// Positions are in points. Colors are premultiplied.
package imui

import (
	"image"
	"math"

	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"

	"github.com/devblok/korugui/model"
)

// New creates a toolkit context. The font texture is queued with the
// first frame's texture delta.
func New() *Context {
	c := &Context{
		atlas:  newAtlas(basicfont.Face7x13),
		nextID: model.FontTexture + 1,
	}
	c.pending.Set(model.FontTexture, model.ImageDelta{Image: c.atlas.pixels})
	return c
}

// Context is the toolkit state carried between frames.
type Context struct {
	atlas *atlas

	input      model.RawInput
	pointer    glm.Vec2
	hasPointer bool
	down       bool
	pressedAt  glm.Vec2
	released   bool
	scroll     glm.Vec2
	text       string
	keys       []model.KeyEvent

	cursor  model.CursorIcon
	clips   []model.Rect
	prims   []model.ClippedPrimitive
	pending model.TextureDelta
	nextID  model.TextureID
}

// Begin implements frame.Toolkit
func (c *Context) Begin(in model.RawInput) {
	c.input = in
	c.cursor = model.CursorDefault
	c.clips = append(c.clips[:0], in.ScreenRect)
	c.prims = nil
	c.released = false
	c.scroll = glm.Vec2{}
	c.text = ""
	c.keys = c.keys[:0]

	for _, ev := range in.Events {
		switch ev := ev.(type) {
		case model.PointerMovedEvent:
			c.pointer, c.hasPointer = ev.Pos, true
		case model.PointerGoneEvent:
			c.hasPointer = false
			c.down = false
		case model.PointerButtonEvent:
			if ev.Button != model.ButtonPrimary {
				continue
			}
			c.pointer, c.hasPointer = ev.Pos, true
			if ev.Pressed {
				c.down = true
				c.pressedAt = ev.Pos
			} else if c.down {
				c.down, c.released = false, true
			}
		case model.ScrollEvent:
			c.scroll = c.scroll.Add(ev.Delta)
		case model.KeyEvent:
			c.keys = append(c.keys, ev)
		case model.TextEvent:
			c.text += ev.Text
		}
	}
}

// End implements frame.Toolkit
func (c *Context) End() model.FrameOutput {
	if len(c.clips) != 1 {
		log.WithField("depth", len(c.clips)-1).Warn("Frame ended with clip rectangles still pushed")
	}
	out := model.FrameOutput{
		Cursor:     c.cursor,
		Primitives: c.prims,
		Textures:   c.pending,
	}
	c.prims = nil
	c.pending = model.TextureDelta{}
	return out
}

// Input returns the input of the current frame.
func (c *Context) Input() model.RawInput {
	return c.input
}

// ScreenRect returns the area available to the UI.
func (c *Context) ScreenRect() model.Rect {
	return c.input.ScreenRect
}

// PointerPos returns the pointer position, if the pointer is over the
// window.
func (c *Context) PointerPos() (glm.Vec2, bool) {
	return c.pointer, c.hasPointer
}

// Scroll returns the scroll delta of the current frame.
func (c *Context) Scroll() glm.Vec2 {
	return c.scroll
}

// TypedText returns the text typed during the current frame.
func (c *Context) TypedText() string {
	return c.text
}

// KeyPressed reports whether key went down during the current frame.
func (c *Context) KeyPressed(key model.Key) bool {
	for _, ev := range c.keys {
		if ev.Key == key && ev.Pressed {
			return true
		}
	}
	return false
}

// PointerDown reports whether the primary button is held.
func (c *Context) PointerDown() bool {
	return c.down
}

// SetCursor requests a pointer shape for this frame.
func (c *Context) SetCursor(icon model.CursorIcon) {
	c.cursor = icon
}

// Clip returns the current clip rectangle.
func (c *Context) Clip() model.Rect {
	return c.clips[len(c.clips)-1]
}

// PushClip narrows the clip rectangle to its overlap with r.
func (c *Context) PushClip(r model.Rect) {
	c.clips = append(c.clips, c.Clip().Intersect(r))
}

// PopClip restores the clip rectangle of the matching PushClip.
func (c *Context) PopClip() {
	if len(c.clips) <= 1 {
		panic("imui: PopClip without PushClip")
	}
	c.clips = c.clips[:len(c.clips)-1]
}

// WithClip runs fn with the clip rectangle narrowed to r.
func (c *Context) WithClip(r model.Rect, fn func()) {
	c.PushClip(r)
	defer c.PopClip()
	fn()
}

// Hovered reports whether the pointer is over the visible part of r.
func (c *Context) Hovered(r model.Rect) bool {
	return c.hasPointer && r.Contains(c.pointer) && c.Clip().Contains(c.pointer)
}

// Clicked reports whether the primary button was released over r this
// frame after being pressed inside it.
func (c *Context) Clicked(r model.Rect) bool {
	return c.released && c.Hovered(r) && r.Contains(c.pressedAt)
}

// LoadTexture queues pixels as a new texture and returns its id. It can
// be drawn from the next End on.
func (c *Context) LoadTexture(pixels *image.RGBA) model.TextureID {
	id := c.nextID
	c.nextID++
	c.pending.Set(id, model.ImageDelta{Image: pixels})
	return id
}

// UpdateTexture queues a partial update of a texture loaded earlier.
func (c *Context) UpdateTexture(id model.TextureID, pos image.Point, pixels *image.RGBA) {
	c.pending.Set(id, model.ImageDelta{Pos: &pos, Image: pixels})
}

// FreeTexture queues the removal of a texture loaded earlier.
func (c *Context) FreeTexture(id model.TextureID) {
	c.pending.Free(id)
}

// mesh returns the mesh shapes drawn with texture go to. Consecutive
// shapes with the same clip and texture share a primitive.
func (c *Context) mesh(texture model.TextureID) *model.Mesh {
	clip := c.Clip()
	if n := len(c.prims); n > 0 {
		last := &c.prims[n-1]
		if last.Clip == clip && last.Mesh.Texture == texture {
			return &last.Mesh
		}
	}
	c.prims = append(c.prims, model.ClippedPrimitive{
		Clip: clip,
		Mesh: model.Mesh{Texture: texture},
	})
	return &c.prims[len(c.prims)-1].Mesh
}

func (c *Context) quad(texture model.TextureID, r model.Rect, uvMin, uvMax glm.Vec2, col model.Color) {
	if r.IsEmpty() || c.Clip().Intersect(r).IsEmpty() {
		return
	}
	c.mesh(texture).Append([]model.Vertex{
		{Pos: r.Min, UV: uvMin, Color: col},
		{Pos: glm.Vec2{r.Max.X(), r.Min.Y()}, UV: glm.Vec2{uvMax.X(), uvMin.Y()}, Color: col},
		{Pos: r.Max, UV: uvMax, Color: col},
		{Pos: glm.Vec2{r.Min.X(), r.Max.Y()}, UV: glm.Vec2{uvMin.X(), uvMax.Y()}, Color: col},
	}, []uint32{0, 1, 2, 0, 2, 3})
}

// FillRect paints r with a solid color.
func (c *Context) FillRect(r model.Rect, col model.Color) {
	c.quad(model.FontTexture, r, c.atlas.white, c.atlas.white, col)
}

// Image paints a texture stretched over r, tinted by tint.
func (c *Context) Image(id model.TextureID, r model.Rect, tint model.Color) {
	c.quad(id, r, glm.Vec2{0, 0}, glm.Vec2{1, 1}, tint)
}

// Text paints s with its top left corner at pos and returns its size.
func (c *Context) Text(pos glm.Vec2, s string, col model.Color) glm.Vec2 {
	dot := image.Pt(int(math.Round(float64(pos.X()))), int(math.Round(float64(pos.Y())))+c.atlas.ascent())
	start := dot.X
	for _, r := range s {
		g := c.atlas.glyph(dot, r)
		if g.ok {
			rect := model.Rect{
				Min: glm.Vec2{float32(g.rect.Min.X), float32(g.rect.Min.Y)},
				Max: glm.Vec2{float32(g.rect.Max.X), float32(g.rect.Max.Y)},
			}
			c.quad(model.FontTexture, rect, g.uvMin, g.uvMax, col)
		}
		dot.X += g.adv
	}
	return glm.Vec2{float32(dot.X - start), float32(c.atlas.lineHeight())}
}

// MeasureText returns the size s would take when painted.
func (c *Context) MeasureText(s string) glm.Vec2 {
	return glm.Vec2{float32(c.atlas.measure(s)), float32(c.atlas.lineHeight())}
}
