// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package imui

import (
	"image"
	"image/color"
	"image/draw"

	glm "github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// headerRows of solid white sit above the glyphs, so untextured shapes
// can sample the font texture and batch with text.
const headerRows = 2

// atlas is the font texture: a white header followed by the glyph masks
// of a fixed size bitmap face.
type atlas struct {
	face   *basicfont.Face
	pixels *image.RGBA
	white  glm.Vec2
}

func newAtlas(face *basicfont.Face) *atlas {
	mb := face.Mask.Bounds()
	pixels := image.NewRGBA(image.Rect(0, 0, mb.Dx(), mb.Dy()+headerRows))
	draw.Draw(pixels, image.Rect(0, 0, mb.Dx(), headerRows), image.White, image.Point{}, draw.Src)

	// premultiplied white with the mask as coverage
	glyphs := image.Rect(0, headerRows, mb.Dx(), mb.Dy()+headerRows)
	draw.DrawMask(pixels, glyphs, image.NewUniform(color.White), image.Point{}, face.Mask, mb.Min, draw.Src)

	size := pixels.Bounds().Size()
	return &atlas{
		face:   face,
		pixels: pixels,
		white:  glm.Vec2{1 / float32(size.X), 1 / float32(size.Y)},
	}
}

// uv converts a texel position into normalized texture coordinates.
func (a *atlas) uv(p image.Point) glm.Vec2 {
	size := a.pixels.Bounds().Size()
	return glm.Vec2{float32(p.X) / float32(size.X), float32(p.Y) / float32(size.Y)}
}

// glyph is a positioned glyph quad.
type glyph struct {
	rect  image.Rectangle
	uvMin glm.Vec2
	uvMax glm.Vec2
	ok    bool
	adv   int
}

// glyph lays out r with its baseline origin at dot.
func (a *atlas) glyph(dot image.Point, r rune) glyph {
	dr, _, maskp, adv, ok := a.face.Glyph(fixed.P(dot.X, dot.Y), r)
	g := glyph{rect: dr, ok: ok, adv: adv.Ceil()}
	if !ok {
		g.adv = a.face.Advance
		return g
	}
	min := maskp.Add(image.Pt(0, headerRows))
	g.uvMin = a.uv(min)
	g.uvMax = a.uv(min.Add(dr.Size()))
	return g
}

func (a *atlas) lineHeight() int {
	return a.face.Metrics().Height.Ceil()
}

func (a *atlas) ascent() int {
	return a.face.Metrics().Ascent.Ceil()
}

func (a *atlas) measure(s string) int {
	return font.MeasureString(a.face, s).Ceil()
}
