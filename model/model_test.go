// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model_test

import (
	"image"
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korugui/model"
)

func TestTextureIDRanges(t *testing.T) {
	c := qt.New(t)
	c.Assert(model.FontTexture.IsUser(), qt.IsFalse)
	c.Assert(model.TextureID(42).IsUser(), qt.IsFalse)
	c.Assert(model.UserTexture(0).IsUser(), qt.IsTrue)
	c.Assert(model.UserTexture(0), qt.Not(qt.Equals), model.TextureID(0))
	c.Assert(model.UserTexture(3).String(), qt.Equals, "user#3")
	c.Assert(model.TextureID(3).String(), qt.Equals, "managed#3")
}

func TestMeshAppendOffsetsIndices(t *testing.T) {
	c := qt.New(t)
	var m model.Mesh
	quad := []model.Vertex{{}, {}, {}, {}}
	m.Append(quad, []uint32{0, 1, 2, 0, 2, 3})
	m.Append(quad, []uint32{0, 1, 2, 0, 2, 3})

	c.Assert(m.Vertices, qt.HasLen, 8)
	c.Assert(m.Indices[6:], qt.DeepEquals, []uint32{4, 5, 6, 4, 6, 7})
	c.Assert(m.IsEmpty(), qt.IsFalse)
}

func TestRectIntersect(t *testing.T) {
	c := qt.New(t)
	a := model.NewRect(0, 0, 100, 100)

	c.Assert(a.Intersect(model.NewRect(50, 50, 100, 100)), qt.Equals, model.NewRect(50, 50, 50, 50))

	outside := a.Intersect(model.NewRect(200, 200, 10, 10))
	c.Assert(outside.IsEmpty(), qt.IsTrue)
	c.Assert(outside.Width(), qt.Equals, float32(0))
}

func TestRectContains(t *testing.T) {
	c := qt.New(t)
	r := model.NewRect(10, 10, 20, 20)
	c.Assert(r.Contains(glm.Vec2{10, 10}), qt.IsTrue)
	c.Assert(r.Contains(glm.Vec2{29.9, 29.9}), qt.IsTrue)
	c.Assert(r.Contains(glm.Vec2{30, 15}), qt.IsFalse)
	c.Assert(r.Center(), qt.Equals, glm.Vec2{20, 20})
}

func TestImageDeltaFullSize(t *testing.T) {
	c := qt.New(t)
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))

	whole := model.ImageDelta{Image: img}
	c.Assert(whole.FullSize(), qt.Equals, image.Pt(4, 2))

	declared := model.ImageDelta{Image: img, Size: image.Pt(64, 64)}
	c.Assert(declared.FullSize(), qt.Equals, image.Pt(64, 64))

	pos := image.Pt(10, 3)
	partial := model.ImageDelta{Image: img, Pos: &pos}
	c.Assert(partial.FullSize(), qt.Equals, image.Pt(14, 5))
}

func TestTextureDeltaOrder(t *testing.T) {
	c := qt.New(t)
	var d model.TextureDelta
	c.Assert(d.IsEmpty(), qt.IsTrue)

	d.Free(7)
	d.Set(7, model.ImageDelta{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))})

	c.Assert(d.Changes, qt.HasLen, 2)
	c.Assert(d.Changes[0].IsRemoval(), qt.IsTrue)
	c.Assert(d.Changes[1].IsRemoval(), qt.IsFalse)
}
