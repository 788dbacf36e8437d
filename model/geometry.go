// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// Rect is an axis aligned rectangle in points.
type Rect struct {
	Min, Max glm.Vec2
}

// NewRect creates a rectangle from its top-left corner and size.
func NewRect(x, y, w, h float32) Rect {
	return Rect{
		Min: glm.Vec2{x, y},
		Max: glm.Vec2{x + w, y + h},
	}
}

// Width of the rectangle, never negative.
func (r Rect) Width() float32 {
	if r.Max.X() < r.Min.X() {
		return 0
	}
	return r.Max.X() - r.Min.X()
}

// Height of the rectangle, never negative.
func (r Rect) Height() float32 {
	if r.Max.Y() < r.Min.Y() {
		return 0
	}
	return r.Max.Y() - r.Min.Y()
}

// Size returns width and height as a vector.
func (r Rect) Size() glm.Vec2 {
	return glm.Vec2{r.Width(), r.Height()}
}

// Center returns the middle point of the rectangle.
func (r Rect) Center() glm.Vec2 {
	return r.Min.Add(r.Max).Mul(0.5)
}

// IsEmpty reports whether the rectangle covers no area.
func (r Rect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Contains reports whether p lies inside the rectangle.
// The max edges are exclusive.
func (r Rect) Contains(p glm.Vec2) bool {
	return p.X() >= r.Min.X() && p.X() < r.Max.X() &&
		p.Y() >= r.Min.Y() && p.Y() < r.Max.Y()
}

// Intersect returns the overlap of two rectangles. When they do not
// overlap the result is empty but keeps its min corner inside r.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Min: glm.Vec2{maxf(r.Min.X(), o.Min.X()), maxf(r.Min.Y(), o.Min.Y())},
		Max: glm.Vec2{minf(r.Max.X(), o.Max.X()), minf(r.Max.Y(), o.Max.Y())},
	}
	if out.Max.X() < out.Min.X() {
		out.Max[0] = out.Min.X()
	}
	if out.Max.Y() < out.Min.Y() {
		out.Max[1] = out.Min.Y()
	}
	return out
}

// Shrink moves every edge inwards by d.
func (r Rect) Shrink(d float32) Rect {
	return Rect{
		Min: r.Min.Add(glm.Vec2{d, d}),
		Max: r.Max.Sub(glm.Vec2{d, d}),
	}
}

// Color is a premultiplied RGBA color, matching the
// R8G8B8A8 vertex attribute layout.
type Color struct {
	R, G, B, A uint8
}

// Common colors
var (
	White       = Color{255, 255, 255, 255}
	Black       = Color{0, 0, 0, 255}
	Transparent = Color{}
)

// Gray returns an opaque gray of the given lightness.
func Gray(l uint8) Color {
	return Color{l, l, l, 255}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
