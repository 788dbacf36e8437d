// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package model holds the draw data that flows from the immediate-mode
// toolkit to the renderer: vertices, clipped meshes, texture deltas,
// raw input and cursor requests.
package model

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// Vertex is a UI vertex. Positions are in points, the renderer
// scales them to pixels with the target's scale factor.
type Vertex struct {
	Pos   glm.Vec2
	UV    glm.Vec2
	Color Color
}

// Mesh is an indexed triangle list drawn with a single texture.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Texture  TextureID
}

// IsEmpty reports whether the mesh would produce no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0 || len(m.Vertices) == 0
}

// Append adds vertices and indices to the mesh, offsetting the
// indices so they point into the appended vertices.
func (m *Mesh) Append(vertices []Vertex, indices []uint32) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, vertices...)
	for _, idx := range indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// ClippedPrimitive is a mesh along with the rectangle, in points,
// that it is allowed to draw into.
type ClippedPrimitive struct {
	Clip Rect
	Mesh Mesh
}

// FrameOutput is everything a finished UI frame hands to the renderer.
// Textures must be applied before Primitives are drawn.
type FrameOutput struct {
	Cursor     CursorIcon
	Primitives []ClippedPrimitive
	Textures   TextureDelta
}
