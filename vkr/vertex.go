// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korugui/model"
)

const (
	vertexSize = uint(unsafe.Sizeof(model.Vertex{}))
	indexSize  = uint(unsafe.Sizeof(uint32(0)))
)

// VertexBindingDescriptions describes the vertex buffer layout of model.Vertex.
func VertexBindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    uint32(vertexSize),
		InputRate: vk.VertexInputRateVertex,
	}}
}

// VertexAttributeDescriptions describes position, texture coordinate and
// color of model.Vertex, at shader locations 0, 1 and 2.
func VertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	var v model.Vertex
	return []vk.VertexInputAttributeDescription{{
		Binding:  0,
		Location: 0,
		Format:   vk.FormatR32g32Sfloat,
		Offset:   uint32(unsafe.Offsetof(v.Pos)),
	}, {
		Binding:  0,
		Location: 1,
		Format:   vk.FormatR32g32Sfloat,
		Offset:   uint32(unsafe.Offsetof(v.UV)),
	}, {
		Binding:  0,
		Location: 2,
		Format:   vk.FormatR8g8b8a8Unorm,
		Offset:   uint32(unsafe.Offsetof(v.Color)),
	}}
}

// pushConstant is read by the vertex shader to map points to clip space.
type pushConstant struct {
	ScreenSize glm.Vec2
}

func vertexBytes(vertices []model.Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	n := len(vertices) * int(vertexSize)
	return *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(unsafe.Pointer(&vertices[0])),
		Len:  n,
		Cap:  n,
	}))
}

func indexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	n := len(indices) * int(indexSize)
	return *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(unsafe.Pointer(&indices[0])),
		Len:  n,
		Cap:  n,
	}))
}
