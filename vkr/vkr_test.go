// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"encoding/binary"
	"io/ioutil"
	"path/filepath"
	"testing"

	vk "github.com/devblok/vulkan"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/korugui/model"
)

func TestSliceUint32(t *testing.T) {
	c := qt.New(t)
	data := make([]byte, 10)
	binary.LittleEndian.PutUint32(data[0:], 0x07230203)
	binary.LittleEndian.PutUint32(data[4:], 42)

	words := SliceUint32(data)
	c.Assert(words, qt.HasLen, 2)
	c.Assert(words[0], qt.Equals, uint32(0x07230203))
	c.Assert(words[1], qt.Equals, uint32(42))
	c.Assert(SliceUint32([]byte{1, 2}), qt.IsNil)
}

func TestParseShaderName(t *testing.T) {
	tests := []struct {
		file     string
		name     string
		expected ShaderType
	}{
		{"ui.vert.spv", "ui", VertexShaderType},
		{"assets/shaders/ui.frag.spv", "ui", FragmentShaderType},
		{"ui.vert", "", UnknownShaderType},
		{"ui.geom.spv", "", UnknownShaderType},
		{"ui.extra.vert.spv", "", UnknownShaderType},
		{".vert.spv", "", UnknownShaderType},
	}
	for _, test := range tests {
		t.Run(test.file, func(t *testing.T) {
			c := qt.New(t)
			name, typ := ParseShaderName(test.file)
			c.Assert(name, qt.Equals, test.name)
			c.Assert(typ, qt.Equals, test.expected)
		})
	}
}

func TestShaderStages(t *testing.T) {
	c := qt.New(t)
	c.Assert(VertexShaderType.stage(), qt.Equals, vk.ShaderStageVertexBit)
	c.Assert(FragmentShaderType.stage(), qt.Equals, vk.ShaderStageFragmentBit)
}

func TestDirSource(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()
	c.Assert(ioutil.WriteFile(filepath.Join(dir, VertexShaderFile), []byte{3, 2, 35, 7}, 0644), qt.IsNil)

	data, err := DirSource(dir).Find(VertexShaderFile)
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.DeepEquals, []byte{3, 2, 35, 7})

	_, err = DirSource(dir).Find(FragmentShaderFile)
	c.Assert(err, qt.ErrorMatches, "open .*ui.frag.spv: no such file or directory")
}

func TestVertexLayout(t *testing.T) {
	c := qt.New(t)
	c.Assert(vertexSize, qt.Equals, uint(20))

	bindings := VertexBindingDescriptions()
	c.Assert(bindings, qt.HasLen, 1)
	c.Assert(bindings[0].Stride, qt.Equals, uint32(20))

	attrs := VertexAttributeDescriptions()
	c.Assert(attrs, qt.HasLen, 3)
	for i, expected := range []struct {
		offset uint32
		format vk.Format
	}{
		{0, vk.FormatR32g32Sfloat},
		{8, vk.FormatR32g32Sfloat},
		{16, vk.FormatR8g8b8a8Unorm},
	} {
		c.Assert(attrs[i].Location, qt.Equals, uint32(i))
		c.Assert(attrs[i].Offset, qt.Equals, expected.offset)
		c.Assert(attrs[i].Format, qt.Equals, expected.format)
	}
}

func TestMeshBytes(t *testing.T) {
	c := qt.New(t)
	vertices := []model.Vertex{{Color: model.Color{R: 1, G: 2, B: 3, A: 4}}, {}}
	vb := vertexBytes(vertices)
	c.Assert(vb, qt.HasLen, 40)
	c.Assert(vb[16:20], qt.DeepEquals, []byte{1, 2, 3, 4})

	ib := indexBytes([]uint32{1, 0x0100})
	c.Assert(ib, qt.DeepEquals, []byte{1, 0, 0, 0, 0, 1, 0, 0})
	c.Assert(vertexBytes(nil), qt.IsNil)
	c.Assert(indexBytes(nil), qt.IsNil)
}

func BenchmarkSliceUint32Small(b *testing.B) {
	data := make([]byte, 100)
	for idx := 0; idx < b.N; idx++ {
		SliceUint32(data)
	}
}

func BenchmarkSliceUint32Medium(b *testing.B) {
	data := make([]byte, 1000)
	for idx := 0; idx < b.N; idx++ {
		SliceUint32(data)
	}
}

func BenchmarkSliceUint32Big(b *testing.B) {
	data := make([]byte, 100000)
	for idx := 0; idx < b.N; idx++ {
		SliceUint32(data)
	}
}
