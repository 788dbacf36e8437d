// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	vk "github.com/devblok/vulkan"
)

const shaderSuffix = ".spv"

// UI shader file names.
const (
	VertexShaderFile   = "ui.vert.spv"
	FragmentShaderFile = "ui.frag.spv"
)

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (t ShaderType) stage() vk.ShaderStageFlagBits {
	if t == FragmentShaderType {
		return vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageVertexBit
}

// ParseShaderName splits a compiled shader file name into the shader
// name and its type. It is important that the file name does not contain
// more than two dots, the first is always the name of the shader, second
// is type, and the third one ensures that the shader is compiled.
func ParseShaderName(file string) (string, ShaderType) {
	base := filepath.Base(file)
	if !strings.HasSuffix(base, shaderSuffix) {
		return "", UnknownShaderType
	}
	nodes := strings.Split(strings.TrimSuffix(base, shaderSuffix), ".")
	if len(nodes) != 2 || nodes[0] == "" {
		return "", UnknownShaderType
	}
	switch nodes[1] {
	case "vert":
		return nodes[0], VertexShaderType
	case "frag":
		return nodes[0], FragmentShaderType
	}
	return "", UnknownShaderType
}

// ShaderSource finds compiled shaders by file name. A packr.Box is one.
type ShaderSource interface {
	Find(name string) ([]byte, error)
}

// DirSource reads compiled shaders from a directory.
type DirSource string

// Find implements ShaderSource.
func (d DirSource) Find(name string) ([]byte, error) {
	return ioutil.ReadFile(filepath.Join(string(d), name))
}

// NewShader creates a shader module from the compiled shader file in src.
func NewShader(device vk.Device, src ShaderSource, file string) (*Shader, error) {
	name, shaderType := ParseShaderName(file)
	if shaderType == UnknownShaderType {
		return nil, fmt.Errorf("vkr: %s is not a compiled vertex or fragment shader", file)
	}

	contents, err := src.Find(file)
	if err != nil {
		return nil, fmt.Errorf("vkr: load shader %s: %w", file, err)
	}
	if len(contents) == 0 || len(contents)%4 != 0 {
		return nil, fmt.Errorf("vkr: shader %s has invalid size %d", file, len(contents))
	}

	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(contents)),
		PCode:    SliceUint32(contents),
	}

	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(device, &smci, nil, &module)); err != nil {
		return nil, fmt.Errorf("vk.CreateShaderModule(%s): %s", file, err.Error())
	}

	return &Shader{
		name:       name,
		shaderType: shaderType,
		device:     device,
		module:     module,
	}, nil
}

// Shader is a compiled shader module
type Shader struct {
	name       string
	shaderType ShaderType
	device     vk.Device
	module     vk.ShaderModule
}

// Type returns the shader type
func (s *Shader) Type() ShaderType {
	return s.shaderType
}

// Name returns the shader name, the file name up to the type
func (s *Shader) Name() string {
	return s.name
}

func (s *Shader) stageInfo() vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  s.shaderType.stage(),
		Module: s.module,
		PName:  safeString("main"),
	}
}

// Destroy destroys the shader module
func (s *Shader) Destroy() {
	vk.DestroyShaderModule(s.device, s.module, nil)
}
