// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shaders holds the UI shader sources. Compiled shaders are
// looked up by name by the vulkan renderer.
package shaders

//go:generate glslangValidator -V ui.vert -o ui.vert.spv
//go:generate glslangValidator -V ui.frag -o ui.frag.spv
