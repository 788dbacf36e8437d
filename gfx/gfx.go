// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines rendering related features that renderers must implement
// for the UI bridge to drive them.
package gfx

import (
	"image"

	"github.com/devblok/korugui/model"
)

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// Image is a GPU resident RGBA image that can be sampled by draws.
type Image interface {
	Releasable

	// Size returns the image dimensions in pixels.
	Size() image.Point

	// Upload writes pixels into the image with their top-left
	// corner at pos. The region must lie inside the image.
	Upload(pos image.Point, pixels *image.RGBA) error
}

// Target describes the surface a command sequence draws into.
type Target struct {

	// Extent is the physical size of the target in pixels.
	Extent image.Point

	// Scale is the number of pixels per point.
	Scale float32
}

// Recorder records draw commands into a single command sequence.
// Commands are executed in the order they were recorded.
type Recorder interface {

	// SetScissor restricts following draws to r, in pixels.
	SetScissor(r image.Rectangle)

	// BindTexture selects the image following draws sample from.
	BindTexture(img Image)

	// BindMesh uploads and binds vertex and index data for the next draw.
	BindMesh(vertices []model.Vertex, indices []uint32) error

	// DrawIndexed draws count indices of the bound mesh.
	DrawIndexed(count uint32)

	// Finish closes the sequence, after which the recorder is unusable.
	Finish() (CommandBuffer, error)
}

// CommandBuffer is a recorded, ready to submit unit of GPU work.
// It is released by whoever submits it, once the GPU is done with it.
type CommandBuffer interface {
	Releasable
}

// Device creates the GPU resources the UI bridge needs.
type Device interface {

	// NewImage allocates an image of the given size.
	NewImage(size image.Point) (Image, error)

	// NewRecorder starts a new command sequence for target.
	NewRecorder(target Target) (Recorder, error)
}
