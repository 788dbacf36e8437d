// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfxtest provides an in-memory gfx.Device that records
// everything done to it, for tests that cannot reach a GPU.
package gfxtest

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/devblok/korugui/gfx"
	"github.com/devblok/korugui/model"
)

// ErrOutOfBounds is returned by Image.Upload for regions outside the image.
var ErrOutOfBounds = errors.New("gfxtest: upload outside of image bounds")

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{}
}

// Device records created images and command buffers.
type Device struct {
	Images  []*Image
	Buffers []*CommandBuffer

	// FailImages makes NewImage return this error when set.
	FailImages error
}

// NewImage implements gfx.Device
func (d *Device) NewImage(size image.Point) (gfx.Image, error) {
	if d.FailImages != nil {
		return nil, d.FailImages
	}
	img := &Image{
		Pixels: image.NewRGBA(image.Rectangle{Max: size}),
		index:  len(d.Images),
	}
	d.Images = append(d.Images, img)
	return img, nil
}

// NewRecorder implements gfx.Device
func (d *Device) NewRecorder(target gfx.Target) (gfx.Recorder, error) {
	return &Recorder{
		device: d,
		buffer: &CommandBuffer{Target: target},
	}, nil
}

// Live returns the number of images not yet released.
func (d *Device) Live() int {
	var n int
	for _, img := range d.Images {
		if img.Released == 0 {
			n++
		}
	}
	return n
}

// Image is a CPU side image.
type Image struct {
	Pixels   *image.RGBA
	Uploads  []image.Rectangle
	Released int

	index int
}

// Size implements gfx.Image
func (i *Image) Size() image.Point {
	return i.Pixels.Bounds().Size()
}

// Upload implements gfx.Image
func (i *Image) Upload(pos image.Point, pixels *image.RGBA) error {
	if i.Released > 0 {
		return fmt.Errorf("gfxtest: upload to released image %d", i.index)
	}
	region := pixels.Bounds().Sub(pixels.Bounds().Min).Add(pos)
	if !region.In(i.Pixels.Bounds()) {
		return ErrOutOfBounds
	}
	draw.Draw(i.Pixels, region, pixels, pixels.Bounds().Min, draw.Src)
	i.Uploads = append(i.Uploads, region)
	return nil
}

// Release implements gfx.Image
func (i *Image) Release() {
	i.Released++
}

func (i *Image) String() string {
	return fmt.Sprintf("image#%d", i.index)
}

// OpKind tells recorded operations apart.
type OpKind int

// Recorded operation kinds
const (
	OpScissor OpKind = iota
	OpTexture
	OpMesh
	OpDraw
)

// Op is a single recorded command.
type Op struct {
	Kind     OpKind
	Scissor  image.Rectangle
	Texture  gfx.Image
	Vertices int
	Indices  int
	Count    uint32
}

// CommandBuffer holds recorded operations.
type CommandBuffer struct {
	Target   gfx.Target
	Ops      []Op
	Released bool
}

// Release implements gfx.CommandBuffer
func (cb *CommandBuffer) Release() {
	cb.Released = true
}

// Draws returns the number of draw operations.
func (cb *CommandBuffer) Draws() int {
	var n int
	for _, op := range cb.Ops {
		if op.Kind == OpDraw {
			n++
		}
	}
	return n
}

// Scissors returns every scissor set, in order.
func (cb *CommandBuffer) Scissors() []image.Rectangle {
	var out []image.Rectangle
	for _, op := range cb.Ops {
		if op.Kind == OpScissor {
			out = append(out, op.Scissor)
		}
	}
	return out
}

// Recorder records into a CommandBuffer.
type Recorder struct {
	device   *Device
	buffer   *CommandBuffer
	finished bool
}

// SetScissor implements gfx.Recorder
func (r *Recorder) SetScissor(rect image.Rectangle) {
	r.record(Op{Kind: OpScissor, Scissor: rect})
}

// BindTexture implements gfx.Recorder
func (r *Recorder) BindTexture(img gfx.Image) {
	r.record(Op{Kind: OpTexture, Texture: img})
}

// BindMesh implements gfx.Recorder
func (r *Recorder) BindMesh(vertices []model.Vertex, indices []uint32) error {
	r.record(Op{Kind: OpMesh, Vertices: len(vertices), Indices: len(indices)})
	return nil
}

// DrawIndexed implements gfx.Recorder
func (r *Recorder) DrawIndexed(count uint32) {
	r.record(Op{Kind: OpDraw, Count: count})
}

// Finish implements gfx.Recorder
func (r *Recorder) Finish() (gfx.CommandBuffer, error) {
	if r.finished {
		return nil, errors.New("gfxtest: recorder already finished")
	}
	r.finished = true
	r.device.Buffers = append(r.device.Buffers, r.buffer)
	return r.buffer, nil
}

func (r *Recorder) record(op Op) {
	if r.finished {
		panic("gfxtest: recording into a finished recorder")
	}
	r.buffer.Ops = append(r.buffer.Ops, op)
}
