// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"image"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/korugui/gfx"
	"github.com/devblok/korugui/model"
)

// Recorder implements gfx.Recorder on the command buffer of a frame slot.
// The first failing command is reported by Finish.
type Recorder struct {
	presenter *Presenter
	slot      *frameSlot
	index     int
	cmd       vk.CommandBuffer
	finished  bool
	err       error
}

// SetScissor implements gfx.Recorder.
func (r *Recorder) SetScissor(rect image.Rectangle) {
	if r.finished {
		return
	}
	rect = rect.Canon()
	vk.CmdSetScissor(r.cmd, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{
			X: int32(rect.Min.X),
			Y: int32(rect.Min.Y),
		},
		Extent: vk.Extent2D{
			Width:  uint32(rect.Dx()),
			Height: uint32(rect.Dy()),
		},
	}})
}

// BindTexture implements gfx.Recorder.
func (r *Recorder) BindTexture(img gfx.Image) {
	if r.finished || r.err != nil {
		return
	}
	for {
		shared, ok := img.(*gfx.SharedImage)
		if !ok {
			break
		}
		img = shared.Image()
	}
	vkImg, ok := img.(*Image)
	if !ok || vkImg.device != r.presenter.Device {
		r.err = ErrForeignImage
		return
	}
	vk.CmdBindDescriptorSets(r.cmd, vk.PipelineBindPointGraphics, r.presenter.pipelineLayout, 0, 1, []vk.DescriptorSet{vkImg.set}, 0, nil)
}

// BindMesh implements gfx.Recorder. Mesh data is appended to the slot's
// host visible buffers, which are replaced by bigger ones when full.
func (r *Recorder) BindMesh(vertices []model.Vertex, indices []uint32) error {
	if r.finished {
		return ErrRecorderClosed
	}
	if r.err != nil {
		return r.err
	}

	vb := vertexBytes(vertices)
	vbuf, err := r.ensure(&r.slot.vertices, uint(len(vb)), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return r.fail(err)
	}
	voff, err := vbuf.Append(vb)
	if err != nil {
		return r.fail(err)
	}

	ib := indexBytes(indices)
	ibuf, err := r.ensure(&r.slot.indices, uint(len(ib)), vk.BufferUsageIndexBufferBit)
	if err != nil {
		return r.fail(err)
	}
	ioff, err := ibuf.Append(ib)
	if err != nil {
		return r.fail(err)
	}

	vk.CmdBindVertexBuffers(r.cmd, 0, 1, []vk.Buffer{vbuf.Get()}, []vk.DeviceSize{vk.DeviceSize(voff)})
	vk.CmdBindIndexBuffer(r.cmd, ibuf.Get(), vk.DeviceSize(ioff), vk.IndexTypeUint32)
	return nil
}

// ensure makes room for n bytes in *buf, retiring it for a bigger one
// when it is full.
func (r *Recorder) ensure(buf **Buffer, n uint, usage vk.BufferUsageFlagBits) (*Buffer, error) {
	if (*buf).Fits(n) {
		return *buf, nil
	}
	size := (*buf).Size() * 2
	for size < n {
		size *= 2
	}
	grown, err := NewBuffer(r.presenter.device, size, usage, r.presenter.allocator)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"from": (*buf).Size(),
		"to":   size,
	}).Debug("Mesh buffer grown")

	r.slot.retired = append(r.slot.retired, *buf)
	*buf = grown
	return grown, nil
}

func (r *Recorder) fail(err error) error {
	r.err = err
	return err
}

// DrawIndexed implements gfx.Recorder.
func (r *Recorder) DrawIndexed(count uint32) {
	if r.finished || r.err != nil {
		return
	}
	vk.CmdDrawIndexed(r.cmd, count, 1, 0, 0, 0)
}

// Finish implements gfx.Recorder.
func (r *Recorder) Finish() (gfx.CommandBuffer, error) {
	if r.finished {
		return nil, ErrRecorderClosed
	}
	r.finished = true

	vk.CmdEndRenderPass(r.cmd)
	if err := vk.Error(vk.EndCommandBuffer(r.cmd)); err != nil {
		return nil, fmt.Errorf("vk.EndCommandBuffer()[%d]: %s", r.index, err.Error())
	}
	if r.err != nil {
		return nil, r.err
	}
	return &CommandBuffer{
		presenter: r.presenter,
		index:     r.index,
		cmd:       r.cmd,
	}, nil
}

// CommandBuffer is a recorded frame slot command buffer. It belongs to
// the slot, Release only prevents it from being submitted again.
type CommandBuffer struct {
	presenter *Presenter
	index     int
	cmd       vk.CommandBuffer
	released  bool
}

// Release implements gfx.CommandBuffer.
func (c *CommandBuffer) Release() {
	c.released = true
}
