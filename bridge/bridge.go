// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package bridge keeps GPU images in lockstep with the texture ids a UI
// toolkit hands out, and turns clipped meshes into a recorded command
// sequence.
//
// Images removed from the registry are not released right away: a
// command sequence recorded in an earlier frame may still be executing.
// They wait in a release queue until FramesInFlight further frames have
// been built.
package bridge

import (
	"errors"
	"fmt"
	"image"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/korugui/gfx"
	"github.com/devblok/korugui/model"
)

// package errors
var (
	ErrImageDecode    = errors.New("bridge: bytes are not a supported image encoding")
	ErrUploadOutside  = errors.New("bridge: partial update outside of texture bounds")
	ErrExternalUpdate = errors.New("bridge: texture deltas cannot target application images")
)

// Configuration configures the bridge.
type Configuration struct {

	// FramesInFlight is the number of frames a released image is kept
	// alive for. Zero releases immediately, which is only correct when
	// the caller waits for every submitted frame before the next one.
	FramesInFlight int
}

// New creates an empty bridge allocating images on device.
func New(device gfx.Device, cfg Configuration) *Bridge {
	if device == nil {
		panic("bridge: nil Device")
	}
	if cfg.FramesInFlight < 0 {
		cfg.FramesInFlight = 0
	}
	return &Bridge{
		device:  device,
		lag:     uint64(cfg.FramesInFlight),
		entries: make(map[model.TextureID]entry),
	}
}

// Bridge maps texture ids to GPU images.
type Bridge struct {
	device gfx.Device
	lag    uint64

	entries  map[model.TextureID]entry
	nextUser uint64

	frame    uint64
	releases releaseQueue
}

// ApplyDelta applies texture changes in order. It must run once per
// frame, before BuildCommands for the meshes of that frame.
func (b *Bridge) ApplyDelta(delta model.TextureDelta) error {
	b.Collect()
	for _, change := range delta.Changes {
		if change.IsRemoval() {
			b.free(change.ID)
			continue
		}
		if err := b.set(change.ID, change.Update); err != nil {
			return fmt.Errorf("texture %s: %w", change.ID, err)
		}
	}
	return nil
}

func (b *Bridge) free(id model.TextureID) {
	e, ok := b.entries[id]
	if !ok {
		log.WithField("texture", id).Debug("Removal of unknown texture ignored")
		return
	}
	managed, ok := e.(managedEntry)
	if !ok {
		log.WithField("texture", id).Debug("Removal of application texture ignored")
		return
	}
	delete(b.entries, id)
	b.retire(managed.img)
}

func (b *Bridge) set(id model.TextureID, delta *model.ImageDelta) error {
	if delta.Image == nil {
		return errors.New("nil image in update")
	}
	e, exists := b.entries[id]
	if _, external := e.(externalEntry); external || id.IsUser() {
		return ErrExternalUpdate
	}

	if exists && delta.Pos != nil {
		img := e.image()
		region := delta.Image.Bounds().Sub(delta.Image.Bounds().Min).Add(*delta.Pos)
		if !region.In(image.Rectangle{Max: img.Size()}) {
			return ErrUploadOutside
		}
		return img.Upload(*delta.Pos, delta.Image)
	}

	size := delta.FullSize()
	img, err := b.device.NewImage(size)
	if err != nil {
		return fmt.Errorf("allocate %v: %w", size, err)
	}
	var pos image.Point
	if delta.Pos != nil {
		pos = *delta.Pos
	}
	if err := img.Upload(pos, delta.Image); err != nil {
		img.Release()
		return fmt.Errorf("upload: %w", err)
	}

	if exists {
		b.retire(e.image())
	}
	b.entries[id] = managedEntry{img: img}

	log.WithFields(log.Fields{
		"texture": id,
		"size":    size,
	}).Debug("Texture allocated")
	return nil
}

// BuildCommands records one draw per primitive, in order, into a new
// command sequence for a target of dims pixels at scale pixels per
// point. The result is not submitted.
//
// Every texture a primitive references must already be registered,
// drawing an unknown texture is a programming error and panics.
func (b *Bridge) BuildCommands(primitives []model.ClippedPrimitive, dims image.Point, scale float32) (gfx.CommandBuffer, error) {
	if scale <= 0 {
		scale = 1
	}
	recorder, err := b.device.NewRecorder(gfx.Target{Extent: dims, Scale: scale})
	if err != nil {
		return nil, fmt.Errorf("bridge: new recorder: %w", err)
	}

	for idx := range primitives {
		prim := &primitives[idx]
		e, ok := b.entries[prim.Mesh.Texture]
		if !ok {
			panic(fmt.Sprintf("bridge: primitive %d draws texture %s which is not registered, texture deltas must be applied before drawing", idx, prim.Mesh.Texture))
		}

		recorder.SetScissor(ScissorRect(prim.Clip, scale, dims))
		if prim.Mesh.IsEmpty() {
			continue
		}
		recorder.BindTexture(e.image())
		if err := recorder.BindMesh(prim.Mesh.Vertices, prim.Mesh.Indices); err != nil {
			return nil, fmt.Errorf("bridge: primitive %d: %w", idx, err)
		}
		recorder.DrawIndexed(uint32(len(prim.Mesh.Indices)))
	}

	cb, err := recorder.Finish()
	if err != nil {
		return nil, fmt.Errorf("bridge: finish: %w", err)
	}
	b.frame++
	return cb, nil
}

// ScissorRect converts a clip rectangle in points into pixels, clamped
// to a target of dims pixels. A clip outside the target yields an empty
// rectangle on its nearest edge.
func ScissorRect(clip model.Rect, scale float32, dims image.Point) image.Rectangle {
	minX := toPixel(clip.Min.X()*scale, 0, dims.X)
	minY := toPixel(clip.Min.Y()*scale, 0, dims.Y)
	maxX := toPixel(clip.Max.X()*scale, minX, dims.X)
	maxY := toPixel(clip.Max.Y()*scale, minY, dims.Y)
	return image.Rectangle{
		Min: image.Point{X: minX, Y: minY},
		Max: image.Point{X: maxX, Y: maxY},
	}
}

// RegisterImage registers an application owned image and returns the id
// to draw it with. The bridge keeps its own reference until Unregister.
func (b *Bridge) RegisterImage(img *gfx.SharedImage) model.TextureID {
	if img == nil {
		panic("bridge: RegisterImage with nil image")
	}
	id := model.UserTexture(b.nextUser)
	b.nextUser++
	b.entries[id] = externalEntry{shared: img.Retain()}

	log.WithFields(log.Fields{
		"texture": id,
		"size":    img.Size(),
	}).Debug("Application image registered")
	return id
}

// RegisterImageBytes decodes an encoded image, uploads it and registers
// it as an application image. The bridge holds the only reference.
func (b *Bridge) RegisterImageBytes(data []byte) (model.TextureID, error) {
	pixels, _, err := DecodeImage(data)
	if err != nil {
		return 0, err
	}
	img, err := b.device.NewImage(pixels.Bounds().Size())
	if err != nil {
		return 0, fmt.Errorf("bridge: allocate image: %w", err)
	}
	if err := img.Upload(image.Point{}, pixels); err != nil {
		img.Release()
		return 0, fmt.Errorf("bridge: upload image: %w", err)
	}

	shared := gfx.Share(img)
	defer shared.Release()
	return b.RegisterImage(shared), nil
}

// Unregister drops the bridge's reference on an application image.
// Unknown and toolkit managed ids are ignored.
func (b *Bridge) Unregister(id model.TextureID) {
	e, ok := b.entries[id]
	if !ok {
		return
	}
	external, ok := e.(externalEntry)
	if !ok {
		log.WithField("texture", id).Debug("Unregister of managed texture ignored")
		return
	}
	delete(b.entries, id)
	b.retire(external.shared)
}

// Lookup returns the image registered for id.
func (b *Bridge) Lookup(id model.TextureID) (gfx.Image, bool) {
	e, ok := b.entries[id]
	if !ok {
		return nil, false
	}
	return e.image(), true
}

// IsExternal reports whether id is a registered application image.
func (b *Bridge) IsExternal(id model.TextureID) bool {
	_, ok := b.entries[id].(externalEntry)
	return ok
}

// Len returns the number of registered textures.
func (b *Bridge) Len() int {
	return len(b.entries)
}

// Pending returns the number of images waiting to be released.
func (b *Bridge) Pending() int {
	return len(b.releases)
}

// Frame returns the number of command sequences built so far.
func (b *Bridge) Frame() uint64 {
	return b.frame
}

// Collect releases queued images whose frames have retired.
func (b *Bridge) Collect() {
	if n := b.releases.collect(b.frame, b.lag); n > 0 {
		log.WithFields(log.Fields{
			"released": n,
			"frame":    b.frame,
		}).Debug("Retired textures released")
	}
}

// Destroy releases every image the bridge holds. The caller must make
// sure the GPU is idle first.
func (b *Bridge) Destroy() {
	for id, e := range b.entries {
		switch e := e.(type) {
		case managedEntry:
			e.img.Release()
		case externalEntry:
			e.shared.Release()
		}
		delete(b.entries, id)
	}
	b.releases.flush()
}

func (b *Bridge) retire(res gfx.Releasable) {
	if b.lag == 0 {
		res.Release()
		return
	}
	b.releases.push(b.frame, res)
}

// toPixel rounds v into [lo, hi]. The clamp happens before the integer
// conversion, infinite clips stay in range and NaN maps to lo.
func toPixel(v float32, lo, hi int) int {
	f := float64(v)
	switch {
	case math.IsNaN(f), f <= float64(lo):
		return lo
	case f >= float64(hi):
		return hi
	}
	n := int(math.Round(f))
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
