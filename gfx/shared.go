// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import (
	"image"
	"sync/atomic"
)

// SharedImage is a reference counted Image. Every holder calls Release
// once, the underlying image is released by the last one.
type SharedImage struct {
	img  Image
	refs int32
}

// Share wraps img with a single reference owned by the caller.
func Share(img Image) *SharedImage {
	return &SharedImage{
		img:  img,
		refs: 1,
	}
}

// Retain adds a reference and returns the same SharedImage.
func (s *SharedImage) Retain() *SharedImage {
	if atomic.AddInt32(&s.refs, 1) <= 1 {
		panic("gfx: Retain on a released SharedImage")
	}
	return s
}

// Release drops a reference.
func (s *SharedImage) Release() {
	switch refs := atomic.AddInt32(&s.refs, -1); {
	case refs == 0:
		s.img.Release()
	case refs < 0:
		panic("gfx: SharedImage released more times than retained")
	}
}

// Refs returns the current number of references.
func (s *SharedImage) Refs() int {
	return int(atomic.LoadInt32(&s.refs))
}

// Image returns the wrapped image.
func (s *SharedImage) Image() Image {
	return s.img
}

// Size implements Image
func (s *SharedImage) Size() image.Point {
	return s.img.Size()
}

// Upload implements Image
func (s *SharedImage) Upload(pos image.Point, pixels *image.RGBA) error {
	return s.img.Upload(pos, pixels)
}
