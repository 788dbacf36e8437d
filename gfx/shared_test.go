// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx_test

import (
	"image"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/korugui/gfx"
	"github.com/devblok/korugui/gfx/gfxtest"
)

func TestSharedImageReleasedByLastHolder(t *testing.T) {
	c := qt.New(t)
	dev := gfxtest.NewDevice()
	img, err := dev.NewImage(image.Pt(2, 2))
	c.Assert(err, qt.IsNil)

	shared := gfx.Share(img)
	shared.Retain()
	c.Assert(shared.Refs(), qt.Equals, 2)

	shared.Release()
	c.Assert(dev.Images[0].Released, qt.Equals, 0)

	shared.Release()
	c.Assert(dev.Images[0].Released, qt.Equals, 1)
	c.Assert(shared.Refs(), qt.Equals, 0)
}

func TestSharedImageOverRelease(t *testing.T) {
	c := qt.New(t)
	dev := gfxtest.NewDevice()
	img, _ := dev.NewImage(image.Pt(1, 1))

	shared := gfx.Share(img)
	shared.Release()
	c.Assert(func() { shared.Release() }, qt.PanicMatches, "gfx: SharedImage released more times than retained")
	c.Assert(func() { shared.Retain() }, qt.PanicMatches, "gfx: Retain on a released SharedImage")
}

func TestSharedImageForwardsUploads(t *testing.T) {
	c := qt.New(t)
	dev := gfxtest.NewDevice()
	img, _ := dev.NewImage(image.Pt(4, 4))
	shared := gfx.Share(img)

	c.Assert(shared.Size(), qt.Equals, image.Pt(4, 4))
	c.Assert(shared.Upload(image.Pt(2, 2), image.NewRGBA(image.Rect(0, 0, 2, 2))), qt.IsNil)
	c.Assert(dev.Images[0].Uploads, qt.DeepEquals, []image.Rectangle{image.Rect(2, 2, 4, 4)})
	c.Assert(shared.Upload(image.Pt(3, 3), image.NewRGBA(image.Rect(0, 0, 2, 2))), qt.Equals, gfxtest.ErrOutOfBounds)
}
