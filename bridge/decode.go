// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bridge

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	// image formats accepted for registration
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes an encoded image into tightly packed RGBA pixels
// with a zero origin.
func DecodeImage(data []byte) (*image.RGBA, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrImageDecode, err.Error())
	}
	return toRGBA(img), format, nil
}

func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	if m, ok := img.(*image.RGBA); ok && m.Stride == 4*bounds.Dx() && bounds.Min == (image.Point{}) {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}
