// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model

import (
	"fmt"
	"image"
)

// TextureID identifies a texture known to the renderer. The toolkit
// issues ids below UserTextureBase, ids at or above it are handed out
// by the renderer for images the application registers itself.
type TextureID uint64

// Reserved texture ids
const (
	FontTexture     TextureID = 0
	UserTextureBase TextureID = 1 << 63
)

// UserTexture returns the n-th application owned texture id.
func UserTexture(n uint64) TextureID {
	return UserTextureBase | TextureID(n)
}

// IsUser reports whether the id belongs to the application range.
func (id TextureID) IsUser() bool {
	return id&UserTextureBase != 0
}

func (id TextureID) String() string {
	if id.IsUser() {
		return fmt.Sprintf("user#%d", uint64(id&^UserTextureBase))
	}
	return fmt.Sprintf("managed#%d", uint64(id))
}

// ImageDelta is a full or partial texture update. A nil Pos replaces
// the whole texture, otherwise Image is written at Pos into the
// existing texture.
type ImageDelta struct {
	Pos   *image.Point
	Size  image.Point
	Image *image.RGBA
}

// FullSize returns the size the texture must have after the update
// is applied when it has to be (re)allocated.
func (d *ImageDelta) FullSize() image.Point {
	if d.Size.X > 0 && d.Size.Y > 0 {
		return d.Size
	}
	size := d.Image.Bounds().Size()
	if d.Pos != nil {
		size = size.Add(*d.Pos)
	}
	return size
}

// TextureChange is one entry of a TextureDelta. A nil Update
// marks the texture for removal.
type TextureChange struct {
	ID     TextureID
	Update *ImageDelta
}

// IsRemoval reports whether the change frees the texture.
func (c TextureChange) IsRemoval() bool {
	return c.Update == nil
}

// TextureDelta lists texture changes in the order they were made.
// Later entries for the same id override earlier ones.
type TextureDelta struct {
	Changes []TextureChange
}

// Set queues a full or partial texture update.
func (d *TextureDelta) Set(id TextureID, delta ImageDelta) {
	d.Changes = append(d.Changes, TextureChange{ID: id, Update: &delta})
}

// Free queues a texture removal.
func (d *TextureDelta) Free(id TextureID) {
	d.Changes = append(d.Changes, TextureChange{ID: id})
}

// Append moves every change of o to the end of d.
func (d *TextureDelta) Append(o TextureDelta) {
	d.Changes = append(d.Changes, o.Changes...)
}

// IsEmpty reports whether there is nothing to apply.
func (d *TextureDelta) IsEmpty() bool {
	return len(d.Changes) == 0
}
