// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package platform provides the SDL window the UI is shown in and
// translates its events into UI input. SDL must be initialised, and
// every call made from the locked main thread.
package platform

import (
	"fmt"
	"image"
	"unsafe"

	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/korugui/input"
	"github.com/devblok/korugui/model"
)

// NewWindow creates a resizable, high dpi aware vulkan window and starts
// text input on it.
func NewWindow(title string, width, height int) (*Window, error) {
	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_ALLOW_HIGHDPI)
	if err != nil {
		return nil, fmt.Errorf("sdl.CreateWindow(): %w", err)
	}
	sdl.StartTextInput()

	w := &Window{
		window:  window,
		cursors: make(map[sdl.SystemCursor]*sdl.Cursor),
	}
	log.WithFields(log.Fields{
		"size":     w.Size(),
		"drawable": w.DrawableSize(),
	}).Info("Window created")
	return w, nil
}

// Window is an SDL window. It implements the cursor setter of the UI.
type Window struct {
	window  *sdl.Window
	cursors map[sdl.SystemCursor]*sdl.Cursor
	hidden  bool
}

// VulkanInstanceExtensions returns the instance extensions the window
// surface needs.
func (w *Window) VulkanInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// CreateSurface creates a vulkan surface for instance, the inner handle
// of a vulkan instance.
func (w *Window) CreateSurface(instance interface{}) (unsafe.Pointer, error) {
	surface, err := w.window.VulkanCreateSurface(instance)
	if err != nil {
		return nil, fmt.Errorf("sdl.VulkanCreateSurface(): %w", err)
	}
	return surface, nil
}

// Size returns the window size in window coordinates.
func (w *Window) Size() image.Point {
	width, height := w.window.GetSize()
	return image.Pt(int(width), int(height))
}

// DrawableSize returns the window size in pixels.
func (w *Window) DrawableSize() image.Point {
	width, height := w.window.VulkanGetDrawableSize()
	return image.Pt(int(width), int(height))
}

// Scale returns pixels per window coordinate.
func (w *Window) Scale() float32 {
	size := w.Size()
	if size.X <= 0 {
		return 1
	}
	drawable := w.DrawableSize()
	if drawable.X <= 0 {
		return 1
	}
	return float32(drawable.X) / float32(size.X)
}

// Translate translates an event of this window into UI input.
func (w *Window) Translate(ev sdl.Event) []input.Event {
	return Translate(ev, w.Scale(), w.DrawableSize())
}

// SetCursor shows icon as the mouse cursor.
func (w *Window) SetCursor(icon model.CursorIcon) error {
	if icon == model.CursorNone {
		if _, err := sdl.ShowCursor(sdl.DISABLE); err != nil {
			return fmt.Errorf("sdl.ShowCursor(): %w", err)
		}
		w.hidden = true
		return nil
	}

	id := SystemCursor(icon)
	cursor, ok := w.cursors[id]
	if !ok {
		cursor = sdl.CreateSystemCursor(id)
		if cursor == nil {
			return fmt.Errorf("sdl.CreateSystemCursor(%d): %v", id, sdl.GetError())
		}
		w.cursors[id] = cursor
	}
	sdl.SetCursor(cursor)

	if w.hidden {
		if _, err := sdl.ShowCursor(sdl.ENABLE); err != nil {
			return fmt.Errorf("sdl.ShowCursor(): %w", err)
		}
		w.hidden = false
	}
	return nil
}

// SystemCursor maps a cursor icon onto the closest SDL system cursor.
func SystemCursor(icon model.CursorIcon) sdl.SystemCursor {
	switch icon {
	case model.CursorPointingHand:
		return sdl.SYSTEM_CURSOR_HAND
	case model.CursorText:
		return sdl.SYSTEM_CURSOR_IBEAM
	case model.CursorMove:
		return sdl.SYSTEM_CURSOR_SIZEALL
	case model.CursorCrosshair:
		return sdl.SYSTEM_CURSOR_CROSSHAIR
	case model.CursorWait:
		return sdl.SYSTEM_CURSOR_WAIT
	case model.CursorNotAllowed:
		return sdl.SYSTEM_CURSOR_NO
	case model.CursorResizeHorizontal:
		return sdl.SYSTEM_CURSOR_SIZEWE
	case model.CursorResizeVertical:
		return sdl.SYSTEM_CURSOR_SIZENS
	}
	return sdl.SYSTEM_CURSOR_ARROW
}

// Destroy frees the cursors and destroys the window.
func (w *Window) Destroy() {
	sdl.StopTextInput()
	for id, cursor := range w.cursors {
		sdl.FreeCursor(cursor)
		delete(w.cursors, id)
	}
	if err := w.window.Destroy(); err != nil {
		log.WithError(err).Warn("Window destroy failed")
	}
}
