// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"image"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/korugui/input"
	"github.com/devblok/korugui/model"
)

// ScrollLine is the scroll distance of one wheel notch, in points.
const ScrollLine = 20

// Translate maps an SDL event onto UI input events. SDL reports mouse
// positions in window coordinates, scale converts them to pixels.
// drawable is the current drawable size in pixels. Events the UI does
// not model translate to nothing.
func Translate(ev sdl.Event, scale float32, drawable image.Point) []input.Event {
	switch e := ev.(type) {
	case *sdl.MouseMotionEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			return nil
		}
		return []input.Event{pointer(e.X, e.Y, scale)}
	case *sdl.MouseButtonEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			return nil
		}
		button, ok := translateButton(e.Button)
		if !ok {
			return nil
		}
		return []input.Event{
			pointer(e.X, e.Y, scale),
			input.PointerButton{Button: button, Pressed: e.State == sdl.PRESSED},
		}
	case *sdl.MouseWheelEvent:
		dx, dy := float32(e.X), float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dx, dy = -dx, -dy
		}
		return []input.Event{input.Scroll{DX: dx * ScrollLine * scale, DY: dy * ScrollLine * scale}}
	case *sdl.KeyboardEvent:
		return []input.Event{input.Key{
			Key:     TranslateKey(e.Keysym.Sym),
			Pressed: e.State == sdl.PRESSED,
			Mods:    TranslateMods(e.Keysym.Mod),
		}}
	case *sdl.TextInputEvent:
		if text := e.GetText(); text != "" {
			return []input.Event{input.Text{Text: text}}
		}
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			// also covers moving to a display with another scale
			return []input.Event{input.ScaleChanged{Scale: scale, Width: drawable.X, Height: drawable.Y}}
		case sdl.WINDOWEVENT_LEAVE:
			return []input.Event{input.PointerLeft{}}
		case sdl.WINDOWEVENT_FOCUS_GAINED:
			return []input.Event{input.Focus{Focused: true}}
		case sdl.WINDOWEVENT_FOCUS_LOST:
			return []input.Event{input.Focus{Focused: false}}
		case sdl.WINDOWEVENT_EXPOSED:
			return []input.Event{input.RedrawRequested{}}
		case sdl.WINDOWEVENT_CLOSE:
			return []input.Event{input.CloseRequested{}}
		}
	case *sdl.QuitEvent:
		return []input.Event{input.CloseRequested{}}
	}
	return nil
}

func pointer(x, y int32, scale float32) input.PointerMoved {
	return input.PointerMoved{X: float64(float32(x) * scale), Y: float64(float32(y) * scale)}
}

func translateButton(b uint8) (model.PointerButton, bool) {
	switch b {
	case sdl.BUTTON_LEFT:
		return model.ButtonPrimary, true
	case sdl.BUTTON_RIGHT:
		return model.ButtonSecondary, true
	case sdl.BUTTON_MIDDLE:
		return model.ButtonMiddle, true
	}
	return 0, false
}

// TranslateKey maps an SDL keycode onto the keys the UI reacts to.
func TranslateKey(sym sdl.Keycode) model.Key {
	switch sym {
	case sdl.K_ESCAPE:
		return model.KeyEscape
	case sdl.K_RETURN, sdl.K_KP_ENTER:
		return model.KeyEnter
	case sdl.K_TAB:
		return model.KeyTab
	case sdl.K_BACKSPACE:
		return model.KeyBackspace
	case sdl.K_DELETE:
		return model.KeyDelete
	case sdl.K_SPACE:
		return model.KeySpace
	case sdl.K_LEFT:
		return model.KeyLeft
	case sdl.K_RIGHT:
		return model.KeyRight
	case sdl.K_UP:
		return model.KeyUp
	case sdl.K_DOWN:
		return model.KeyDown
	case sdl.K_HOME:
		return model.KeyHome
	case sdl.K_END:
		return model.KeyEnd
	}
	return model.KeyUnknown
}

// TranslateMods maps SDL key modifiers, left and right alike.
func TranslateMods(mod uint16) model.Modifiers {
	var m model.Modifiers
	if mod&sdl.KMOD_SHIFT != 0 {
		m |= model.ModShift
	}
	if mod&sdl.KMOD_CTRL != 0 {
		m |= model.ModCtrl
	}
	if mod&sdl.KMOD_ALT != 0 {
		m |= model.ModAlt
	}
	if mod&sdl.KMOD_GUI != 0 {
		m |= model.ModSuper
	}
	return m
}
