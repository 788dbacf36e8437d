// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package imui

import (
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korugui/model"
)

// Style holds widget colors.
type Style struct {
	Panel        model.Color
	Button       model.Color
	ButtonHover  model.Color
	ButtonActive model.Color
	Text         model.Color
	Padding      float32
}

// DefaultStyle is a dark style.
var DefaultStyle = Style{
	Panel:        model.Color{R: 27, G: 27, B: 27, A: 240},
	Button:       model.Gray(60),
	ButtonHover:  model.Gray(80),
	ButtonActive: model.Gray(45),
	Text:         model.Gray(220),
	Padding:      4,
}

// Panel paints a background over r and runs fn clipped to it.
func (c *Context) Panel(r model.Rect, fn func()) {
	c.FillRect(r, DefaultStyle.Panel)
	c.WithClip(r, fn)
}

// Label paints text inside r, vertically centered.
func (c *Context) Label(r model.Rect, text string) {
	size := c.MeasureText(text)
	pos := glm.Vec2{r.Min.X() + DefaultStyle.Padding, r.Center().Y() - size.Y()/2}
	c.Text(pos, text, DefaultStyle.Text)
}

// Button paints a button with a centered label and reports whether it
// was clicked this frame.
func (c *Context) Button(r model.Rect, label string) bool {
	hovered := c.Hovered(r)
	col := DefaultStyle.Button
	if hovered {
		c.SetCursor(model.CursorPointingHand)
		col = DefaultStyle.ButtonHover
		if c.down && r.Contains(c.pressedAt) {
			col = DefaultStyle.ButtonActive
		}
	}
	c.FillRect(r, col)

	size := c.MeasureText(label)
	pos := r.Center().Sub(size.Mul(0.5))
	c.Text(pos, label, DefaultStyle.Text)
	return c.Clicked(r)
}

// Checkbox paints a toggle box with a label and flips value on click.
func (c *Context) Checkbox(r model.Rect, label string, value *bool) bool {
	box := model.NewRect(r.Min.X(), r.Center().Y()-6, 12, 12)
	hovered := c.Hovered(r)
	if hovered {
		c.SetCursor(model.CursorPointingHand)
	}
	c.FillRect(box, DefaultStyle.Button)
	if *value {
		c.FillRect(box.Shrink(3), DefaultStyle.Text)
	}
	c.Label(model.Rect{Min: glm.Vec2{box.Max.X(), r.Min.Y()}, Max: r.Max}, label)

	if c.Clicked(r) {
		*value = !*value
		return true
	}
	return false
}
