package cursor

import (
	"github.com/lixenwraith/fitts/vmath"
)

// Point is the baseline technique: every click hit-tests the exact cursor position
type Point struct {
	scene    Scene
	selector Selector
	feedback Feedback

	position vmath.Vec2
	visible  bool
}

// NewPoint creates a hidden point cursor
func NewPoint(scene Scene, selector Selector, feedback Feedback) *Point {
	if feedback == nil {
		feedback = NopFeedback{}
	}
	return &Point{scene: scene, selector: selector, feedback: feedback}
}

func (p *Point) Type() Type           { return PointCursor }
func (p *Point) Position() vmath.Vec2 { return p.position }
func (p *Point) Visible() bool        { return p.visible }
func (p *Point) Show()                { p.visible = true }
func (p *Point) Hide()                { p.visible = false }
func (p *Point) Reset()               {}

// Update follows pos and resolves a click by direct hit-testing, regardless of any radius
func (p *Point) Update(pos vmath.Vec2, click bool) {
	if !p.visible {
		return
	}
	p.position = pos
	if !click {
		return
	}

	c := Click{Cursor: PointCursor, Position: pos}
	if e, ok := p.scene.HitTest(pos); ok {
		c.Entity = e
		c.Goal, c.Selected = p.selector.Select(e)
	}
	p.feedback.Clicked(c)
}
