package cursor

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/fitts/core"
	"github.com/lixenwraith/fitts/vmath"
)

// Default bubble radii in world units
const (
	DefaultMinRadius = 1.0
	DefaultMaxRadius = 2.8
)

// ErrInvalidRadius is returned for non-positive or inverted bubble radii
var ErrInvalidRadius = errors.New("cursor: invalid bubble radius")

// BubbleConfig holds the activation radius bounds
type BubbleConfig struct {
	MinRadius float64 // Capture radius; clicks select only inside it
	MaxRadius float64 // Outer search radius
}

// DefaultBubbleConfig returns the study radii
func DefaultBubbleConfig() BubbleConfig {
	return BubbleConfig{MinRadius: DefaultMinRadius, MaxRadius: DefaultMaxRadius}
}

// Validate checks 0 < MinRadius <= MaxRadius
func (c BubbleConfig) Validate() error {
	if c.MinRadius <= 0 || c.MaxRadius <= 0 || c.MinRadius > c.MaxRadius {
		return fmt.Errorf("%w: min=%v max=%v", ErrInvalidRadius, c.MinRadius, c.MaxRadius)
	}
	return nil
}

// Bubble snaps to the nearest target inside MaxRadius and sizes its activation
// region to that distance, clamped to [MinRadius, MaxRadius]
//
// Frame phases run in a fixed order: MoveTo, Detect, Interact, Commit
// Hover exit on the previous nearest always fires before hover enter on the new one
// Ties on distance keep the earliest candidate in scene iteration (spawn) order
type Bubble struct {
	cfg      BubbleConfig
	scene    Scene
	selector Selector
	feedback Feedback

	position vmath.Vec2
	visible  bool

	radius  float64
	inRange bool

	nearest     core.Entity
	nearestDist float64
	previous    core.Entity // Nearest as of the last Commit
	captured    core.Entity
}

// NewBubble creates a hidden bubble cursor
func NewBubble(cfg BubbleConfig, scene Scene, selector Selector, feedback Feedback) (*Bubble, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if feedback == nil {
		feedback = NopFeedback{}
	}
	return &Bubble{cfg: cfg, scene: scene, selector: selector, feedback: feedback}, nil
}

func (b *Bubble) Type() Type           { return BubbleCursor }
func (b *Bubble) Position() vmath.Vec2 { return b.position }
func (b *Bubble) Visible() bool        { return b.visible }
func (b *Bubble) Show()                { b.visible = true }

// Config returns the radius bounds
func (b *Bubble) Config() BubbleConfig {
	return b.cfg
}

// Hide exits any hovered target, releases capture and stops processing
func (b *Bubble) Hide() {
	b.exit(b.previous)
	if b.nearest != b.previous {
		b.exit(b.nearest)
	}
	b.release()
	b.clear()
	b.visible = false
}

// Reset forgets every reference without firing transitions
func (b *Bubble) Reset() {
	b.clear()
}

// ActivationRadius returns the current bubble radius; ok is false when no target is in range
func (b *Bubble) ActivationRadius() (radius float64, ok bool) {
	return b.radius, b.inRange
}

// Nearest returns the current nearest target and its distance
func (b *Bubble) Nearest() (core.Entity, float64, bool) {
	return b.nearest, b.nearestDist, b.nearest.Valid()
}

// Captured returns the target inside MinRadius, if any
func (b *Bubble) Captured() (core.Entity, bool) {
	return b.captured, b.captured.Valid()
}

// Update runs one frame
func (b *Bubble) Update(pos vmath.Vec2, click bool) {
	if !b.visible {
		return
	}
	b.MoveTo(pos)
	b.Detect()
	b.Interact(click)
	b.Commit()
}

// MoveTo sets the cursor position for this frame
func (b *Bubble) MoveTo(pos vmath.Vec2) {
	b.position = pos
}

// Detect finds the nearest candidate, sizes the bubble and drives hover/capture transitions
func (b *Bubble) Detect() {
	candidates := b.scene.Within(b.position, b.cfg.MaxRadius)

	if len(candidates) == 0 {
		b.exit(b.previous)
		b.release()
		b.nearest = core.NoEntity
		b.nearestDist = 0
		b.radius = 0
		b.inRange = false
		return
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Distance < best.Distance {
			best = c
		}
	}

	b.nearest = best.Entity
	b.nearestDist = best.Distance
	b.radius = vmath.Clamp(best.Distance, b.cfg.MinRadius, b.cfg.MaxRadius)
	b.inRange = true

	if b.nearest != b.previous {
		if b.captured != b.nearest {
			b.release()
		}
		b.exit(b.previous)
		if !b.scene.IsGoal(b.nearest) && b.scene.HoverEnter(b.nearest) {
			b.feedback.HoverEnter(b.nearest)
		}
	}

	if b.nearestDist <= b.cfg.MinRadius {
		if b.captured != b.nearest {
			b.release()
			b.captured = b.nearest
			b.scene.SetCaptured(b.captured, true)
			b.feedback.Captured(b.captured)
		}
	} else {
		b.release()
	}
}

// Interact resolves a click against the captured nearest target
// A click with nothing inside MinRadius is a no-op, not a miss
func (b *Bubble) Interact(click bool) {
	if !click {
		return
	}

	c := Click{Cursor: BubbleCursor, Position: b.position}
	if b.nearest.Valid() && b.nearestDist <= b.cfg.MinRadius {
		c.Entity = b.nearest
		c.Goal, c.Selected = b.selector.Select(b.nearest)
	}
	b.feedback.Clicked(c)
}

// Commit stores this frame's nearest for next frame's diff
func (b *Bubble) Commit() {
	b.previous = b.nearest
}

// exit fires hover exit on a non-goal target; stale and goal handles are skipped
func (b *Bubble) exit(e core.Entity) {
	if !e.Valid() || b.scene.IsGoal(e) {
		return
	}
	if b.scene.HoverExit(e) {
		b.feedback.HoverExit(e)
	}
}

func (b *Bubble) release() {
	if !b.captured.Valid() {
		return
	}
	e := b.captured
	b.captured = core.NoEntity
	b.scene.SetCaptured(e, false)
	b.feedback.Released(e)
}

func (b *Bubble) clear() {
	b.nearest = core.NoEntity
	b.previous = core.NoEntity
	b.captured = core.NoEntity
	b.nearestDist = 0
	b.radius = 0
	b.inRange = false
}
