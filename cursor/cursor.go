package cursor

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/fitts/core"
	"github.com/lixenwraith/fitts/target"
	"github.com/lixenwraith/fitts/vmath"
)

// Type selects the pointing technique under study
type Type uint8

const (
	PointCursor Type = iota
	BubbleCursor
)

// String returns the label written to the CSV "CT" column and used in file names
func (t Type) String() string {
	switch t {
	case PointCursor:
		return "PointCursor"
	case BubbleCursor:
		return "BubbleCursor"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// ParseType accepts the CSV label, case-insensitively, or the short forms "point"/"bubble"
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pointcursor", "point":
		return PointCursor, nil
	case "bubblecursor", "bubble":
		return BubbleCursor, nil
	default:
		return 0, fmt.Errorf("unknown cursor type %q", s)
	}
}

// Scene is the cursor's view of the live-target collection
// Implemented by *target.World; every method tolerates stale handles
type Scene interface {
	Within(center vmath.Vec2, radius float64) []target.Candidate
	HitTest(p vmath.Vec2) (core.Entity, bool)
	IsGoal(e core.Entity) bool
	HoverEnter(e core.Entity) bool
	HoverExit(e core.Entity) bool
	SetCaptured(e core.Entity, captured bool) bool
}

// Selector applies a resolved selection with its study side effects
// ok is false when the target was stale or already selected
type Selector interface {
	Select(e core.Entity) (goal bool, ok bool)
}

// Click describes how a primary click resolved
type Click struct {
	Cursor   Type
	Position vmath.Vec2
	Entity   core.Entity // NoEntity when nothing was under/captured by the cursor
	Goal     bool
	Selected bool // A selection was applied (false for repeats on already-selected targets)
}

// Hit reports whether the click resolved to a target
func (c Click) Hit() bool {
	return c.Entity.Valid()
}

// Feedback receives cursor transitions for audio/visual cues and event logs
type Feedback interface {
	HoverEnter(e core.Entity)
	HoverExit(e core.Entity)
	Captured(e core.Entity)
	Released(e core.Entity)
	Clicked(c Click)
}

// NopFeedback discards all cursor feedback
type NopFeedback struct{}

func (NopFeedback) HoverEnter(core.Entity) {}
func (NopFeedback) HoverExit(core.Entity)  {}
func (NopFeedback) Captured(core.Entity)   {}
func (NopFeedback) Released(core.Entity)   {}
func (NopFeedback) Clicked(Click)          {}

// Fanout forwards feedback to several sinks in order
type Fanout []Feedback

func (f Fanout) HoverEnter(e core.Entity) {
	for _, fb := range f {
		fb.HoverEnter(e)
	}
}

func (f Fanout) HoverExit(e core.Entity) {
	for _, fb := range f {
		fb.HoverExit(e)
	}
}

func (f Fanout) Captured(e core.Entity) {
	for _, fb := range f {
		fb.Captured(e)
	}
}

func (f Fanout) Released(e core.Entity) {
	for _, fb := range f {
		fb.Released(e)
	}
}

func (f Fanout) Clicked(c Click) {
	for _, fb := range f {
		fb.Clicked(c)
	}
}

// Cursor is one pointing technique driven once per frame
type Cursor interface {
	Type() Type
	// Update runs the frame: move to pos, then resolve click if set
	Update(pos vmath.Vec2, click bool)
	Position() vmath.Vec2
	Show()
	// Hide stops processing and drops any hover/capture state
	Hide()
	Visible() bool
	// Reset forgets target references without firing transitions; used after scene teardown
	Reset()
}
