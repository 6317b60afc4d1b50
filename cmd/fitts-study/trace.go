package main

import (
	"go.uber.org/zap"

	"github.com/lixenwraith/fitts/core"
	"github.com/lixenwraith/fitts/cursor"
)

// traceFeedback writes cursor transitions to the debug log
// Useful for replaying a participant's hover path against the trial log
type traceFeedback struct {
	log *zap.Logger
}

func newTraceFeedback(log *zap.Logger) *traceFeedback {
	return &traceFeedback{log: log.Named("cursor")}
}

func (t *traceFeedback) HoverEnter(e core.Entity) {
	t.log.Debug("hover enter", zap.Stringer("target", e))
}

func (t *traceFeedback) HoverExit(e core.Entity) {
	t.log.Debug("hover exit", zap.Stringer("target", e))
}

func (t *traceFeedback) Captured(e core.Entity) {
	t.log.Debug("captured", zap.Stringer("target", e))
}

func (t *traceFeedback) Released(e core.Entity) {
	t.log.Debug("released", zap.Stringer("target", e))
}

func (t *traceFeedback) Clicked(c cursor.Click) {
	t.log.Debug("click",
		zap.Stringer("cursor", c.Cursor),
		zap.Float64("x", c.Position.X),
		zap.Float64("y", c.Position.Y),
		zap.Stringer("target", c.Entity),
		zap.Bool("goal", c.Goal),
		zap.Bool("selected", c.Selected),
	)
}
