package main

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lixenwraith/fitts/core"
	"github.com/lixenwraith/fitts/cursor"
	"github.com/lixenwraith/fitts/layout"
	"github.com/lixenwraith/fitts/record"
	"github.com/lixenwraith/fitts/study"
	"github.com/lixenwraith/fitts/vmath"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	sess, err := study.NewSession(study.Options{
		Settings: study.Settings{
			ParticipantID:   "3",
			Cursor:          cursor.PointCursor,
			TargetSizes:     []float64{1},
			Amplitudes:      []float64{4},
			EWRatios:        []float64{0.5},
			StationaryCount: 1,
			TotalTrials:     1,
		},
		Layout: layout.DefaultConfig(),
		Bubble: cursor.DefaultBubbleConfig(),
		Rng:    rand.New(rand.NewPCG(1, 2)),
		Bounds: layout.StaticBounds(layout.Centered(40, 24)),
	})
	require.NoError(t, err)

	sink := &record.SummarySink{
		Dir:       t.TempDir(),
		SessionID: "first",
		Now:       func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	sess.Subscribe(sink)
	return &app{session: sess, log: zap.NewNop(), sink: sink}
}

// completeRun selects the single goal and waits out the feedback delay
func completeRun(t *testing.T, a *app) {
	t.Helper()
	e, ok := a.session.World().Goal()
	require.True(t, ok)
	tgt, _ := a.session.World().Get(e)
	pos := tgt.Position

	a.session.Update(16*time.Millisecond, study.Input{Position: pos, Click: true})
	a.session.Update(study.DefaultFeedbackDelay, study.Input{Position: pos})
	require.Equal(t, study.PhaseCompleted, a.session.Phase())
}

func TestRestartWritesSeparateSummary(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.session.Begin())

	completeRun(t, a)
	first := a.sink.Written()
	require.NotEmpty(t, first)

	require.NoError(t, a.restart())
	assert.NotEqual(t, "first", a.sink.SessionID)
	assert.Equal(t, study.PhaseTrials, a.session.Phase())

	completeRun(t, a)
	second := a.sink.Written()
	assert.NotEqual(t, first, second)

	for _, path := range []string{first, second} {
		doc, err := record.ReadSummary(path)
		require.NoError(t, err)
		assert.Equal(t, 1, doc.TotalTrials)
	}
}

func TestRestartIgnoredBeforeCompletion(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.session.Begin())

	require.NoError(t, a.restart())
	assert.Equal(t, "first", a.sink.SessionID)
	assert.Equal(t, study.PhaseTrials, a.session.Phase())
}

func TestTraceFeedbackThroughFanout(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	var fb cursor.Feedback = cursor.Fanout{cursor.NopFeedback{}, newTraceFeedback(zap.New(obs))}

	e := core.NewEntity(2, 1)
	fb.HoverEnter(e)
	fb.Captured(e)
	fb.Clicked(cursor.Click{Cursor: cursor.BubbleCursor, Position: vmath.V2(1, 2), Entity: e, Selected: true})
	fb.Released(e)
	fb.HoverExit(e)

	var msgs []string
	for _, entry := range logs.All() {
		msgs = append(msgs, entry.Message)
		assert.Equal(t, "cursor", entry.LoggerName)
	}
	assert.Equal(t, []string{"hover enter", "captured", "click", "released", "hover exit"}, msgs)

	click := logs.FilterMessage("click").All()[0].ContextMap()
	assert.Equal(t, true, click["selected"])
	assert.Equal(t, "BubbleCursor", click["cursor"])
}
