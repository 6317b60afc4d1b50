package study

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fitts/engine"
)

type fakeScene struct {
	populated []int
	cleared   int
}

func (f *fakeScene) Populate(index int, _ Condition) { f.populated = append(f.populated, index) }
func (f *fakeScene) Clear()                          { f.cleared++ }

type memRecorder struct {
	headers int
	rows    []Row
	err     error
}

func (m *memRecorder) WriteHeader() error {
	m.headers++
	return m.err
}

func (m *memRecorder) WriteRow(r Row) error {
	m.rows = append(m.rows, r)
	return m.err
}

type eventLog struct {
	trials    []bool
	missed    int
	summaries []Summary
}

func (e *eventLog) TrialCompleted(correct bool) { e.trials = append(e.trials, correct) }
func (e *eventLog) MissedClick()                { e.missed++ }
func (e *eventLog) StudyCompleted(s Summary)    { e.summaries = append(e.summaries, s) }

type seqFixture struct {
	seq   *Sequencer
	clock *engine.GameClock
	sched *engine.Scheduler
	scene *fakeScene
	rec   *memRecorder
	log   *eventLog
}

func newSeqFixture(t *testing.T, s Settings) *seqFixture {
	t.Helper()
	f := &seqFixture{
		clock: engine.NewGameClock(),
		scene: &fakeScene{},
		rec:   &memRecorder{},
		log:   &eventLog{},
	}
	f.sched = engine.NewScheduler(f.clock)
	seq, err := NewSequencer(s, SequencerOptions{
		Rng:       testRng(7),
		Scheduler: f.sched,
		Scene:     f.scene,
		Recorder:  f.rec,
		Listener:  f.log,
	})
	require.NoError(t, err)
	f.seq = seq
	return f
}

func (f *seqFixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.seq.Tick(d)
	f.sched.Poll()
}

func threeTrialSettings() Settings {
	s := factorialSettings()
	s.TotalTrials = 3
	return s
}

func TestSequencerStartEntersFirstTrial(t *testing.T) {
	f := newSeqFixture(t, threeTrialSettings())
	require.NoError(t, f.seq.Start())

	assert.Equal(t, StateRunning, f.seq.State())
	assert.Equal(t, 0, f.seq.Index())
	assert.Equal(t, []int{0}, f.scene.populated)
	assert.Equal(t, 1, f.rec.headers)

	_, ok := f.seq.Current()
	assert.True(t, ok)

	err := f.seq.Start()
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestSequencerStartRejectsBadSettings(t *testing.T) {
	s := threeTrialSettings()
	s.TotalTrials = 0
	f := newSeqFixture(t, s)

	err := f.seq.Start()
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, StateIdle, f.seq.State())
	assert.Empty(t, f.scene.populated)
}

func TestSequencerMovementTimeFreezesAtGoal(t *testing.T) {
	f := newSeqFixture(t, threeTrialSettings())
	require.NoError(t, f.seq.Start())

	f.advance(300 * time.Millisecond)
	f.advance(200 * time.Millisecond)
	f.seq.GoalSelected()
	f.advance(500 * time.Millisecond)

	require.True(t, f.seq.CompleteTrial())
	require.Len(t, f.rec.rows, 1)
	assert.Equal(t, 500*time.Millisecond, f.rec.rows[0].MovementTime)
	assert.Equal(t, "12", f.rec.rows[0].ParticipantID)
}

func TestSequencerMissedClickKeepsIndex(t *testing.T) {
	f := newSeqFixture(t, threeTrialSettings())
	require.NoError(t, f.seq.Start())

	f.seq.MissedClick()
	f.seq.MissedClick()
	assert.Equal(t, 0, f.seq.Index())
	assert.Equal(t, 2, f.seq.Metrics().MissedClicks)
	assert.Equal(t, 2, f.log.missed)

	// Ignored once the goal is selected
	f.seq.GoalSelected()
	f.seq.MissedClick()
	assert.Equal(t, 2, f.seq.Metrics().MissedClicks)

	f.seq.CompleteTrial()
	assert.Equal(t, []bool{false}, f.log.trials)
	assert.Equal(t, 2, f.rec.rows[0].MissedClicks)
}

func TestSequencerSettlesBeforeNextTrial(t *testing.T) {
	f := newSeqFixture(t, threeTrialSettings())
	require.NoError(t, f.seq.Start())

	f.seq.CompleteTrial()
	assert.Equal(t, StateSettling, f.seq.State())
	assert.Equal(t, 1, f.scene.cleared)
	assert.False(t, f.seq.CompleteTrial(), "no completion while settling")

	f.advance(DefaultSettleDelay - time.Millisecond)
	assert.Equal(t, StateSettling, f.seq.State())

	f.advance(time.Millisecond)
	assert.Equal(t, StateRunning, f.seq.State())
	assert.Equal(t, 1, f.seq.Index())
	assert.Equal(t, []int{0, 1}, f.scene.populated)
	assert.Zero(t, f.seq.Metrics().Elapsed)
}

func TestSequencerCompletesOnce(t *testing.T) {
	f := newSeqFixture(t, threeTrialSettings())
	require.NoError(t, f.seq.Start())

	for i := 0; i < 3; i++ {
		f.advance(100 * time.Millisecond)
		if i == 1 {
			f.seq.MissedClick()
		}
		require.True(t, f.seq.CompleteTrial())
		f.advance(DefaultSettleDelay)
	}

	assert.Equal(t, StateCompleted, f.seq.State())
	assert.Equal(t, []bool{true, false, true}, f.log.trials)
	require.Len(t, f.log.summaries, 1)

	sum := f.log.summaries[0]
	assert.Equal(t, 3, sum.TotalTrials)
	assert.Equal(t, 1, sum.TotalMissedClicks)
	assert.Equal(t, 300*time.Millisecond, sum.TotalTime)
	assert.Len(t, f.rec.rows, 3)

	assert.False(t, f.seq.CompleteTrial())
	assert.Len(t, f.log.summaries, 1)
}

func TestSequencerRecorderFailureContinues(t *testing.T) {
	f := newSeqFixture(t, threeTrialSettings())
	f.rec.err = errors.New("disk full")
	require.NoError(t, f.seq.Start())

	require.True(t, f.seq.CompleteTrial())
	f.advance(DefaultSettleDelay)
	assert.Equal(t, StateRunning, f.seq.State())
	assert.Equal(t, 1, f.seq.Index())
}

func TestSequencerResetDropsSettle(t *testing.T) {
	f := newSeqFixture(t, threeTrialSettings())
	require.NoError(t, f.seq.Start())
	f.seq.CompleteTrial()

	f.seq.Reset()
	f.advance(DefaultSettleDelay)
	assert.Equal(t, StateIdle, f.seq.State())
	assert.Equal(t, []int{0}, f.scene.populated)

	require.NoError(t, f.seq.Start())
	assert.Equal(t, StateRunning, f.seq.State())
}

func TestSummaryString(t *testing.T) {
	s := Summary{TotalTrials: 4, TotalTime: 3250 * time.Millisecond, TotalMissedClicks: 2, HighestStreak: 3}
	assert.Equal(t, "Total Trials: 4\nTotal Time: 3.25 seconds\nTotal Missed Clicks: 2\nHighest Streak: 3", s.String())
}
