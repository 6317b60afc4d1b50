package study

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/fitts/cursor"
	"github.com/lixenwraith/fitts/engine"
)

// DefaultSettleDelay is the pause between clearing one trial and populating the next
const DefaultSettleDelay = 500 * time.Millisecond

// State is the sequencer lifecycle
type State uint8

const (
	StateIdle State = iota
	StateBuilding
	StateRunning
	StateSettling
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBuilding:
		return "Building"
	case StateRunning:
		return "Running"
	case StateSettling:
		return "Settling"
	case StateCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// SceneBuilder materializes and tears down a trial's targets
type SceneBuilder interface {
	Populate(index int, c Condition)
	Clear()
}

// Row is one trial result handed to the Recorder
type Row struct {
	ParticipantID string
	Cursor        cursor.Type
	Condition
	MovementTime time.Duration
	MissedClicks int
}

// Recorder persists trial rows; errors are logged and the study continues
type Recorder interface {
	WriteHeader() error
	WriteRow(r Row) error
}

// Summary is the end-of-study statistics
type Summary struct {
	ParticipantID     string
	Cursor            cursor.Type
	TotalTrials       int
	TotalTime         time.Duration
	TotalMissedClicks int
	HighestStreak     int
}

// String renders the ending screen text
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Trials: %d\n", s.TotalTrials)
	fmt.Fprintf(&b, "Total Time: %.2f seconds\n", s.TotalTime.Seconds())
	fmt.Fprintf(&b, "Total Missed Clicks: %d\n", s.TotalMissedClicks)
	fmt.Fprintf(&b, "Highest Streak: %d", s.HighestStreak)
	return b.String()
}

// Listener receives outbound study events
type Listener interface {
	// TrialCompleted fires once per trial; correct means no missed clicks
	TrialCompleted(correct bool)
	MissedClick()
	StudyCompleted(s Summary)
}

// NopListener ignores all study events
type NopListener struct{}

func (NopListener) TrialCompleted(bool)    {}
func (NopListener) MissedClick()           {}
func (NopListener) StudyCompleted(Summary) {}

// Metrics is a snapshot of sequencer progress
type Metrics struct {
	State            State
	TrialIndex       int
	TotalTrials      int
	Elapsed          time.Duration
	MissedClicks     int
	CumulativeTime   time.Duration
	CumulativeMissed int
	Completed        int
}

// SequencerOptions wires the sequencer's collaborators
type SequencerOptions struct {
	Rng         *rand.Rand
	Scheduler   *engine.Scheduler
	Scene       SceneBuilder
	Recorder    Recorder // Optional
	Listener    Listener // Optional
	SettleDelay time.Duration
	Logger      *zap.Logger
}

// Sequencer drives a block of trials
// Single-threaded: every method runs on the frame loop
type Sequencer struct {
	settings Settings
	opts     SequencerOptions
	log      *zap.Logger

	state State
	block Block
	index int

	elapsed time.Duration
	missed  int
	frozen  bool // Goal selected; MT stops accumulating until CompleteTrial

	cumTime   time.Duration
	cumMissed int
	completed int
}

// NewSequencer creates an idle sequencer
func NewSequencer(settings Settings, opts SequencerOptions) (*Sequencer, error) {
	if opts.Rng == nil {
		return nil, errors.New("sequencer: nil rng")
	}
	if opts.Scheduler == nil {
		return nil, errors.New("sequencer: nil scheduler")
	}
	if opts.Scene == nil {
		return nil, errors.New("sequencer: nil scene builder")
	}
	if opts.Listener == nil {
		opts.Listener = NopListener{}
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Sequencer{
		settings: settings,
		opts:     opts,
		log:      opts.Logger.Named("sequencer"),
	}, nil
}

// Start builds the block, writes the header and enters the first trial
// A ConfigError leaves the sequencer Idle
func (s *Sequencer) Start() error {
	if s.state != StateIdle {
		return fmt.Errorf("start in state %v: %w", s.state, ErrAlreadyStarted)
	}

	s.state = StateBuilding
	block, err := BuildBlock(s.settings, s.opts.Rng)
	if err != nil {
		s.state = StateIdle
		return err
	}
	s.block = block

	if s.opts.Recorder != nil {
		if err := s.opts.Recorder.WriteHeader(); err != nil {
			s.log.Warn("write header failed", zap.Error(err))
		}
	}

	s.log.Info("study started",
		zap.String("participant", s.settings.ParticipantID),
		zap.Stringer("cursor", s.settings.Cursor),
		zap.Int("trials", len(block)),
	)
	s.enterRunning(0)
	return nil
}

// Tick accumulates movement time while a trial is live
func (s *Sequencer) Tick(dt time.Duration) {
	if s.state == StateRunning && !s.frozen && dt > 0 {
		s.elapsed += dt
	}
}

// MissedClick counts a non-goal selection against the current trial
func (s *Sequencer) MissedClick() {
	if s.state != StateRunning || s.frozen {
		return
	}
	s.missed++
	s.opts.Listener.MissedClick()
}

// GoalSelected freezes the movement time at the moment of selection
func (s *Sequencer) GoalSelected() {
	if s.state == StateRunning {
		s.frozen = true
	}
}

// CompleteTrial records the current trial and advances
// Returns false outside Running
func (s *Sequencer) CompleteTrial() bool {
	if s.state != StateRunning {
		return false
	}

	cond := s.block[s.index]
	row := Row{
		ParticipantID: s.settings.ParticipantID,
		Cursor:        s.settings.Cursor,
		Condition:     cond,
		MovementTime:  s.elapsed,
		MissedClicks:  s.missed,
	}
	if s.opts.Recorder != nil {
		if err := s.opts.Recorder.WriteRow(row); err != nil {
			s.log.Warn("write trial row failed", zap.Int("trial", s.index), zap.Error(err))
		}
	}
	s.log.Debug("trial completed",
		zap.Int("trial", s.index),
		zap.Duration("mt", s.elapsed),
		zap.Int("missed", s.missed),
		zap.Bool("moving", cond.Moving),
	)

	s.cumTime += s.elapsed
	s.cumMissed += s.missed
	s.completed++
	correct := s.missed == 0
	s.index++

	s.opts.Scene.Clear()

	if s.index >= len(s.block) {
		s.state = StateCompleted
		s.opts.Listener.TrialCompleted(correct)
		sum := s.Summary()
		s.log.Info("study completed",
			zap.Int("trials", sum.TotalTrials),
			zap.Duration("total_time", sum.TotalTime),
			zap.Int("missed", sum.TotalMissedClicks),
		)
		s.opts.Listener.StudyCompleted(sum)
		return true
	}

	s.state = StateSettling
	s.opts.Listener.TrialCompleted(correct)

	next := s.index
	s.opts.Scheduler.After(s.opts.SettleDelay, func() {
		if s.state == StateSettling && s.index == next {
			s.enterRunning(next)
		}
	})
	return true
}

// Reset discards progress and returns to Idle
// Pending settle continuations are guarded by state and die with the scheduler epoch
func (s *Sequencer) Reset() {
	s.state = StateIdle
	s.block = nil
	s.index = 0
	s.elapsed = 0
	s.missed = 0
	s.frozen = false
	s.cumTime = 0
	s.cumMissed = 0
	s.completed = 0
}

// State returns the lifecycle state
func (s *Sequencer) State() State {
	return s.state
}

// Index returns the current trial index
func (s *Sequencer) Index() int {
	return s.index
}

// Frozen reports whether the live trial's goal was already selected
func (s *Sequencer) Frozen() bool {
	return s.state == StateRunning && s.frozen
}

// Current returns the live trial's condition
func (s *Sequencer) Current() (Condition, bool) {
	if s.state != StateRunning || s.index >= len(s.block) {
		return Condition{}, false
	}
	return s.block[s.index], true
}

// Metrics returns a progress snapshot
func (s *Sequencer) Metrics() Metrics {
	return Metrics{
		State:            s.state,
		TrialIndex:       s.index,
		TotalTrials:      len(s.block),
		Elapsed:          s.elapsed,
		MissedClicks:     s.missed,
		CumulativeTime:   s.cumTime,
		CumulativeMissed: s.cumMissed,
		Completed:        s.completed,
	}
}

// Summary returns end-of-study totals; HighestStreak is filled by the session
func (s *Sequencer) Summary() Summary {
	return Summary{
		ParticipantID:     s.settings.ParticipantID,
		Cursor:            s.settings.Cursor,
		TotalTrials:       s.completed,
		TotalTime:         s.cumTime,
		TotalMissedClicks: s.cumMissed,
	}
}

func (s *Sequencer) enterRunning(i int) {
	s.state = StateRunning
	s.index = i
	s.elapsed = 0
	s.missed = 0
	s.frozen = false
	s.opts.Scene.Populate(i, s.block[i])
}
