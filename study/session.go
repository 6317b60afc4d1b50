package study

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/fitts/core"
	"github.com/lixenwraith/fitts/cursor"
	"github.com/lixenwraith/fitts/engine"
	"github.com/lixenwraith/fitts/layout"
	"github.com/lixenwraith/fitts/motion"
	"github.com/lixenwraith/fitts/target"
	"github.com/lixenwraith/fitts/vmath"
)

// Session defaults
const (
	DefaultFeedbackDelay   = 500 * time.Millisecond
	DefaultStreakThreshold = 3
	DefaultBaseSpeed       = 2.0
	DefaultPathPoints      = 6
	DefaultWarmupSize      = 1.0
)

// Phase is the session's outer lifecycle around the sequencer
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseWarmup
	PhaseTrials
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWarmup:
		return "warmup"
	case PhaseTrials:
		return "trials"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MotionConfig tunes moving distractors
type MotionConfig struct {
	BaseSpeed      float64 // Spline parameter rate at level 0
	MovingPerTrial int     // Sampled distractors animated in a moving trial; <=0 animates all
	PathPoints     int     // Random control points per loop
}

// Options configures a Session
type Options struct {
	Settings Settings
	Layout   layout.Config
	Bubble   cursor.BubbleConfig
	Motion   MotionConfig

	Clustered       bool // Surround the goal with four EW-scaled distractors
	Warmup          bool // Centre goal before trial 0
	StreakThreshold int
	FeedbackDelay   time.Duration
	SettleDelay     time.Duration

	Rng      *rand.Rand
	Bounds   layout.BoundsProvider
	Recorder Recorder        // Optional
	Feedback cursor.Feedback // Optional cursor cue sink
	Logger   *zap.Logger
}

// Input is one frame of pointer state in world units
type Input struct {
	Position vmath.Vec2
	Click    bool
}

// Progress is the session's HUD snapshot
type Progress struct {
	Metrics
	Phase                Phase
	Streak               int
	HighestStreak        int
	Level                int
	DistractorMultiplier int
}

// Session owns the scene and drives cursor, sequencer and scheduler each frame
// Frame order: clock, trial timer, scheduled continuations, target motion, cursor
type Session struct {
	opts Options
	log  *zap.Logger

	clock *engine.GameClock
	sched *engine.Scheduler
	world *target.World
	gen   *layout.Generator
	seq   *Sequencer

	bubble *cursor.Bubble
	point  *cursor.Point
	active cursor.Cursor

	listeners []Listener

	phase      Phase
	streak     int
	highest    int
	level      int
	multiplier int
	summary    *Summary
}

// NewSession wires the scene; the session starts Idle
// Study settings are validated by Begin
func NewSession(opts Options) (*Session, error) {
	if err := opts.Bubble.Validate(); err != nil {
		return nil, &ConfigError{Field: "bubble", Reason: err.Error()}
	}
	if opts.Rng == nil {
		return nil, errors.New("session: nil rng")
	}
	if opts.Bounds == nil {
		return nil, errors.New("session: nil bounds provider")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Feedback == nil {
		opts.Feedback = cursor.NopFeedback{}
	}
	if opts.StreakThreshold <= 0 {
		opts.StreakThreshold = DefaultStreakThreshold
	}
	if opts.FeedbackDelay <= 0 {
		opts.FeedbackDelay = DefaultFeedbackDelay
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Motion.BaseSpeed <= 0 {
		opts.Motion.BaseSpeed = DefaultBaseSpeed
	}
	if opts.Motion.PathPoints <= 0 {
		opts.Motion.PathPoints = DefaultPathPoints
	}

	s := &Session{
		opts:       opts,
		log:        opts.Logger.Named("session"),
		clock:      engine.NewGameClock(),
		world:      target.NewWorld(),
		multiplier: 1,
	}
	s.sched = engine.NewScheduler(s.clock)
	s.gen = layout.NewGenerator(opts.Layout, opts.Rng, opts.Logger.Named("layout"))

	bubble, err := cursor.NewBubble(opts.Bubble, s.world, s, opts.Feedback)
	if err != nil {
		return nil, err
	}
	s.bubble = bubble
	s.point = cursor.NewPoint(s.world, s, opts.Feedback)
	if opts.Settings.Cursor == cursor.BubbleCursor {
		s.active = s.bubble
	} else {
		s.active = s.point
	}

	seq, err := NewSequencer(opts.Settings, SequencerOptions{
		Rng:         opts.Rng,
		Scheduler:   s.sched,
		Scene:       s,
		Recorder:    opts.Recorder,
		Listener:    s,
		SettleDelay: opts.SettleDelay,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	s.seq = seq
	return s, nil
}

// Subscribe registers an outbound event listener
func (s *Session) Subscribe(l Listener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// Begin starts the warm-up or, without one, the first trial
func (s *Session) Begin() error {
	if s.phase != PhaseIdle {
		return fmt.Errorf("begin in phase %v: %w", s.phase, ErrAlreadyStarted)
	}
	if err := s.opts.Settings.Validate(); err != nil {
		return err
	}

	if s.opts.Warmup {
		s.phase = PhaseWarmup
		size := DefaultWarmupSize
		if len(s.opts.Settings.TargetSizes) > 0 {
			size = s.opts.Settings.TargetSizes[0]
		}
		center := s.opts.Bounds.Bounds().Center()
		s.world.Spawn(target.New(center, size/2, true))
		s.active.Show()
		s.log.Info("warm-up target placed", zap.Float64("x", center.X), zap.Float64("y", center.Y))
		return nil
	}
	return s.startTrials()
}

// Update advances one frame
func (s *Session) Update(dt time.Duration, in Input) {
	if dt < 0 {
		dt = 0
	}
	s.clock.Advance(dt)
	s.seq.Tick(dt)
	s.sched.Poll()
	s.world.Step(dt)
	s.active.Update(in.Position, in.Click)
}

// Reset cancels pending continuations, clears the scene and returns to Idle
func (s *Session) Reset() {
	s.sched.Reset()
	s.bubble.Hide()
	s.point.Hide()
	s.world.Clear()
	s.bubble.Reset()
	s.point.Reset()
	s.seq.Reset()

	s.phase = PhaseIdle
	s.streak = 0
	s.highest = 0
	s.level = 0
	s.multiplier = 1
	s.summary = nil
	s.log.Info("session reset")
}

// Populate spawns the targets for trial index
func (s *Session) Populate(index int, c Condition) {
	if s.phase == PhaseCompleted {
		return
	}
	s.active.Reset()

	b := s.opts.Bounds.Bounds()
	plan := s.gen.Plan(layout.Request{
		Amplitude:   c.Amplitude,
		EWRatio:     c.EWRatio,
		Distractors: c.Distractors * s.multiplier,
		Clustered:   s.opts.Clustered,
	}, b)

	radius := c.TargetSize / 2
	s.world.Spawn(target.New(plan.Goal, radius, true))

	distractors := make([]core.Entity, 0, len(plan.Distractors))
	for _, pos := range plan.Distractors {
		distractors = append(distractors, s.world.Spawn(target.New(pos, radius, false)))
	}
	for _, pos := range plan.Cluster {
		s.world.Spawn(target.New(pos, radius, false))
	}

	moving := 0
	if c.Moving {
		moving = s.animate(distractors, b)
	}

	s.active.Show()
	s.log.Debug("trial populated",
		zap.Int("trial", index),
		zap.Float64("amplitude", c.Amplitude),
		zap.Float64("size", c.TargetSize),
		zap.Float64("ew_ratio", c.EWRatio),
		zap.Int("distractors", len(plan.Distractors)+len(plan.Cluster)),
		zap.Int("moving", moving),
		zap.Int("skipped", plan.Skipped),
	)
}

// Clear removes every target; the sequencer calls it between trials
func (s *Session) Clear() {
	s.world.Clear()
	s.bubble.Reset()
	s.point.Reset()
}

// Select applies a cursor selection and its study side effects
// Removal and trial advance run after the feedback delay; both are guarded
// against the handle going stale in between
func (s *Session) Select(e core.Entity) (goal bool, ok bool) {
	// Once the goal is picked the trial outcome is fixed; other targets stay inert
	if s.seq.Frozen() && !s.world.IsGoal(e) {
		return false, false
	}
	goal, ok = s.world.Select(e)
	if !ok {
		return goal, false
	}

	switch {
	case goal && s.phase == PhaseWarmup:
		s.sched.After(s.opts.FeedbackDelay, func() {
			if s.phase != PhaseWarmup || !s.world.Remove(e) {
				return
			}
			s.sched.After(s.opts.SettleDelay, func() {
				if s.phase == PhaseWarmup {
					if err := s.startTrials(); err != nil {
						s.log.Error("start trials failed", zap.Error(err))
					}
				}
			})
		})

	case goal:
		s.seq.GoalSelected()
		s.onCorrect()
		trial := s.seq.Index()
		s.sched.After(s.opts.FeedbackDelay, func() {
			if s.seq.State() != StateRunning || s.seq.Index() != trial || !s.world.Remove(e) {
				return
			}
			s.seq.CompleteTrial()
		})

	default:
		s.streak = 0
		s.seq.MissedClick()
		s.sched.After(s.opts.FeedbackDelay, func() {
			s.world.Remove(e)
		})
	}
	return goal, true
}

// TrialCompleted forwards the sequencer event
func (s *Session) TrialCompleted(correct bool) {
	for _, l := range s.listeners {
		l.TrialCompleted(correct)
	}
}

// MissedClick forwards the sequencer event
func (s *Session) MissedClick() {
	for _, l := range s.listeners {
		l.MissedClick()
	}
}

// StudyCompleted finalizes the session and forwards the summary with the streak record
func (s *Session) StudyCompleted(sum Summary) {
	sum.HighestStreak = s.highest
	s.summary = &sum
	s.phase = PhaseCompleted
	s.bubble.Hide()
	s.point.Hide()
	for _, l := range s.listeners {
		l.StudyCompleted(sum)
	}
}

// Phase returns the outer lifecycle phase
func (s *Session) Phase() Phase {
	return s.phase
}

// World exposes the scene for rendering
func (s *Session) World() *target.World {
	return s.world
}

// Cursor returns the active cursor
func (s *Session) Cursor() cursor.Cursor {
	return s.active
}

// Bubble returns the bubble cursor regardless of which is active
func (s *Session) Bubble() *cursor.Bubble {
	return s.bubble
}

// Sequencer exposes the trial sequencer
func (s *Session) Sequencer() *Sequencer {
	return s.seq
}

// Now returns elapsed game time
func (s *Session) Now() time.Duration {
	return s.clock.Now()
}

// Summary returns the final statistics once the study completed
func (s *Session) Summary() (Summary, bool) {
	if s.summary == nil {
		return Summary{}, false
	}
	return *s.summary, true
}

// Progress returns the HUD snapshot
func (s *Session) Progress() Progress {
	return Progress{
		Metrics:              s.seq.Metrics(),
		Phase:                s.phase,
		Streak:               s.streak,
		HighestStreak:        s.highest,
		Level:                s.level,
		DistractorMultiplier: s.multiplier,
	}
}

func (s *Session) startTrials() error {
	s.phase = PhaseTrials
	if err := s.seq.Start(); err != nil {
		s.phase = PhaseIdle
		return err
	}
	return nil
}

// onCorrect applies the streak policy after a goal selection
// Streak at or above the threshold raises the distractor multiplier to the
// streak, never lowering it; every threshold multiple bumps the speed level
func (s *Session) onCorrect() {
	s.streak++
	if s.streak > s.highest {
		s.highest = s.streak
	}
	th := s.opts.StreakThreshold
	if s.streak < th {
		return
	}
	s.multiplier = max(s.multiplier, s.streak)
	if s.streak%th == 0 {
		s.level++
		s.world.SetSpeed(motion.SpeedFor(s.opts.Motion.BaseSpeed, s.level))
		s.log.Info("level up",
			zap.Int("level", s.level),
			zap.Int("streak", s.streak),
			zap.Int("multiplier", s.multiplier),
		)
	}
}

// animate attaches loop paths to up to MovingPerTrial sampled distractors
func (s *Session) animate(candidates []core.Entity, b layout.Bounds) int {
	n := len(candidates)
	if k := s.opts.Motion.MovingPerTrial; k > 0 && k < n {
		n = k
	}
	Shuffle(s.opts.Rng, candidates)

	speed := motion.SpeedFor(s.opts.Motion.BaseSpeed, s.level)
	moved := 0
	for _, e := range candidates[:n] {
		t, ok := s.world.Get(e)
		if !ok {
			continue
		}
		path, err := motion.NewPath(s.gen.LoopPath(t.Position, b, s.opts.Motion.PathPoints), speed)
		if err != nil {
			s.log.Warn("moving path rejected", zap.Error(err))
			continue
		}
		if s.world.AttachPath(e, path) {
			moved++
		}
	}
	return moved
}
