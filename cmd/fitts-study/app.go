package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/fitts/audio"
	"github.com/lixenwraith/fitts/config"
	"github.com/lixenwraith/fitts/core"
	"github.com/lixenwraith/fitts/cursor"
	"github.com/lixenwraith/fitts/engine"
	"github.com/lixenwraith/fitts/input"
	"github.com/lixenwraith/fitts/logging"
	"github.com/lixenwraith/fitts/record"
	"github.com/lixenwraith/fitts/render"
	"github.com/lixenwraith/fitts/study"
)

// maxFrameDelta caps the step after a stall so targets don't teleport
const maxFrameDelta = 100 * time.Millisecond

// errQuit ends the frame loop on a user quit
var errQuit = errors.New("quit")

// overrides are command-line values that win over the config file
type overrides struct {
	pid    string
	cursor string
	seed   uint64
	debug  bool
}

func (o overrides) apply(cfg *config.Config) {
	if o.pid != "" {
		cfg.ParticipantID = o.pid
	}
	if o.cursor != "" {
		cfg.CursorType = o.cursor
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	if o.debug {
		cfg.Logging.Level = "debug"
	}
}

// seedRng returns a PCG stream for seed, drawing a random seed when zero
func seedRng(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = rand.Uint64() | 1
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed
}

// app is the terminal front end around one session
type app struct {
	screen   tcell.Screen
	vp       *render.Viewport
	renderer *render.Renderer
	session  *study.Session
	machine  *input.Machine
	sink     *record.SummarySink
	log      *zap.Logger
	tickRate time.Duration
}

func run(o overrides, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	sessionID := uuid.NewString()
	baseLog, err := logging.New(cfg.Logging, nil)
	if err != nil {
		return err
	}
	log := baseLog.With(zap.String("session", sessionID))
	defer log.Sync()

	rng, seed := seedRng(cfg.Seed)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	core.SetResetHook(screen.Fini)
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseMotionEvents)
	screen.HideCursor()

	player, closeAudio := audio.Open(cfg.Audio, log)
	defer closeAudio()
	cues := audio.NewCues(player)

	w, h := screen.Size()
	vp := render.NewViewport(w, h, render.DefaultCellsPerUnit)

	opts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}
	opts.Rng = rng
	opts.Bounds = vp
	opts.Recorder = record.NewCSVWriter(cfg.Data.Dir, opts.Settings.Cursor)
	opts.Feedback = cursor.Fanout{cues, newTraceFeedback(log)}
	opts.Logger = log

	sess, err := study.NewSession(opts)
	if err != nil {
		return err
	}
	sess.Subscribe(cues)
	sink := &record.SummarySink{Dir: cfg.Data.Dir, SessionID: sessionID, Log: log}
	sess.Subscribe(sink)

	log.Info("session starting",
		zap.String("participant", cfg.ParticipantID),
		zap.Stringer("cursor", opts.Settings.Cursor),
		zap.Uint64("seed", seed),
		zap.String("data_dir", cfg.Data.Dir),
	)
	if err := sess.Begin(); err != nil {
		return err
	}

	a := &app{
		screen:   screen,
		vp:       vp,
		renderer: render.NewRenderer(screen, vp),
		session:  sess,
		machine:  input.NewMachine(),
		sink:     sink,
		log:      log,
		tickRate: cfg.Timing.TickRate,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = a.serve(ctx)
	log.Info("session ended", zap.Stringer("phase", sess.Phase()))
	return err
}

// serve runs the event reader and the frame loop until quit, signal or failure
func (a *app) serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	events := make(chan tcell.Event, 100)

	g.Go(func() error {
		return core.Recover(func() error {
			// PollEvent returns nil once the screen is finalized
			for {
				ev := a.screen.PollEvent()
				if ev == nil {
					return nil
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return nil
				}
			}
		})
	})

	g.Go(func() error {
		defer a.screen.Fini()
		return core.Recover(func() error {
			return a.loop(ctx, events)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// loop owns all study state; nothing else touches the session
func (a *app) loop(ctx context.Context, events <-chan tcell.Event) error {
	var frame input.Frame
	timer := engine.NewFrameTimer(engine.NewMonotonicTimeProvider(), maxFrameDelta)
	ticker := time.NewTicker(a.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			in := a.machine.Process(ev)
			switch in.Type {
			case input.IntentQuit:
				return errQuit
			case input.IntentRestart:
				if err := a.restart(); err != nil {
					return err
				}
			case input.IntentResize:
				a.vp.Resize(in.X, in.Y)
				a.screen.Sync()
			default:
				frame.Apply(in)
			}

		case <-ticker.C:
			dt := timer.Tick()
			x, y, click, _ := frame.Take()
			a.session.Update(dt, study.Input{
				Position: a.vp.ToWorld(x, y),
				Click:    click && a.vp.InPlayArea(x, y),
			})
			a.renderer.Draw(a.session)
		}
	}
}

// restart begins a fresh run from the ending screen
func (a *app) restart() error {
	if a.session.Phase() != study.PhaseCompleted {
		return nil
	}
	// Each run gets its own summary file
	a.sink.SessionID = uuid.NewString()
	a.log.Info("restart requested", zap.String("run", a.sink.SessionID))
	a.session.Reset()
	return a.session.Begin()
}
