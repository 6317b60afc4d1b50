package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// Config controls cue playback
type Config struct {
	Enabled      bool    `mapstructure:"enabled"`
	MasterVolume float64 `mapstructure:"master_volume"` // 0.0-1.0
	SampleRate   int     `mapstructure:"sample_rate"`
}

// DefaultConfig returns enabled audio at 48kHz
func DefaultConfig() Config {
	return Config{Enabled: true, MasterVolume: 0.6, SampleRate: 48000}
}

// Per-cue gain before the master volume
var cueVolumes = [cueCount]float64{
	CueCorrect:  0.8,
	CueMiss:     0.7,
	CueEmpty:    0.5,
	CueCapture:  0.4,
	CueComplete: 1.0,
}

func (c Config) volume(cue Cue) float64 {
	if cue < 0 || cue >= cueCount {
		return 0
	}
	return min(max(c.MasterVolume, 0), 1) * cueVolumes[cue]
}

// Speaker plays cues through the system audio device
type Speaker struct {
	mu          sync.Mutex
	cfg         Config
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeaker creates an uninitialized speaker player
func NewSpeaker(cfg Config) *Speaker {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	return &Speaker{cfg: cfg, mixer: &beep.Mixer{}}
}

// Initialize opens the audio device and starts the mixer
func (s *Speaker) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	rate := beep.SampleRate(s.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Play queues a cue on the mixer
func (s *Speaker) Play(c Cue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	st := CueStreamer(c, s.cfg)
	if st == nil {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close silences pending cues
// beep has no speaker teardown, so the device stays open until exit
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// Open returns a working player for cfg
// Disabled audio or a failed device open falls back to Silent
func Open(cfg Config, log *zap.Logger) (Player, func()) {
	if !cfg.Enabled {
		return Silent{}, func() {}
	}
	sp := NewSpeaker(cfg)
	if err := sp.Initialize(); err != nil {
		if log != nil {
			log.Warn("audio unavailable, continuing silently", zap.Error(err))
		}
		return Silent{}, func() {}
	}
	return sp, sp.Close
}
