package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	noise    *rand.Rand
}

// NewOscillator creates a finite oscillator
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		noise:    rand.New(rand.NewPCG(uint64(freq*1000), uint64(duration))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = o.noise.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack/release shaping
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope wraps s with an attack/sustain/release gain curve over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := max(total-att-rel, 0)

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s by a linear gain
// math.Log2(0) is -Inf, so zero gain maps to a silent volume
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// tone is one shaped oscillator note
type tone struct {
	freq     float64
	wave     WaveType
	duration time.Duration
	attack   time.Duration
	release  time.Duration
	gain     float64
}

func (t tone) streamer(rate beep.SampleRate) beep.Streamer {
	osc := NewOscillator(t.freq, t.duration, t.wave, rate)
	return newVolume(NewEnvelope(osc, t.duration, t.attack, t.release, rate), t.gain)
}

// Cue voicings
var (
	// Two rising square notes (B5, E6)
	correctNotes = []tone{
		{freq: 987.77, wave: WaveSquare, duration: 80 * time.Millisecond, attack: 5 * time.Millisecond, release: 30 * time.Millisecond, gain: 0.5},
		{freq: 1318.51, wave: WaveSquare, duration: 160 * time.Millisecond, attack: 5 * time.Millisecond, release: 100 * time.Millisecond, gain: 0.5},
	}
	missNote    = tone{freq: 100, wave: WaveSaw, duration: 150 * time.Millisecond, attack: 10 * time.Millisecond, release: 60 * time.Millisecond, gain: 0.8}
	emptyNote   = tone{wave: WaveNoise, duration: 40 * time.Millisecond, attack: 2 * time.Millisecond, release: 30 * time.Millisecond, gain: 0.3}
	captureNote = tone{freq: 660, wave: WaveSine, duration: 45 * time.Millisecond, attack: 5 * time.Millisecond, release: 25 * time.Millisecond, gain: 0.35}
	// A5 fundamental with an octave overtone
	completeNotes = []tone{
		{freq: 880, wave: WaveSine, duration: 600 * time.Millisecond, attack: 5 * time.Millisecond, release: 500 * time.Millisecond, gain: 0.7},
		{freq: 1760, wave: WaveSine, duration: 600 * time.Millisecond, attack: 5 * time.Millisecond, release: 250 * time.Millisecond, gain: 0.3},
	}
)

// CueStreamer builds a finite streamer for cue at the configured volume
// Returns nil for an unknown cue
func CueStreamer(cue Cue, cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	var s beep.Streamer
	switch cue {
	case CueCorrect:
		s = beep.Seq(correctNotes[0].streamer(rate), correctNotes[1].streamer(rate))
	case CueMiss:
		s = missNote.streamer(rate)
	case CueEmpty:
		s = emptyNote.streamer(rate)
	case CueCapture:
		s = captureNote.streamer(rate)
	case CueComplete:
		s = beep.Take(rate.N(completeNotes[0].duration), beep.Mix(completeNotes[0].streamer(rate), completeNotes[1].streamer(rate)))
	default:
		return nil
	}
	return newVolume(s, cfg.volume(cue))
}
