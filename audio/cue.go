package audio

import (
	"github.com/lixenwraith/fitts/core"
	"github.com/lixenwraith/fitts/cursor"
	"github.com/lixenwraith/fitts/study"
)

// Cue is a feedback sound
type Cue int

const (
	CueCorrect  Cue = iota // Goal selected
	CueMiss                // Distractor selected
	CueEmpty               // Point click on empty space
	CueCapture             // Bubble entered min radius of a target
	CueComplete            // Study finished
	cueCount
)

func (c Cue) String() string {
	switch c {
	case CueCorrect:
		return "correct"
	case CueMiss:
		return "miss"
	case CueEmpty:
		return "empty"
	case CueCapture:
		return "capture"
	case CueComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Player plays cues without blocking the frame loop
type Player interface {
	Play(c Cue)
}

// Silent discards every cue; used when audio is disabled or the device is unavailable
type Silent struct{}

func (Silent) Play(Cue) {}

// Cues maps cursor and study events onto sounds
// Implements cursor.Feedback and study.Listener
type Cues struct {
	study.NopListener
	player Player
}

// NewCues creates the event-to-sound adapter
func NewCues(p Player) *Cues {
	if p == nil {
		p = Silent{}
	}
	return &Cues{player: p}
}

func (c *Cues) HoverEnter(core.Entity) {}
func (c *Cues) HoverExit(core.Entity)  {}
func (c *Cues) Released(core.Entity)   {}

func (c *Cues) Captured(core.Entity) {
	c.player.Play(CueCapture)
}

// Clicked plays the outcome; repeat clicks on an already-selected target stay silent
func (c *Cues) Clicked(click cursor.Click) {
	switch {
	case !click.Hit():
		// Bubble clicks outside the capture radius are not feedback-worthy
		if click.Cursor == cursor.PointCursor {
			c.player.Play(CueEmpty)
		}
	case !click.Selected:
	case click.Goal:
		c.player.Play(CueCorrect)
	default:
		c.player.Play(CueMiss)
	}
}

// StudyCompleted plays the completion chime
func (c *Cues) StudyCompleted(study.Summary) {
	c.player.Play(CueComplete)
}
