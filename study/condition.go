package study

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/lixenwraith/fitts/cursor"
)

// Condition is one cell of the factorial design
type Condition struct {
	Amplitude   float64
	TargetSize  float64
	EWRatio     float64
	Distractors int
	Moving      bool
}

// Block is the ordered trial sequence for one study run
type Block []Condition

// Settings is the inbound study configuration
type Settings struct {
	ParticipantID string
	Cursor        cursor.Type

	TargetSizes []float64
	Amplitudes  []float64
	EWRatios    []float64

	Distractors     int // Baseline distractor count per trial
	StationaryCount int // Leading factorial combinations kept stationary; the rest move
	TotalTrials     int
	RepeatBlock     bool // Cycle the shuffled combinations to reach TotalTrials instead of truncating
}

// Validate reports every configuration problem joined into one error
func (s Settings) Validate() error {
	var errs []error

	pid := strings.TrimSpace(s.ParticipantID)
	if pid == "" {
		errs = append(errs, configErr("participant_id", "missing"))
	} else if n, err := strconv.Atoi(pid); err != nil || n <= 0 {
		errs = append(errs, configErr("participant_id", "%q is not a positive integer", s.ParticipantID))
	}

	if s.Cursor != cursor.PointCursor && s.Cursor != cursor.BubbleCursor {
		errs = append(errs, configErr("cursor_type", "unknown cursor %v", s.Cursor))
	}

	checkList := func(field string, vals []float64) {
		if len(vals) == 0 {
			errs = append(errs, configErr(field, "list is empty"))
			return
		}
		for _, v := range vals {
			if v <= 0 {
				errs = append(errs, configErr(field, "value %v must be positive", v))
				return
			}
		}
	}
	checkList("target_sizes", s.TargetSizes)
	checkList("amplitudes", s.Amplitudes)
	checkList("ew_ratios", s.EWRatios)

	if s.Distractors < 0 {
		errs = append(errs, configErr("distractors", "must not be negative, got %d", s.Distractors))
	}
	if s.StationaryCount < 0 {
		errs = append(errs, configErr("stationary_count", "must not be negative, got %d", s.StationaryCount))
	}
	if s.TotalTrials <= 0 {
		errs = append(errs, configErr("total_trials", "must be positive, got %d", s.TotalTrials))
	}

	return errors.Join(errs...)
}

// Combinations returns the full factorial product EW × size × amplitude in
// configuration order; the first StationaryCount are stationary, the rest moving
func (s Settings) Combinations() []Condition {
	out := make([]Condition, 0, len(s.EWRatios)*len(s.TargetSizes)*len(s.Amplitudes))
	for _, ew := range s.EWRatios {
		for _, size := range s.TargetSizes {
			for _, amp := range s.Amplitudes {
				out = append(out, Condition{
					Amplitude:   amp,
					TargetSize:  size,
					EWRatio:     ew,
					Distractors: s.Distractors,
					Moving:      len(out) >= s.StationaryCount,
				})
			}
		}
	}
	return out
}

// BuildBlock assembles the randomized trial block
// Stationary and moving subsets are shuffled independently and concatenated
// stationary-first, then truncated to TotalTrials (or cycled when RepeatBlock)
func BuildBlock(s Settings, rng *rand.Rand) (Block, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	combos := s.Combinations()
	k := min(s.StationaryCount, len(combos))
	stationary, moving := combos[:k], combos[k:]
	Shuffle(rng, stationary)
	Shuffle(rng, moving)

	// combos now holds stationary-then-moving in shuffled order
	n := min(s.TotalTrials, len(combos))
	if s.RepeatBlock {
		n = s.TotalTrials
	}

	block := make(Block, 0, n)
	for len(block) < n {
		for _, c := range combos {
			if len(block) == n {
				break
			}
			block = append(block, c)
		}
	}
	return block, nil
}

// Shuffle permutes s in place with Fisher-Yates using rng
func Shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
