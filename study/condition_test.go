package study

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fitts/cursor"
)

func testRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func factorialSettings() Settings {
	return Settings{
		ParticipantID:   "12",
		Cursor:          cursor.BubbleCursor,
		TargetSizes:     []float64{1, 2},
		Amplitudes:      []float64{4, 8, 12},
		EWRatios:        []float64{0.5, 1.5},
		Distractors:     2,
		StationaryCount: 6,
		TotalTrials:     12,
	}
}

func TestBuildBlockLength(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		repeat bool
		want   int
	}{
		{"truncated", 5, false, 5},
		{"exact", 12, false, 12},
		{"capped at combinations", 30, false, 12},
		{"repeated", 30, true, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := factorialSettings()
			s.TotalTrials = tt.total
			s.RepeatBlock = tt.repeat

			block, err := BuildBlock(s, testRng(1))
			require.NoError(t, err)
			assert.Len(t, block, tt.want)
		})
	}
}

func TestBuildBlockStationaryFirst(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		block, err := BuildBlock(factorialSettings(), testRng(seed))
		require.NoError(t, err)
		require.Len(t, block, 12)

		for i, c := range block {
			assert.Equal(t, i >= 6, c.Moving, "seed %d trial %d", seed, i)
		}
	}
}

func TestBuildBlockCoversEveryCombination(t *testing.T) {
	s := factorialSettings()
	block, err := BuildBlock(s, testRng(3))
	require.NoError(t, err)

	seen := make(map[Condition]int)
	for _, c := range block {
		seen[c]++
	}
	for _, c := range s.Combinations() {
		assert.Equal(t, 1, seen[c], "condition %+v", c)
	}
}

func TestBuildBlockStationaryCountClamped(t *testing.T) {
	s := factorialSettings()
	s.StationaryCount = 100
	block, err := BuildBlock(s, testRng(4))
	require.NoError(t, err)
	for _, c := range block {
		assert.False(t, c.Moving)
	}
}

func TestBuildBlockRepeatCycles(t *testing.T) {
	s := factorialSettings()
	s.TotalTrials = 25
	s.RepeatBlock = true
	block, err := BuildBlock(s, testRng(5))
	require.NoError(t, err)

	assert.Equal(t, block[:12], block[12:24])
	assert.Equal(t, block[0], block[24])
}

func TestBuildBlockDeterministic(t *testing.T) {
	a, err := BuildBlock(factorialSettings(), testRng(9))
	require.NoError(t, err)
	b, err := BuildBlock(factorialSettings(), testRng(9))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"missing participant", func(s *Settings) { s.ParticipantID = " " }, "participant_id"},
		{"non-numeric participant", func(s *Settings) { s.ParticipantID = "p7" }, "participant_id"},
		{"zero participant", func(s *Settings) { s.ParticipantID = "0" }, "participant_id"},
		{"empty sizes", func(s *Settings) { s.TargetSizes = nil }, "target_sizes"},
		{"negative amplitude", func(s *Settings) { s.Amplitudes = []float64{4, -1} }, "amplitudes"},
		{"empty ratios", func(s *Settings) { s.EWRatios = []float64{} }, "ew_ratios"},
		{"zero trials", func(s *Settings) { s.TotalTrials = 0 }, "total_trials"},
		{"negative distractors", func(s *Settings) { s.Distractors = -2 }, "distractors"},
		{"unknown cursor", func(s *Settings) { s.Cursor = cursor.Type(9) }, "cursor_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := factorialSettings()
			tt.mutate(&s)

			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)

			_, err = BuildBlock(s, testRng(1))
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}

	assert.NoError(t, factorialSettings().Validate())
}

func TestShufflePermutationProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("shuffle preserves the multiset", prop.ForAll(
		func(seed uint64, xs []int) bool {
			shuffled := slices.Clone(xs)
			Shuffle(testRng(seed), shuffled)

			a, b := slices.Clone(xs), slices.Clone(shuffled)
			slices.Sort(a)
			slices.Sort(b)
			return slices.Equal(a, b)
		},
		gen.UInt64(),
		gen.SliceOf(gen.IntRange(-50, 50)),
	))

	properties.TestingRun(t)
}

func TestShuffleUniform(t *testing.T) {
	const rounds = 60000
	rng := testRng(2024)
	counts := make(map[[3]int]int)

	for i := 0; i < rounds; i++ {
		p := []int{0, 1, 2}
		Shuffle(rng, p)
		counts[[3]int{p[0], p[1], p[2]}]++
	}
	require.Len(t, counts, 6)

	expected := float64(rounds) / 6
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	// 5 degrees of freedom, p = 0.001
	assert.Less(t, chi2, 20.52)
}
