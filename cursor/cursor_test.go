package cursor

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fitts/core"
	"github.com/lixenwraith/fitts/target"
	"github.com/lixenwraith/fitts/vmath"
)

// recorder logs feedback in arrival order
type recorder struct {
	events []string
	clicks []Click
}

func (r *recorder) HoverEnter(e core.Entity) { r.events = append(r.events, fmt.Sprintf("enter %v", e)) }
func (r *recorder) HoverExit(e core.Entity)  { r.events = append(r.events, fmt.Sprintf("exit %v", e)) }
func (r *recorder) Captured(e core.Entity)   { r.events = append(r.events, fmt.Sprintf("capture %v", e)) }
func (r *recorder) Released(e core.Entity)   { r.events = append(r.events, fmt.Sprintf("release %v", e)) }
func (r *recorder) Clicked(c Click)          { r.clicks = append(r.clicks, c) }

func (r *recorder) only(prefix string) []string {
	var out []string
	for _, ev := range r.events {
		if len(ev) >= len(prefix) && ev[:len(prefix)] == prefix {
			out = append(out, ev)
		}
	}
	return out
}

// worldSelector selects directly on the world and counts calls
type worldSelector struct {
	world *target.World
	calls []core.Entity
}

func (s *worldSelector) Select(e core.Entity) (bool, bool) {
	s.calls = append(s.calls, e)
	return s.world.Select(e)
}

func newBubbleFixture(t *testing.T) (*Bubble, *target.World, *worldSelector, *recorder) {
	t.Helper()
	w := target.NewWorld()
	sel := &worldSelector{world: w}
	rec := &recorder{}
	b, err := NewBubble(DefaultBubbleConfig(), w, sel, rec)
	require.NoError(t, err)
	b.Show()
	return b, w, sel, rec
}

func TestBubbleRadiusClampProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("activation radius == clamp(d, min, max) while in range", prop.ForAll(
		func(d, angle float64) bool {
			w := target.NewWorld()
			b, _ := NewBubble(DefaultBubbleConfig(), w, &worldSelector{world: w}, nil)
			b.Show()
			w.Spawn(target.New(vmath.V2(0, 0), 0.5, false))

			b.Update(vmath.V2Polar(angle, d), false)
			r, ok := b.ActivationRadius()

			if d > DefaultMaxRadius+1e-9 {
				return !ok
			}
			if d > DefaultMaxRadius-1e-9 {
				return true // boundary: float rounding decides membership
			}
			want := vmath.Clamp(d, DefaultMinRadius, DefaultMaxRadius)
			return ok && math.Abs(r-want) < 1e-9 && r >= DefaultMinRadius && r <= DefaultMaxRadius
		},
		gen.Float64Range(0, 5),
		gen.Float64Range(0, 2*math.Pi),
	))

	properties.TestingRun(t)
}

func TestBubbleRadiusTracksDistance(t *testing.T) {
	b, w, _, _ := newBubbleFixture(t)
	w.Spawn(target.New(vmath.V2(0, 0), 0.5, false))

	// Approach from outside: radius shrinks monotonically, then pins at MinRadius
	prev := math.Inf(1)
	for x := 2.7; x >= 0; x -= 0.1 {
		b.Update(vmath.V2(x, 0), false)
		r, ok := b.ActivationRadius()
		require.True(t, ok)
		assert.LessOrEqual(t, r, prev)
		prev = r
	}
	assert.Equal(t, DefaultMinRadius, prev)

	// Retreat: radius grows again
	b.Update(vmath.V2(2.0, 0), false)
	r, _ := b.ActivationRadius()
	assert.InDelta(t, 2.0, r, 1e-9)
}

func TestBubbleHoverExitPrecedesEnter(t *testing.T) {
	b, w, _, rec := newBubbleFixture(t)
	a := w.Spawn(target.New(vmath.V2(0, 0), 0.5, false))
	c := w.Spawn(target.New(vmath.V2(3, 0), 0.5, false))

	b.Update(vmath.V2(0.2, 0), false)
	rec.events = nil

	b.Update(vmath.V2(2.8, 0), false)

	hover := append(rec.only("exit"), rec.only("enter")...)
	require.Len(t, hover, 2)

	exitIdx, enterIdx := -1, -1
	for i, ev := range rec.events {
		switch ev {
		case fmt.Sprintf("exit %v", a):
			exitIdx = i
		case fmt.Sprintf("enter %v", c):
			enterIdx = i
		}
	}
	require.NotEqual(t, -1, exitIdx)
	require.NotEqual(t, -1, enterIdx)
	assert.Less(t, exitIdx, enterIdx, "exit(A) must precede enter(B): %v", rec.events)

	ta, _ := w.Get(a)
	tc, _ := w.Get(c)
	assert.Equal(t, target.Idle, ta.State())
	assert.Equal(t, target.Hovered, tc.State())
}

func TestBubbleNeverHoversGoal(t *testing.T) {
	b, w, _, rec := newBubbleFixture(t)
	g := w.Spawn(target.New(vmath.V2(0, 0), 0.5, true))

	b.Update(vmath.V2(0.5, 0), false)
	assert.Empty(t, rec.only("enter"))

	tg, _ := w.Get(g)
	assert.Equal(t, target.Idle, tg.State())

	nearest, _, ok := b.Nearest()
	assert.True(t, ok)
	assert.Equal(t, g, nearest)
}

func TestBubbleLeavingRangeExitsAndClears(t *testing.T) {
	b, w, _, rec := newBubbleFixture(t)
	a := w.Spawn(target.New(vmath.V2(0, 0), 0.5, false))

	b.Update(vmath.V2(1.5, 0), false)
	_, ok := b.ActivationRadius()
	require.True(t, ok)

	b.Update(vmath.V2(10, 0), false)
	_, ok = b.ActivationRadius()
	assert.False(t, ok, "radius undefined with no candidate")

	_, _, hasNearest := b.Nearest()
	assert.False(t, hasNearest)
	assert.Contains(t, rec.events, fmt.Sprintf("exit %v", a))
}

func TestBubbleTieBreakSpawnOrder(t *testing.T) {
	b, w, _, _ := newBubbleFixture(t)
	first := w.Spawn(target.New(vmath.V2(-1, 0), 0.5, false))
	w.Spawn(target.New(vmath.V2(1, 0), 0.5, false))

	b.Update(vmath.V2(0, 0), false)

	nearest, d, ok := b.Nearest()
	require.True(t, ok)
	assert.Equal(t, first, nearest)
	assert.InDelta(t, 1.0, d, 1e-9)
}

func TestBubbleClickRequiresCapture(t *testing.T) {
	b, w, sel, rec := newBubbleFixture(t)
	g := w.Spawn(target.New(vmath.V2(0, 0), 0.5, true))

	// In range but outside MinRadius: no-op, not a miss
	b.Update(vmath.V2(2, 0), true)
	assert.Empty(t, sel.calls)
	require.Len(t, rec.clicks, 1)
	assert.False(t, rec.clicks[0].Hit())

	// Inside MinRadius: selects the goal
	b.Update(vmath.V2(0.9, 0), true)
	require.Len(t, sel.calls, 1)
	assert.Equal(t, g, sel.calls[0])
	last := rec.clicks[len(rec.clicks)-1]
	assert.True(t, last.Hit())
	assert.True(t, last.Goal)
	assert.True(t, last.Selected)

	// Selecting again is idempotent
	b.Update(vmath.V2(0.9, 0), true)
	last = rec.clicks[len(rec.clicks)-1]
	assert.False(t, last.Selected)
}

func TestBubbleCaptureFeedback(t *testing.T) {
	b, w, _, rec := newBubbleFixture(t)
	a := w.Spawn(target.New(vmath.V2(0, 0), 0.5, false))

	b.Update(vmath.V2(2, 0), false)
	assert.Empty(t, rec.only("capture"))

	b.Update(vmath.V2(0.5, 0), false)
	assert.Equal(t, []string{fmt.Sprintf("capture %v", a)}, rec.only("capture"))
	ta, _ := w.Get(a)
	assert.True(t, ta.Captured())

	captured, ok := b.Captured()
	assert.True(t, ok)
	assert.Equal(t, a, captured)

	b.Update(vmath.V2(2, 0), false)
	assert.Equal(t, []string{fmt.Sprintf("release %v", a)}, rec.only("release"))
	assert.False(t, ta.Captured())
}

func TestBubbleStalePreviousIsSafe(t *testing.T) {
	b, w, _, rec := newBubbleFixture(t)
	a := w.Spawn(target.New(vmath.V2(0, 0), 0.5, false))
	c := w.Spawn(target.New(vmath.V2(2, 0), 0.5, false))

	b.Update(vmath.V2(0.1, 0), false)
	w.Remove(a)
	rec.events = nil

	assert.NotPanics(t, func() {
		b.Update(vmath.V2(1.9, 0), false)
	})
	assert.NotContains(t, rec.events, fmt.Sprintf("exit %v", a))
	assert.Contains(t, rec.events, fmt.Sprintf("enter %v", c))
}

func TestBubbleHideExitsHover(t *testing.T) {
	b, w, _, rec := newBubbleFixture(t)
	a := w.Spawn(target.New(vmath.V2(0, 0), 0.5, false))

	b.Update(vmath.V2(0.5, 0), false)
	b.Hide()

	assert.Contains(t, rec.events, fmt.Sprintf("exit %v", a))
	assert.False(t, b.Visible())

	// Hidden cursors ignore frames
	b.Update(vmath.V2(0, 0), true)
	assert.Empty(t, rec.clicks)
}

func TestNewBubbleRejectsBadRadii(t *testing.T) {
	w := target.NewWorld()
	_, err := NewBubble(BubbleConfig{MinRadius: 3, MaxRadius: 1}, w, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = NewBubble(BubbleConfig{MinRadius: 0, MaxRadius: 1}, w, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRadius)
}

func TestPointCursorHitTests(t *testing.T) {
	w := target.NewWorld()
	sel := &worldSelector{world: w}
	rec := &recorder{}
	p := NewPoint(w, sel, rec)
	p.Show()

	d := w.Spawn(target.New(vmath.V2(3, 0), 0.5, false))

	// Empty space: click is reported, nothing selected
	p.Update(vmath.V2(0, 0), true)
	require.Len(t, rec.clicks, 1)
	assert.False(t, rec.clicks[0].Hit())
	assert.Empty(t, sel.calls)

	// Direct hit on a distractor
	p.Update(vmath.V2(3.2, 0.1), true)
	require.Len(t, sel.calls, 1)
	assert.Equal(t, d, sel.calls[0])
	assert.False(t, rec.clicks[1].Goal)
	assert.True(t, rec.clicks[1].Selected)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"PointCursor", PointCursor, false},
		{"bubblecursor", BubbleCursor, false},
		{" bubble ", BubbleCursor, false},
		{"laser", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseType(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) Type {
	t.Helper()
	ty, err := ParseType(s)
	require.NoError(t, err)
	return ty
}

func TestFanoutForwardsToEverySink(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := Fanout{a, NopFeedback{}, b}

	e := core.NewEntity(4, 2)
	f.HoverEnter(e)
	f.Captured(e)
	f.Released(e)
	f.HoverExit(e)
	f.Clicked(Click{Cursor: PointCursor, Entity: e})

	for _, r := range []*recorder{a, b} {
		assert.Equal(t, []string{
			fmt.Sprintf("enter %v", e),
			fmt.Sprintf("capture %v", e),
			fmt.Sprintf("release %v", e),
			fmt.Sprintf("exit %v", e),
		}, r.events)
		require.Len(t, r.clicks, 1)
		assert.Equal(t, e, r.clicks[0].Entity)
	}
}
