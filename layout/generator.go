package layout

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/lixenwraith/fitts/vmath"
)

// Default placement tuning
const (
	DefaultMinSpacing     = 1.0
	DefaultMaxAttempts    = 100
	DefaultClusterSpacing = 1.0
)

// Config tunes the rejection sampler
type Config struct {
	MinSpacing     float64 // Minimum pairwise distance between sampled positions
	MaxAttempts    int     // Retry budget per position
	ClusterSpacing float64 // Base axis offset for clustered distractors, scaled by EW/W
	KeepInBounds   bool    // Reject candidates pushed outside the viewport by the polar offset
}

// DefaultConfig returns the tuning used by the study
func DefaultConfig() Config {
	return Config{
		MinSpacing:     DefaultMinSpacing,
		MaxAttempts:    DefaultMaxAttempts,
		ClusterSpacing: DefaultClusterSpacing,
		KeepInBounds:   true,
	}
}

// Generator places targets for a trial
// All randomness comes from the injected rng so layouts replay from a seed
type Generator struct {
	cfg Config
	rng *rand.Rand
	log *zap.Logger
}

// NewGenerator creates a generator; zero config fields fall back to defaults
func NewGenerator(cfg Config, rng *rand.Rand, log *zap.Logger) *Generator {
	if cfg.MinSpacing <= 0 {
		cfg.MinSpacing = DefaultMinSpacing
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.ClusterSpacing <= 0 {
		cfg.ClusterSpacing = DefaultClusterSpacing
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{cfg: cfg, rng: rng, log: log}
}

// Config returns the effective tuning
func (g *Generator) Config() Config {
	return g.cfg
}

// Placement is the result of one rejection-sampling pass
type Placement struct {
	Positions []vmath.Vec2
	Skipped   []int // Requested indices that exhausted their retry budget
}

// GeneratePositions rejection-samples up to count positions pairwise at least MinSpacing apart
// Each candidate is a uniform point inside the inset viewport plus a polar offset with
// magnitude in [amplitude/2, amplitude) and uniform angle
// Exhausting the budget skips the position and logs a warning; the caller gets fewer positions
func (g *Generator) GeneratePositions(amplitude float64, count int, b Bounds) Placement {
	p := Placement{Positions: make([]vmath.Vec2, 0, count)}
	sampleArea := b.Inset(g.cfg.MinSpacing)

	for i := 0; i < count; i++ {
		placed := false
		for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
			candidate := vmath.V2Add(g.uniformIn(sampleArea), g.polarOffset(amplitude))

			if g.cfg.KeepInBounds && !b.Contains(candidate) {
				continue
			}
			if g.tooClose(candidate, p.Positions) {
				continue
			}

			p.Positions = append(p.Positions, candidate)
			placed = true
			break
		}

		if !placed {
			p.Skipped = append(p.Skipped, i)
			g.log.Warn("placement failed",
				zap.Int("index", i),
				zap.Int("attempts", g.cfg.MaxAttempts),
				zap.Float64("amplitude", amplitude),
				zap.Float64("min_spacing", g.cfg.MinSpacing),
			)
		}
	}
	return p
}

// Request describes the targets one trial needs
type Request struct {
	Amplitude   float64
	EWRatio     float64
	Distractors int  // Baseline distractors sampled with the goal
	Clustered   bool // Add four axis-aligned distractors around the goal
}

// Plan is a trial's target layout
type Plan struct {
	Goal        vmath.Vec2
	Distractors []vmath.Vec2 // Rejection-sampled distractors
	Cluster     []vmath.Vec2 // Fixed offsets around the goal, empty unless clustered
	Skipped     int
}

// Plan samples Distractors+1 positions and hosts the goal at a uniformly random one
// If sampling yields nothing the goal falls back to the viewport centre so a trial
// always has exactly one goal
func (g *Generator) Plan(req Request, b Bounds) Plan {
	placement := g.GeneratePositions(req.Amplitude, req.Distractors+1, b)

	plan := Plan{Skipped: len(placement.Skipped)}
	if len(placement.Positions) == 0 {
		plan.Goal = b.Center()
		g.log.Warn("no positions sampled, goal placed at viewport centre",
			zap.Int("requested", req.Distractors+1))
	} else {
		goalIdx := g.rng.IntN(len(placement.Positions))
		plan.Goal = placement.Positions[goalIdx]
		plan.Distractors = make([]vmath.Vec2, 0, len(placement.Positions)-1)
		for i, pos := range placement.Positions {
			if i != goalIdx {
				plan.Distractors = append(plan.Distractors, pos)
			}
		}
	}

	if req.Clustered {
		plan.Cluster = ClusterAround(plan.Goal, g.cfg.ClusterSpacing*req.EWRatio)
	}
	return plan
}

// ClusterAround returns four points at ±offset on each axis around center
// Order: left, right, up, down
func ClusterAround(center vmath.Vec2, offset float64) []vmath.Vec2 {
	return []vmath.Vec2{
		vmath.V2Add(center, vmath.V2(-offset, 0)),
		vmath.V2Add(center, vmath.V2(offset, 0)),
		vmath.V2Add(center, vmath.V2(0, offset)),
		vmath.V2Add(center, vmath.V2(0, -offset)),
	}
}

// LoopPath builds a closed control polygon for a moving target from n random points
// inside b with start spliced in at index 1, the first point a segment-0 spline passes
// through. The first three points are appended again so Catmull-Rom segments cycle
// without a seam
func (g *Generator) LoopPath(start vmath.Vec2, b Bounds, n int) []vmath.Vec2 {
	if n < 1 {
		n = 1
	}
	pts := make([]vmath.Vec2, 0, n+4)
	pts = append(pts, g.uniformIn(b), start)
	for i := 1; i < n; i++ {
		pts = append(pts, g.uniformIn(b))
	}
	for i := 0; i < 3; i++ {
		pts = append(pts, pts[i])
	}
	return pts
}

func (g *Generator) uniformIn(b Bounds) vmath.Vec2 {
	return vmath.V2(
		b.Min.X+g.rng.Float64()*b.Width(),
		b.Min.Y+g.rng.Float64()*b.Height(),
	)
}

func (g *Generator) polarOffset(amplitude float64) vmath.Vec2 {
	angle := g.rng.Float64() * 2 * math.Pi
	mag := amplitude/2 + g.rng.Float64()*(amplitude/2)
	return vmath.V2Polar(angle, mag)
}

func (g *Generator) tooClose(p vmath.Vec2, accepted []vmath.Vec2) bool {
	minSq := g.cfg.MinSpacing * g.cfg.MinSpacing
	for _, q := range accepted {
		if vmath.V2DistSq(p, q) < minSq {
			return true
		}
	}
	return false
}
