package motion

import (
	"errors"
	"math"
	"time"

	"github.com/lixenwraith/fitts/vmath"
)

// MinControlPoints is the smallest polygon a Catmull-Rom segment can be evaluated on
const MinControlPoints = 4

// LevelSpeedBase is the per-level speed growth factor
const LevelSpeedBase = 1.1

// ErrNoControlPoints is returned when a path is built from an empty point list
var ErrNoControlPoints = errors.New("motion: path has no control points")

// Path moves a point along a looping Catmull-Rom spline
// The normalized parameter t advances by speed/10 per second; on overflow it resets
// to 0 and the active segment advances circularly through len(points)-3 segments
type Path struct {
	points   []vmath.Vec2
	segments int
	segment  int
	t        float64
	speed    float64
}

// NewPath copies points, padding with the last point up to MinControlPoints
func NewPath(points []vmath.Vec2, speed float64) (*Path, error) {
	if len(points) == 0 {
		return nil, ErrNoControlPoints
	}

	pts := make([]vmath.Vec2, len(points), max(len(points), MinControlPoints))
	copy(pts, points)
	for len(pts) < MinControlPoints {
		pts = append(pts, pts[len(pts)-1])
	}

	return &Path{
		points:   pts,
		segments: len(pts) - 3,
		speed:    speed,
	}, nil
}

// SetSpeed replaces the path speed
func (p *Path) SetSpeed(speed float64) {
	p.speed = speed
}

// Segment returns the active segment index
func (p *Path) Segment() int {
	return p.segment
}

// Segments returns the number of segments in the loop
func (p *Path) Segments() int {
	return p.segments
}

// T returns the normalized parameter within the active segment
func (p *Path) T() float64 {
	return p.t
}

// Points returns the padded control points; callers must not modify them
func (p *Path) Points() []vmath.Vec2 {
	return p.points
}

// Advance steps the parameter by dt and returns the new position
func (p *Path) Advance(dt time.Duration) vmath.Vec2 {
	p.t += p.speed / 10 * dt.Seconds()
	if p.t > 1 {
		p.t = 0
		p.segment = (p.segment + 1) % p.segments
	}
	return p.Position()
}

// Position evaluates the path at the current segment and parameter
func (p *Path) Position() vmath.Vec2 {
	return p.At(p.segment, p.t)
}

// At evaluates segment s at parameter t; s wraps modulo the segment count
func (p *Path) At(s int, t float64) vmath.Vec2 {
	s %= p.segments
	if s < 0 {
		s += p.segments
	}
	return vmath.CatmullRom(p.points[s], p.points[s+1], p.points[s+2], p.points[s+3], t)
}

// SpeedMultiplier returns the difficulty scaling for a study level: 1.1^level
func SpeedMultiplier(level int) float64 {
	if level <= 0 {
		return 1
	}
	return math.Pow(LevelSpeedBase, float64(level))
}

// SpeedFor returns baseSpeed scaled for level
func SpeedFor(baseSpeed float64, level int) float64 {
	return baseSpeed * SpeedMultiplier(level)
}
