package layout

import (
	"github.com/lixenwraith/fitts/vmath"
)

// Bounds is an axis-aligned world-space rectangle, Min is bottom-left
type Bounds struct {
	Min, Max vmath.Vec2
}

// BoundsProvider supplies the current viewport in world units
// Queried at every trial setup so terminal resizes take effect between trials
type BoundsProvider interface {
	Bounds() Bounds
}

// StaticBounds is a fixed BoundsProvider
type StaticBounds Bounds

// Bounds returns the fixed rectangle
func (s StaticBounds) Bounds() Bounds {
	return Bounds(s)
}

// Centered returns bounds of the given size centered on the origin
func Centered(width, height float64) Bounds {
	return Bounds{
		Min: vmath.V2(-width/2, -height/2),
		Max: vmath.V2(width/2, height/2),
	}
}

func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Center returns the midpoint
func (b Bounds) Center() vmath.Vec2 {
	return vmath.V2Lerp(b.Min, b.Max, 0.5)
}

// Contains reports whether p lies inside, edges inclusive
func (b Bounds) Contains(p vmath.Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Inset shrinks each side by m; returns b unchanged if that would invert it
func (b Bounds) Inset(m float64) Bounds {
	if b.Width() <= 2*m || b.Height() <= 2*m {
		return b
	}
	return Bounds{
		Min: vmath.V2(b.Min.X+m, b.Min.Y+m),
		Max: vmath.V2(b.Max.X-m, b.Max.Y-m),
	}
}
