package vmath

// CatmullRom evaluates the uniform Catmull-Rom segment between p1 and p2 at t ∈ [0,1]
// p0 and p3 shape the tangents; result equals p1 at t=0 and p2 at t=1
func CatmullRom(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	t2 := t * t
	t3 := t2 * t

	blend := func(a, b, c, d float64) float64 {
		return 0.5 * ((2 * b) +
			(-a+c)*t +
			(2*a-5*b+4*c-d)*t2 +
			(-a+3*b-3*c+d)*t3)
	}

	return Vec2{
		X: blend(p0.X, p1.X, p2.X, p3.X),
		Y: blend(p0.Y, p1.Y, p2.Y, p3.Y),
	}
}

// CatmullRomTangent returns the derivative of the segment with respect to t
func CatmullRomTangent(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	t2 := t * t

	deriv := func(a, b, c, d float64) float64 {
		return 0.5 * ((-a + c) +
			2*(2*a-5*b+4*c-d)*t +
			3*(-a+3*b-3*c+d)*t2)
	}

	return Vec2{
		X: deriv(p0.X, p1.X, p2.X, p3.X),
		Y: deriv(p0.Y, p1.Y, p2.Y, p3.Y),
	}
}
