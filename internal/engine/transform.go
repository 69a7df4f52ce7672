package engine

import (
	"math"

	"honnef.co/go/curve"

	"github.com/inamate/arcsegment/internal/document"
)

// FromTransform composes the document transform properties into an affine
// matrix: Translate(x, y) * Rotate(r) * Scale(sx, sy) * Translate(-ax, -ay).
// The anchor point (ax, ay) is the rotation/scale center; r is in degrees.
func FromTransform(t document.Transform) curve.Affine {
	return curve.Translate(curve.Vec(t.X, t.Y)).
		Mul(curve.Rotate(t.R * math.Pi / 180)).
		Mul(curve.Scale(t.SX, t.SY)).
		Mul(curve.Translate(curve.Vec(-t.AX, -t.AY)))
}

// AffineSlice returns the [a, b, c, d, e, f] form used by Canvas2D setTransform.
func AffineSlice(aff curve.Affine) []float64 {
	c := aff.Coefficients()
	return c[:]
}

// IsIdentity checks if aff is the identity within epsilon.
func IsIdentity(aff curve.Affine) bool {
	const eps = 1e-10
	id := curve.Identity.Coefficients()
	for i, v := range aff.Coefficients() {
		if math.Abs(v-id[i]) >= eps {
			return false
		}
	}
	return true
}
