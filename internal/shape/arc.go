package shape

import (
	"fmt"
	"math"

	"github.com/inamate/arcsegment/internal/path"
)

const (
	halfPi = math.Pi / 2
	twoPi  = 2 * math.Pi
)

// Flags records which inputs of a shape changed since the last rebuild.
type Flags uint8

const (
	FlagVertices Flags = 1 << iota
	FlagStartAngle
	FlagEndAngle
	FlagInnerRadius
	FlagOuterRadius

	arcFlags = FlagVertices | FlagStartAngle | FlagEndAngle | FlagInnerRadius | FlagOuterRadius
)

// ArcParameters describes an annular arc. Angles are in radians, measured
// from the positive x axis toward positive y.
type ArcParameters struct {
	StartAngle  float64 `json:"startAngle"`
	EndAngle    float64 `json:"endAngle"`
	InnerRadius float64 `json:"innerRadius"`
	OuterRadius float64 `json:"outerRadius"`
	VertexCount int     `json:"resolution"`
}

// Connected reports whether the arc spans a whole turn.
func (p ArcParameters) Connected() bool {
	return modTwoPi(p.StartAngle) == modTwoPi(p.EndAngle)
}

// Punctured reports whether the arc has a hole.
func (p ArcParameters) Punctured() bool {
	return p.InnerRadius > 0
}

// RebuildArc rewrites the first p.VertexCount anchors of vertices with the
// outline of the arc, provided dirty holds at least one arc input. It reports
// whether the buffer was written. It panics if vertices is shorter than
// p.VertexCount.
func RebuildArc(p ArcParameters, dirty Flags, vertices []*path.Anchor) bool {
	if dirty&arcFlags == 0 {
		return false
	}
	if p.VertexCount > len(vertices) {
		panic(fmt.Sprintf("shape: arc needs %d vertices but the buffer holds %d", p.VertexCount, len(vertices)))
	}
	buildArc(p, vertices[:p.VertexCount])
	return true
}

func buildArc(p ArcParameters, vertices []*path.Anchor) {
	if len(vertices) == 0 {
		return
	}
	connected := p.Connected()
	punctured := p.Punctured()
	sa := p.StartAngle
	sweep := p.EndAngle - p.StartAngle

	length := len(vertices)
	if punctured {
		length /= 2
	}
	if connected {
		// the seam point is shared
		length--
	} else if !punctured {
		// apex and the return to the start are written after the ring
		length -= 2
	}

	id := traceRing(vertices, 0, length, p.OuterRadius, sa, sweep, false, path.Move)

	switch {
	case punctured:
		if connected {
			v := vertices[id]
			v.Clear()
			v.Command = path.Close
			v.X = p.OuterRadius * math.Cos(sa)
			v.Y = p.OuterRadius * math.Sin(sa)
			id++
		} else {
			length--
		}
		first := path.Line
		if connected {
			first = path.Move
		}
		id = traceRing(vertices, id, length, p.InnerRadius, sa, sweep, true, first)
		id = lineToStart(vertices, id)

	case !connected:
		v := vertices[id]
		v.Clear()
		v.Command = path.Line
		id++
		id = lineToStart(vertices, id)

	default:
		id = lineToStart(vertices, id)
	}

	// Odd buffers leave a slot over when split into two rings.
	for ; id < len(vertices); id++ {
		vertices[id].Copy(vertices[id-1])
	}
}

// traceRing writes count anchors along the circle of radius r, starting at
// slot id, and returns the next free slot. Inner rings run from the end angle
// back to the start angle and mirror their controls.
func traceRing(vertices []*path.Anchor, id, count int, r, sa, sweep float64, inner bool, first path.Command) int {
	if count <= 0 {
		return id
	}
	last := count - 1
	step := sweep / float64(count)
	amp := r * step / math.Pi

	for i := 0; i < count; i++ {
		pct := 0.0
		if last > 0 {
			pct = float64(i) / float64(last)
		}
		if inner {
			pct = 1 - pct
		}
		theta := pct*sweep + sa

		v := vertices[id]
		v.Command = path.Curve
		if i == 0 {
			v.Command = first
		}
		v.X = r * math.Cos(theta)
		v.Y = r * math.Sin(theta)
		v.Controls.Left.Clear()
		v.Controls.Right.Clear()

		if v.Command == path.Curve {
			left, right := theta-halfPi, theta+halfPi
			if inner {
				left, right = right, left
			}
			v.Controls.Left.Set(amp*math.Cos(left), amp*math.Sin(left))
			v.Controls.Right.Set(amp*math.Cos(right), amp*math.Sin(right))
			if i == 1 {
				v.Controls.Left.MultiplyScalar(2)
			}
			if i == last {
				v.Controls.Right.MultiplyScalar(2)
			}
		}
		id++
	}
	return id
}

// lineToStart writes a line back to the first anchor's position.
func lineToStart(vertices []*path.Anchor, id int) int {
	if id >= len(vertices) {
		return id
	}
	v := vertices[id]
	v.Copy(vertices[0])
	v.Command = path.Line
	v.Controls.Left.Clear()
	v.Controls.Right.Clear()
	return id + 1
}

func modTwoPi(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}
