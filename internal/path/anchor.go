package path

import (
	"fmt"
	"math"
)

// Command tags how an anchor is connected to the one before it.
type Command uint8

const (
	Move Command = iota
	Line
	Curve
	Close
)

func (c Command) String() string {
	switch c {
	case Move:
		return "M"
	case Line:
		return "L"
	case Curve:
		return "C"
	case Close:
		return "Z"
	default:
		return "?"
	}
}

func (c Command) MarshalText() ([]byte, error) {
	if c > Close {
		return nil, fmt.Errorf("unknown path command %d", c)
	}
	return []byte(c.String()), nil
}

func (c *Command) UnmarshalText(b []byte) error {
	switch string(b) {
	case "M":
		*c = Move
	case "L":
		*c = Line
	case "C":
		*c = Curve
	case "Z":
		*c = Close
	default:
		return fmt.Errorf("unknown path command %q", b)
	}
	return nil
}

// Vector is a mutable 2D offset.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Set assigns both components.
func (v *Vector) Set(x, y float64) {
	v.X, v.Y = x, y
}

// Clear zeroes the vector.
func (v *Vector) Clear() {
	v.X, v.Y = 0, 0
}

// MultiplyScalar scales the vector in place.
func (v *Vector) MultiplyScalar(s float64) {
	v.X *= s
	v.Y *= s
}

// Length returns the euclidean length.
func (v Vector) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Controls holds the Bezier handles of an anchor, relative to its position.
// Left shapes the curve entering the anchor, Right the curve leaving it.
type Controls struct {
	Left  Vector `json:"left"`
	Right Vector `json:"right"`
}

// Anchor is a single vertex of a path.
type Anchor struct {
	Command  Command  `json:"command"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Controls Controls `json:"controls"`
}

// NewAnchor returns a move anchor at (x, y) with no controls.
func NewAnchor(x, y float64) *Anchor {
	return &Anchor{Command: Move, X: x, Y: y}
}

// Copy overwrites a with the full state of src.
func (a *Anchor) Copy(src *Anchor) {
	*a = *src
}

// Clear resets the anchor to a move at the origin.
func (a *Anchor) Clear() {
	*a = Anchor{}
}

// IsFinite reports whether the position and both controls are finite.
func (a *Anchor) IsFinite() bool {
	for _, f := range [...]float64{
		a.X, a.Y,
		a.Controls.Left.X, a.Controls.Left.Y,
		a.Controls.Right.X, a.Controls.Right.Y,
	} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
