package shape

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/arcsegment/internal/path"
)

// Resolution is the base vertex density for curved shapes.
const Resolution = 12

// DefaultVertexCount is used when an arc is created without a resolution.
const DefaultVertexCount = Resolution * 3

// MinVertexCount is the smallest buffer an arc can be traced into.
const MinVertexCount = 3

var ErrInvalidArc = errors.New("invalid arc")

// Properties lists the observable arc properties.
var Properties = []string{"startAngle", "endAngle", "innerRadius", "outerRadius"}

// DefaultParameters returns a full solid disc with no radius.
func DefaultParameters() ArcParameters {
	return ArcParameters{
		StartAngle:  0,
		EndAngle:    twoPi,
		VertexCount: DefaultVertexCount,
	}
}

// Validate checks the preconditions the builder relies on.
func Validate(p ArcParameters) error {
	if p.VertexCount < MinVertexCount {
		return fmt.Errorf("%w: resolution %d is below %d", ErrInvalidArc, p.VertexCount, MinVertexCount)
	}
	return nil
}

// ArcSegment is a closed path outlining a pie slice or a ring segment.
// Setters only record what changed; Update rebuilds the anchors when needed.
type ArcSegment struct {
	path   *path.Path
	params ArcParameters
	flags  Flags
}

// NewArcSegment allocates the vertex buffer for p and traces it once. A zero
// VertexCount selects DefaultVertexCount.
func NewArcSegment(p ArcParameters) (*ArcSegment, error) {
	if p.VertexCount == 0 {
		p.VertexCount = DefaultVertexCount
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	a := &ArcSegment{
		path:   path.NewPath(p.VertexCount, true),
		params: p,
		flags:  arcFlags,
	}
	a.Update()
	return a, nil
}

func (a *ArcSegment) Params() ArcParameters { return a.params }
func (a *ArcSegment) StartAngle() float64   { return a.params.StartAngle }
func (a *ArcSegment) EndAngle() float64     { return a.params.EndAngle }
func (a *ArcSegment) InnerRadius() float64  { return a.params.InnerRadius }
func (a *ArcSegment) OuterRadius() float64  { return a.params.OuterRadius }

func (a *ArcSegment) SetStartAngle(v float64) {
	a.params.StartAngle = v
	a.flags |= FlagStartAngle
}

func (a *ArcSegment) SetEndAngle(v float64) {
	a.params.EndAngle = v
	a.flags |= FlagEndAngle
}

func (a *ArcSegment) SetInnerRadius(v float64) {
	a.params.InnerRadius = v
	a.flags |= FlagInnerRadius
}

func (a *ArcSegment) SetOuterRadius(v float64) {
	a.params.OuterRadius = v
	a.flags |= FlagOuterRadius
}

// SetParams applies every field of p except the vertex count, which is fixed
// for the lifetime of the segment. Only fields that differ are flagged.
func (a *ArcSegment) SetParams(p ArcParameters) {
	if p.StartAngle != a.params.StartAngle {
		a.SetStartAngle(p.StartAngle)
	}
	if p.EndAngle != a.params.EndAngle {
		a.SetEndAngle(p.EndAngle)
	}
	if p.InnerRadius != a.params.InnerRadius {
		a.SetInnerRadius(p.InnerRadius)
	}
	if p.OuterRadius != a.params.OuterRadius {
		a.SetOuterRadius(p.OuterRadius)
	}
}

// Dirty reports whether the next Update will rebuild the anchors.
func (a *ArcSegment) Dirty() bool {
	return a.pending()&arcFlags != 0
}

func (a *ArcSegment) pending() Flags {
	f := a.flags
	if a.path.VerticesDirty() {
		f |= FlagVertices
	}
	return f
}

// Update rebuilds the anchors if any arc input changed, then lets the path
// refresh its derived state. It is meant to run at most once per frame.
func (a *ArcSegment) Update() {
	if RebuildArc(a.params, a.pending(), a.path.Vertices()) {
		a.path.FlagVertices()
	}
	a.path.Update()
}

// FlagReset clears every dirty flag after a render pass.
func (a *ArcSegment) FlagReset() {
	a.path.FlagReset()
	a.flags = 0
}

// Path returns the underlying path.
func (a *ArcSegment) Path() *path.Path {
	return a.path
}

// Vertices returns the anchor buffer.
func (a *ArcSegment) Vertices() []*path.Anchor {
	return a.path.Vertices()
}

// Clone returns a new segment with the same parameters and vertex count.
func (a *ArcSegment) Clone() *ArcSegment {
	c := &ArcSegment{
		path:   path.NewPath(a.path.Len(), a.path.Closed),
		params: a.params,
		flags:  arcFlags,
	}
	c.Update()
	return c
}

// ArcObject is the plain representation of an ArcSegment.
type ArcObject struct {
	StartAngle  float64       `json:"startAngle"`
	EndAngle    float64       `json:"endAngle"`
	InnerRadius float64       `json:"innerRadius"`
	OuterRadius float64       `json:"outerRadius"`
	Resolution  int           `json:"resolution"`
	Closed      bool          `json:"closed"`
	Vertices    []path.Anchor `json:"vertices"`
}

// ToObject snapshots the segment, anchors included.
func (a *ArcSegment) ToObject() ArcObject {
	vertices := make([]path.Anchor, a.path.Len())
	for i, v := range a.path.Vertices() {
		vertices[i] = *v
	}
	return ArcObject{
		StartAngle:  a.params.StartAngle,
		EndAngle:    a.params.EndAngle,
		InnerRadius: a.params.InnerRadius,
		OuterRadius: a.params.OuterRadius,
		Resolution:  a.params.VertexCount,
		Closed:      a.path.Closed,
		Vertices:    vertices,
	}
}

func (a *ArcSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToObject())
}
