package path

import (
	"honnef.co/go/curve"
)

// Path is an ordered, fixed-length sequence of anchors. The slice is
// allocated once by NewPath; shapes rewrite the anchors in place and never
// grow or reorder it.
type Path struct {
	vertices []*Anchor

	// Closed makes renderers close the outline after the last vertex.
	Closed bool

	flagVertices bool
	bounds       curve.Rect
}

// NewPath allocates a path of n anchors.
func NewPath(n int, closed bool) *Path {
	vertices := make([]*Anchor, n)
	for i := range vertices {
		vertices[i] = &Anchor{}
	}
	return &Path{
		vertices:     vertices,
		Closed:       closed,
		flagVertices: true,
	}
}

// Vertices returns the anchor buffer. Callers may mutate the anchors but must
// call FlagVertices afterwards.
func (p *Path) Vertices() []*Anchor {
	return p.vertices
}

// Len returns the fixed vertex count.
func (p *Path) Len() int {
	return len(p.vertices)
}

// FlagVertices marks the vertex buffer as changed.
func (p *Path) FlagVertices() {
	p.flagVertices = true
}

// VerticesDirty reports whether the vertex buffer changed since the last
// FlagReset.
func (p *Path) VerticesDirty() bool {
	return p.flagVertices
}

// Update recomputes derived state after the anchors were written.
func (p *Path) Update() {
	if !p.flagVertices {
		return
	}
	p.bounds = p.BezPath().BoundingBox()
}

// FlagReset clears the dirty flags. It is called once a render pass consumed
// the current geometry.
func (p *Path) FlagReset() {
	p.flagVertices = false
}

// Bounds returns the bounding box computed by the last Update.
func (p *Path) Bounds() curve.Rect {
	return p.bounds
}

// BezPath converts the anchors into an absolute Bezier path. A curve anchor
// is joined to its predecessor with the predecessor's right control and its
// own left control.
func (p *Path) BezPath() curve.BezPath {
	n := len(p.vertices)
	bp := make(curve.BezPath, 0, n+1)
	closed := false
	for i, v := range p.vertices {
		pt := curve.Pt(v.X, v.Y)
		switch v.Command {
		case Move:
			bp.MoveTo(pt)
			closed = false
		case Line:
			if len(bp) == 0 {
				bp.MoveTo(pt)
				continue
			}
			bp.LineTo(pt)
			closed = false
		case Curve:
			if len(bp) == 0 {
				bp.MoveTo(pt)
				continue
			}
			prev := p.vertices[max(i-1, 0)]
			c1 := curve.Pt(prev.X+prev.Controls.Right.X, prev.Y+prev.Controls.Right.Y)
			c2 := curve.Pt(v.X+v.Controls.Left.X, v.Y+v.Controls.Left.Y)
			bp.CubicTo(c1, c2, pt)
			closed = false
		case Close:
			if len(bp) > 0 && !closed {
				bp.ClosePath()
				closed = true
			}
		}
	}
	if p.Closed && len(bp) > 0 && !closed {
		bp.ClosePath()
	}
	return bp
}
