package engine

import "honnef.co/go/curve"

// SceneGraph is the evaluated, render-ready state of the document.
// It is rebuilt when the document changes; arc geometry survives rebuilds in
// the engine's ArcCache.
type SceneGraph struct {
	Root      *SceneNode
	NodesById map[string]*SceneNode
	Dirty     bool // needs re-evaluation
}

// SceneNode is a resolved node ready for rendering.
// All transforms are computed, all properties are resolved (including inherited ones).
type SceneNode struct {
	ID   string
	Type string // "group", "shape"

	WorldTransform curve.Affine // parent * local
	LocalTransform curve.Affine

	// Inherited/resolved properties
	Opacity float64 // inherited * local
	Visible bool

	Parent   *SceneNode
	Children []*SceneNode

	Path        []PathCommand
	Fill        string
	Stroke      string
	StrokeWidth float64

	// axis-aligned, world space, children included
	Bounds Rect
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], etc.
type PathCommand []interface{}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{
		NodesById: make(map[string]*SceneNode),
		Dirty:     true,
	}
}

func rectFromCurve(r curve.Rect) Rect {
	return Rect{
		X:      r.MinX(),
		Y:      r.MinY(),
		Width:  r.MaxX() - r.MinX(),
		Height: r.MaxY() - r.MinY(),
	}
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}
