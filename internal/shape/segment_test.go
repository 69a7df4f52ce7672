package shape

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"

	"github.com/inamate/arcsegment/internal/path"
)

func TestNewArcSegmentDefaults(t *testing.T) {
	a, err := NewArcSegment(ArcParameters{EndAngle: twoPi, OuterRadius: 10})
	require.NoError(t, err)
	assert.Len(t, a.Vertices(), DefaultVertexCount)
	assert.Equal(t, 36, DefaultVertexCount)
	assert.True(t, a.Path().Closed)
	assert.True(t, a.Dirty(), "fresh segments stay flagged until the first render pass")

	d := DefaultParameters()
	assert.Equal(t, twoPi, d.EndAngle)
	assert.Equal(t, DefaultVertexCount, d.VertexCount)
}

func TestNewArcSegmentRejectsTinyBuffers(t *testing.T) {
	_, err := NewArcSegment(ArcParameters{EndAngle: math.Pi, OuterRadius: 10, VertexCount: 2})
	assert.ErrorIs(t, err, ErrInvalidArc)
	_, err = NewArcSegment(ArcParameters{EndAngle: math.Pi, OuterRadius: 10, VertexCount: -4})
	assert.ErrorIs(t, err, ErrInvalidArc)
}

func TestArcSegmentUpdateIsGated(t *testing.T) {
	a, err := NewArcSegment(ArcParameters{EndAngle: math.Pi, InnerRadius: 5, OuterRadius: 10, VertexCount: 24})
	require.NoError(t, err)
	a.FlagReset()
	assert.False(t, a.Dirty())

	sentinel := a.Vertices()[0]
	sentinel.X = -999
	a.Update()
	assert.Equal(t, -999.0, sentinel.X, "clean segment must not touch its buffer")

	a.SetOuterRadius(20)
	assert.True(t, a.Dirty())
	a.Update()
	assert.InDelta(t, 20, sentinel.X, eps)
	a.FlagReset()
	assert.False(t, a.Dirty())
}

func TestArcSegmentSetters(t *testing.T) {
	a, err := NewArcSegment(ArcParameters{EndAngle: twoPi, OuterRadius: 10, VertexCount: 12})
	require.NoError(t, err)
	a.FlagReset()

	a.SetStartAngle(0.5)
	assert.Equal(t, FlagStartAngle, a.flags)
	a.SetEndAngle(2)
	a.SetInnerRadius(3)
	assert.Equal(t, FlagStartAngle|FlagEndAngle|FlagInnerRadius, a.flags)
	assert.Equal(t, 0.5, a.StartAngle())
	assert.Equal(t, 2.0, a.EndAngle())
	assert.Equal(t, 3.0, a.InnerRadius())
	assert.Equal(t, 10.0, a.OuterRadius())

	a.FlagReset()
	a.SetParams(a.Params())
	assert.False(t, a.Dirty(), "unchanged parameters are not flagged")

	p := a.Params()
	p.OuterRadius = 11
	p.VertexCount = 99
	a.SetParams(p)
	assert.Equal(t, FlagOuterRadius, a.flags)
	assert.Equal(t, 12, a.Params().VertexCount, "vertex count is fixed")
}

func TestArcSegmentPathFlagTriggersRebuild(t *testing.T) {
	a, err := NewArcSegment(ArcParameters{EndAngle: math.Pi, OuterRadius: 10, VertexCount: 12})
	require.NoError(t, err)
	a.FlagReset()

	a.Vertices()[3].X = 1e6
	a.Path().FlagVertices()
	a.Update()
	assert.InDelta(t, 10*math.Cos(3.0/9*math.Pi), a.Vertices()[3].X, eps)
}

func TestArcSegmentClone(t *testing.T) {
	a, err := NewArcSegment(ArcParameters{StartAngle: 1, EndAngle: 2, InnerRadius: 4, OuterRadius: 8, VertexCount: 16})
	require.NoError(t, err)
	c := a.Clone()

	assert.Equal(t, a.Params(), c.Params())
	require.Len(t, c.Vertices(), 16)
	for i := range a.Vertices() {
		assert.Equal(t, *a.Vertices()[i], *c.Vertices()[i])
		assert.NotSame(t, a.Vertices()[i], c.Vertices()[i])
	}
}

func TestArcSegmentJSON(t *testing.T) {
	a, err := NewArcSegment(ArcParameters{EndAngle: math.Pi, OuterRadius: 10, VertexCount: 4})
	require.NoError(t, err)

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var obj ArcObject
	require.NoError(t, json.Unmarshal(data, &obj))
	assert.Equal(t, 4, obj.Resolution)
	assert.Equal(t, math.Pi, obj.EndAngle)
	assert.True(t, obj.Closed)
	require.Len(t, obj.Vertices, 4)
	assert.Equal(t, path.Move, obj.Vertices[0].Command)
	assert.Equal(t, path.Line, obj.Vertices[3].Command)
	assert.Contains(t, string(data), `"command":"M"`)
}

func TestArcSegmentApproximatesCircle(t *testing.T) {
	a, err := NewArcSegment(ArcParameters{EndAngle: twoPi, OuterRadius: 10})
	require.NoError(t, err)

	for seg := range a.Path().BezPath().Segments() {
		mid := seg.Eval(0.5)
		r := math.Hypot(mid.X, mid.Y)
		assert.InEpsilon(t, 10, r, 0.01, "segment %v bulges off the circle", seg)
	}

	bounds := a.Path().Bounds()
	assert.InDelta(t, -10, bounds.MinX(), 0.1)
	assert.InDelta(t, 10, bounds.MaxX(), 0.1)
	assert.InDelta(t, -10, bounds.MinY(), 0.1)
	assert.InDelta(t, 10, bounds.MaxY(), 0.1)
}

func TestArcSegmentWedgeBounds(t *testing.T) {
	a, err := NewArcSegment(ArcParameters{StartAngle: 0, EndAngle: math.Pi / 2, OuterRadius: 10})
	require.NoError(t, err)

	want := curve.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}
	got := a.Path().Bounds()
	assert.InDelta(t, want.X0, got.X0, 0.1)
	assert.InDelta(t, want.Y0, got.Y0, 0.1)
	assert.InDelta(t, want.X1, got.X1, 0.1)
	assert.InDelta(t, want.Y1, got.Y1, 0.1)
}
