package path

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"
)

func TestNewPath(t *testing.T) {
	p := NewPath(4, true)
	assert.Equal(t, 4, p.Len())
	assert.True(t, p.VerticesDirty())
	for _, v := range p.Vertices() {
		assert.Equal(t, Anchor{}, *v)
	}

	p.FlagReset()
	assert.False(t, p.VerticesDirty())
	p.FlagVertices()
	assert.True(t, p.VerticesDirty())
}

func TestBezPath(t *testing.T) {
	p := NewPath(4, true)
	v := p.Vertices()
	*v[0] = Anchor{Command: Move, X: 0, Y: 0, Controls: Controls{Right: Vector{X: 5}}}
	*v[1] = Anchor{Command: Curve, X: 10, Y: 10, Controls: Controls{Left: Vector{Y: -5}}}
	*v[2] = Anchor{Command: Line, X: 0, Y: 10}
	*v[3] = Anchor{Command: Close}

	bp := p.BezPath()
	require.Len(t, bp, 4)
	assert.Equal(t, curve.MoveToKind, bp[0].Kind)
	assert.Equal(t, curve.CubicToKind, bp[1].Kind)
	assert.Equal(t, curve.Pt(5, 0), bp[1].P0)
	assert.Equal(t, curve.Pt(10, 5), bp[1].P1)
	assert.Equal(t, curve.Pt(10, 10), bp[1].P2)
	assert.Equal(t, curve.LineToKind, bp[2].Kind)
	// the explicit Close already closed the outline
	assert.Equal(t, curve.ClosePathKind, bp[3].Kind)

	p.Update()
	b := p.Bounds()
	assert.InDelta(t, 0, b.X0, 1e-9)
	assert.InDelta(t, 10, b.X1, 1e-9)
	assert.InDelta(t, 10, b.Y1, 1e-9)
}

func TestBezPathLeadingDrawCommand(t *testing.T) {
	p := NewPath(2, false)
	v := p.Vertices()
	*v[0] = Anchor{Command: Line, X: 1, Y: 2}
	*v[1] = Anchor{Command: Line, X: 3, Y: 4}

	bp := p.BezPath()
	require.Len(t, bp, 2)
	assert.Equal(t, curve.MoveToKind, bp[0].Kind)
	assert.Equal(t, curve.LineToKind, bp[1].Kind)
}

func TestAnchor(t *testing.T) {
	a := NewAnchor(3, 4)
	a.Controls.Left.Set(3, 4)
	assert.Equal(t, 5.0, a.Controls.Left.Length())
	a.Controls.Left.MultiplyScalar(2)
	assert.Equal(t, Vector{X: 6, Y: 8}, a.Controls.Left)
	assert.True(t, a.IsFinite())

	var b Anchor
	b.Copy(a)
	assert.Equal(t, *a, b)
	b.Controls.Right.X = math.NaN()
	assert.False(t, b.IsFinite())
	b.Clear()
	assert.Equal(t, Anchor{}, b)
}

func TestCommandText(t *testing.T) {
	data, err := json.Marshal(Anchor{Command: Curve})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"command":"C"`)

	var c Command
	assert.Error(t, c.UnmarshalText([]byte("Q")))
	_, err = Command(9).MarshalText()
	assert.Error(t, err)
}
