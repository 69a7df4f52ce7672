package collab

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/arcsegment/internal/document"
	"github.com/inamate/arcsegment/internal/engine"
	"github.com/inamate/arcsegment/internal/shape"
)

const (
	testRoot = "obj_root"
	testArc  = "obj_arc"
)

// arcDocument is a scene with a single half annulus under the root.
func arcDocument(t *testing.T) *document.InDocument {
	t.Helper()
	doc := document.NewEmptyDocument("proj_test", "Test", "scene_test", testRoot)
	raw, err := json.Marshal(document.ArcData{InnerRadius: 40, OuterRadius: 80, EndAngle: math.Pi})
	require.NoError(t, err)

	root := testRoot
	doc.Objects[testArc] = document.ObjectNode{
		ID:        testArc,
		Type:      document.ObjectTypeShapeArc,
		Parent:    &root,
		Children:  []string{},
		Transform: document.Transform{X: 100, Y: 100, SX: 1, SY: 1},
		Style:     document.Style{Fill: "#e94560", Opacity: 1},
		Visible:   true,
		Data:      raw,
	}
	r := doc.Objects[testRoot]
	r.Children = append(r.Children, testArc)
	doc.Objects[testRoot] = r
	return doc
}

func arcData(t *testing.T, ds *DocumentState, id string) document.ArcData {
	t.Helper()
	d, err := document.ParseArcData(ds.doc.Objects[id].Data)
	require.NoError(t, err)
	return d
}

func TestApplyArcUpdate(t *testing.T) {
	ds := NewDocumentState(arcDocument(t), 36)

	seq, err := ds.ApplyOperation(Operation{
		ID: "op_1", Type: OpArcUpdate, ObjectID: testArc,
		Arc: json.RawMessage(`{"endAngle":6.283185307179586,"resolution":48}`),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, seq)

	d := arcData(t, ds, testArc)
	assert.Equal(t, 40.0, d.InnerRadius, "fields absent from the update are kept")
	assert.Equal(t, 2*math.Pi, d.EndAngle)
	assert.Equal(t, 48, d.Resolution)

	_, err = ds.ApplyOperation(Operation{Type: OpArcUpdate, ObjectID: testArc, Arc: json.RawMessage(`{"resolution":2}`)})
	assert.ErrorIs(t, err, shape.ErrInvalidArc)
	assert.Equal(t, 48, arcData(t, ds, testArc).Resolution, "rejected updates leave the object untouched")

	_, err = ds.ApplyOperation(Operation{Type: OpArcUpdate, ObjectID: testRoot, Arc: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, engine.ErrObjectNotArc)

	_, err = ds.ApplyOperation(Operation{Type: OpArcUpdate, ObjectID: "obj_missing", Arc: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrObjectNotFound)

	seq, frame := ds.Render()
	assert.EqualValues(t, 1, seq)
	var cmds []engine.DrawCommand
	require.NoError(t, json.Unmarshal([]byte(frame), &cmds))
	require.Len(t, cmds, 1)
	// full ring with 48 anchors: M, 22 C, Z, M, 22 C, L, then the closing Z
	assert.Len(t, cmds[0].Path, 49)
}

func TestApplyObjectOps(t *testing.T) {
	ds := NewDocumentState(arcDocument(t), 36)

	_, err := ds.ApplyOperation(Operation{Type: OpObjectTransform, ObjectID: testArc, Transform: json.RawMessage(`{"x":5,"r":45}`)})
	require.NoError(t, err)
	tr := ds.doc.Objects[testArc].Transform
	assert.Equal(t, document.Transform{X: 5, Y: 100, SX: 1, SY: 1, R: 45}, tr)

	_, err = ds.ApplyOperation(Operation{Type: OpObjectStyle, ObjectID: testArc, Style: json.RawMessage(`{"stroke":"#000","strokeWidth":3}`)})
	require.NoError(t, err)
	assert.Equal(t, document.Style{Fill: "#e94560", Stroke: "#000", StrokeWidth: 3, Opacity: 1}, ds.doc.Objects[testArc].Style)

	_, err = ds.ApplyOperation(Operation{Type: OpObjectStyle, ObjectID: testArc, Style: json.RawMessage(`{"opacity":2}`)})
	assert.Error(t, err)

	hidden := false
	_, err = ds.ApplyOperation(Operation{Type: OpObjectVisibility, ObjectID: testArc, Visible: &hidden})
	require.NoError(t, err)
	assert.False(t, ds.doc.Objects[testArc].Visible)

	group, _ := json.Marshal(document.ObjectNode{
		ID: "obj_group", Type: document.ObjectTypeGroup, Visible: true,
		Transform: document.Transform{SX: 1, SY: 1}, Style: document.Style{Opacity: 1},
		Data: json.RawMessage(`{}`),
	})
	first := 0
	_, err = ds.ApplyOperation(Operation{Type: OpObjectCreate, Object: group, ParentID: testRoot, Index: &first})
	require.NoError(t, err)
	assert.Equal(t, []string{"obj_group", testArc}, ds.doc.Objects[testRoot].Children)

	_, err = ds.ApplyOperation(Operation{Type: OpObjectCreate, Object: group, ParentID: testRoot})
	assert.Error(t, err, "duplicate ids are rejected")

	badArc, _ := json.Marshal(document.ObjectNode{
		ID: "obj_bad", Type: document.ObjectTypeShapeArc,
		Data: json.RawMessage(`{"outerRadius":5,"resolution":1}`),
	})
	_, err = ds.ApplyOperation(Operation{Type: OpObjectCreate, Object: badArc, ParentID: testRoot})
	assert.ErrorIs(t, err, shape.ErrInvalidArc)

	child, _ := json.Marshal(document.ObjectNode{ID: "obj_child", Type: document.ObjectTypeGroup, Data: json.RawMessage(`{}`)})
	_, err = ds.ApplyOperation(Operation{Type: OpObjectCreate, Object: child, ParentID: "obj_group"})
	require.NoError(t, err)

	_, err = ds.ApplyOperation(Operation{Type: OpObjectDelete, ObjectID: "obj_group"})
	require.NoError(t, err)
	assert.NotContains(t, ds.doc.Objects, "obj_group")
	assert.NotContains(t, ds.doc.Objects, "obj_child")
	assert.Equal(t, []string{testArc}, ds.doc.Objects[testRoot].Children)

	_, err = ds.ApplyOperation(Operation{Type: OpObjectDelete, ObjectID: testRoot})
	assert.Error(t, err)

	_, err = ds.ApplyOperation(Operation{Type: "object.teleport"})
	assert.Error(t, err)
}

func TestApplySceneAndProjectOps(t *testing.T) {
	ds := NewDocumentState(arcDocument(t), 36)

	_, err := ds.ApplyOperation(Operation{Type: OpSceneUpdate, SceneID: "scene_test", Changes: json.RawMessage(`{"width":640,"root":"obj_arc"}`)})
	require.NoError(t, err)
	scene := ds.doc.Scenes["scene_test"]
	assert.Equal(t, 640, scene.Width)
	assert.Equal(t, 720, scene.Height)
	assert.Equal(t, testRoot, scene.Root)

	_, err = ds.ApplyOperation(Operation{Type: OpSceneUpdate, SceneID: "scene_test", Changes: json.RawMessage(`{"height":0}`)})
	assert.Error(t, err)
	_, err = ds.ApplyOperation(Operation{Type: OpSceneUpdate, SceneID: "scene_x", Changes: json.RawMessage(`{}`)})
	assert.Error(t, err)

	_, err = ds.ApplyOperation(Operation{Type: OpProjectRename, Name: "Gauges"})
	require.NoError(t, err)
	assert.Equal(t, "Gauges", ds.doc.Project.Name)
	_, err = ds.ApplyOperation(Operation{Type: OpProjectRename})
	assert.Error(t, err)
}

func TestSaveIfDirty(t *testing.T) {
	ds := NewDocumentState(arcDocument(t), 36)
	calls := 0
	save := func(*document.InDocument) error {
		calls++
		return nil
	}

	saved, err := ds.SaveIfDirty(save)
	require.NoError(t, err)
	assert.False(t, saved)

	_, err = ds.ApplyOperation(Operation{Type: OpProjectRename, Name: "Dirty"})
	require.NoError(t, err)
	saved, err = ds.SaveIfDirty(save)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, _ = ds.SaveIfDirty(save)
	assert.False(t, saved)
	assert.Equal(t, 1, calls)
}
