package export

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/arcsegment/internal/document"
	"github.com/inamate/arcsegment/internal/engine"
)

func testDocument(t *testing.T) *document.InDocument {
	t.Helper()
	doc := document.NewEmptyDocument("proj_test", "Test", "scene_test", "obj_root")

	add := func(id string, typ document.ObjectType, tr document.Transform, style document.Style, data any) {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		root := "obj_root"
		doc.Objects[id] = document.ObjectNode{
			ID: id, Type: typ, Parent: &root, Children: []string{},
			Transform: tr, Style: style, Visible: true, Data: raw,
		}
		r := doc.Objects[root]
		r.Children = append(r.Children, id)
		doc.Objects[root] = r
	}

	add("obj_box", document.ObjectTypeShapeRect,
		document.Transform{X: 5, Y: 5, SX: 1, SY: 1},
		document.Style{Fill: "#f00", Opacity: 1},
		map[string]float64{"width": 10, "height": 20})
	add("obj_ring", document.ObjectTypeShapeArc,
		document.Transform{X: 100, Y: 100, SX: 1, SY: 1},
		document.Style{Stroke: "#0f0", StrokeWidth: 2, Opacity: 0.5},
		document.ArcData{InnerRadius: 20, OuterRadius: 40, EndAngle: 2 * math.Pi})
	return doc
}

func TestSVG(t *testing.T) {
	doc := testDocument(t)
	e := engine.NewEngine()
	e.SetDocument(doc)
	scene, ok := e.Scene()
	require.True(t, ok)

	var sb strings.Builder
	require.NoError(t, SVG(&sb, e.SceneGraph(), scene, Options{}))
	out := sb.String()

	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="1280" height="720" viewBox="0 0 1280 720">`))
	assert.Contains(t, out, `<rect width="100%" height="100%" fill="#1a1a2e"/>`)
	assert.Contains(t, out, `<path id="obj_box" d="M5,5 L15,5 L15,25 L5,25 Z" fill="#f00"/>`)
	assert.Contains(t, out, `<path id="obj_ring" d="M140,100 C`)
	assert.Contains(t, out, `fill="none" stroke="#0f0" stroke-width="2" opacity="0.5"/>`)
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))

	// box is painted before the ring
	assert.Less(t, strings.Index(out, "obj_box"), strings.Index(out, "obj_ring"))
}

func TestSVGEmptyScene(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, SVG(&sb, nil, document.Scene{Width: 10, Height: 10}, Options{}))
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10" viewBox="0 0 10 10">`+"\n</svg>\n", sb.String())
}

func TestExportSVGHandler(t *testing.T) {
	h := NewHandler(36, 2)
	body, err := json.Marshal(document.NewSampleDocument("proj_sample"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		query  string
		body   string
		status int
	}{
		{"sample", "", string(body), http.StatusOK},
		{"precision override", "?precision=0", string(body), http.StatusOK},
		{"bad precision", "?precision=many", string(body), http.StatusBadRequest},
		{"unknown scene", "?scene=scene_missing", string(body), http.StatusNotFound},
		{"garbage", "", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/export/svg"+tt.query, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ExportSVG(rec, req)
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
				// frame, four donut slices, wedge, ring, disc
				assert.Equal(t, 8, strings.Count(rec.Body.String(), "<path "))
			}
		})
	}
}
