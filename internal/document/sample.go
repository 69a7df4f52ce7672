package document

import (
	"encoding/json"
	"math"
	"time"

	"github.com/inamate/arcsegment/internal/typeid"
)

// sampleSlices are the shares of the donut chart in the sample document.
var sampleSlices = []struct {
	share float64
	fill  string
}{
	{0.40, "#e94560"},
	{0.25, "#0f3460"},
	{0.20, "#53d769"},
	{0.15, "#f5a623"},
}

// NewSampleDocument builds a scene with a donut chart, a pie wedge, a full
// ring and a filled disc.
func NewSampleDocument(projectID string) *InDocument {
	now := time.Now().UTC().Format(time.RFC3339)

	sceneID := typeid.NewSceneID()
	rootID := typeid.NewObjectID()
	chartID := typeid.NewObjectID()
	wedgeID := typeid.NewObjectID()
	ringID := typeid.NewObjectID()
	discID := typeid.NewObjectID()
	frameID := typeid.NewObjectID()

	doc := NewEmptyDocument(projectID, "Untitled", sceneID, rootID)
	doc.Project.CreatedAt = now
	doc.Project.UpdatedAt = now

	add := func(id string, parent string, typ ObjectType, x, y float64, style Style, data any) {
		raw, _ := json.Marshal(data)
		p := parent
		doc.Objects[id] = ObjectNode{
			ID:        id,
			Type:      typ,
			Parent:    &p,
			Children:  []string{},
			Transform: Transform{X: x, Y: y, SX: 1, SY: 1},
			Style:     style,
			Visible:   true,
			Data:      raw,
		}
		parentObj := doc.Objects[parent]
		parentObj.Children = append(parentObj.Children, id)
		doc.Objects[parent] = parentObj
	}

	add(frameID, rootID, ObjectTypeShapeRect, 80, 80, Style{Stroke: "#16213e", StrokeWidth: 2, Opacity: 1},
		map[string]float64{"width": 1120, "height": 560})

	add(chartID, rootID, ObjectTypeGroup, 360, 360, Style{Opacity: 1}, struct{}{})
	start := -math.Pi / 2
	for _, s := range sampleSlices {
		end := start + s.share*2*math.Pi
		add(typeid.NewObjectID(), chartID, ObjectTypeShapeArc, 0, 0,
			Style{Fill: s.fill, Stroke: "#1a1a2e", StrokeWidth: 2, Opacity: 1},
			ArcData{InnerRadius: 90, OuterRadius: 160, StartAngle: start, EndAngle: end})
		start = end
	}

	add(wedgeID, rootID, ObjectTypeShapeArc, 760, 360,
		Style{Fill: "#bd10e0", Stroke: "#8b0ba8", StrokeWidth: 2, Opacity: 1},
		ArcData{OuterRadius: 120, StartAngle: math.Pi / 6, EndAngle: 5 * math.Pi / 3, Resolution: 48})

	add(ringID, rootID, ObjectTypeShapeArc, 1040, 240,
		Style{Fill: "#53d769", Opacity: 0.8},
		ArcData{InnerRadius: 60, OuterRadius: 80, StartAngle: 0, EndAngle: 2 * math.Pi, Resolution: 48})

	add(discID, rootID, ObjectTypeShapeEllipse, 1040, 500,
		Style{Fill: "#0f3460", Stroke: "#16213e", StrokeWidth: 2, Opacity: 1},
		map[string]float64{"rx": 70, "ry": 70})

	return doc
}
