package document

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/arcsegment/internal/shape"
)

type InDocument struct {
	Project Project               `json:"project"`
	Scenes  map[string]Scene      `json:"scenes"`
	Objects map[string]ObjectNode `json:"objects"`
}

type Project struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   int      `json:"version"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
	Scenes    []string `json:"scenes"`
}

type Scene struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
	Root       string `json:"root"`
}

type ObjectType string

const (
	ObjectTypeGroup        ObjectType = "Group"
	ObjectTypeShapeRect    ObjectType = "ShapeRect"
	ObjectTypeShapeEllipse ObjectType = "ShapeEllipse"
	ObjectTypeShapeArc     ObjectType = "ShapeArc"
	ObjectTypeVectorPath   ObjectType = "VectorPath"
)

type Transform struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`
	R  float64 `json:"r"`
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
}

type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

type ObjectNode struct {
	ID        string          `json:"id"`
	Type      ObjectType      `json:"type"`
	Parent    *string         `json:"parent"`
	Children  []string        `json:"children"`
	Transform Transform       `json:"transform"`
	Style     Style           `json:"style"`
	Visible   bool            `json:"visible"`
	Locked    bool            `json:"locked"`
	Data      json.RawMessage `json:"data"`
}

// ArcData is the Data payload of a ShapeArc object. Angles are in radians.
// A zero resolution means the default vertex count.
type ArcData struct {
	InnerRadius float64 `json:"innerRadius"`
	OuterRadius float64 `json:"outerRadius"`
	StartAngle  float64 `json:"startAngle"`
	EndAngle    float64 `json:"endAngle"`
	Resolution  int     `json:"resolution,omitempty"`
}

// Params converts the payload into builder parameters.
func (d ArcData) Params() shape.ArcParameters {
	n := d.Resolution
	if n == 0 {
		n = shape.DefaultVertexCount
	}
	return shape.ArcParameters{
		StartAngle:  d.StartAngle,
		EndAngle:    d.EndAngle,
		InnerRadius: d.InnerRadius,
		OuterRadius: d.OuterRadius,
		VertexCount: n,
	}
}

// ParseArcData decodes and validates a ShapeArc payload.
func ParseArcData(raw json.RawMessage) (ArcData, error) {
	var d ArcData
	if err := json.Unmarshal(raw, &d); err != nil {
		return ArcData{}, fmt.Errorf("decode arc data: %w", err)
	}
	if err := shape.Validate(d.Params()); err != nil {
		return ArcData{}, err
	}
	return d, nil
}

// NewEmptyDocument creates an empty document for a new project
func NewEmptyDocument(projectID, projectName, sceneID, rootID string) *InDocument {
	return &InDocument{
		Project: Project{
			ID:      projectID,
			Name:    projectName,
			Version: 1,
			Scenes:  []string{sceneID},
		},
		Scenes: map[string]Scene{
			sceneID: {
				ID:         sceneID,
				Name:       "Scene 1",
				Width:      1280,
				Height:     720,
				Background: "#1a1a2e",
				Root:       rootID,
			},
		},
		Objects: map[string]ObjectNode{
			rootID: {
				ID:        rootID,
				Type:      ObjectTypeGroup,
				Children:  []string{},
				Transform: Transform{SX: 1, SY: 1},
				Style:     Style{Opacity: 1},
				Visible:   true,
				Data:      json.RawMessage(`{}`),
			},
		},
	}
}
