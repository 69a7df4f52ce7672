package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/arcsegment/internal/document"
	"github.com/inamate/arcsegment/internal/shape"
)

var (
	ErrNoDocument    = errors.New("no document loaded")
	ErrSceneNotFound = errors.New("scene not found")
	ErrObjectNotArc  = errors.New("object is not an arc")
)

// Engine owns the document and scene graph state.
// It processes commands from the frontend and returns query results.
// It is not safe for concurrent use.
type Engine struct {
	doc     *document.InDocument
	sceneID string

	// Retained scene graph
	sceneGraph *SceneGraph
	arcs       *ArcCache

	selection []string

	// scene graph needs rebuild
	dirty bool
}

// NewEngine creates a new engine instance.
func NewEngine() *Engine {
	return &Engine{
		sceneGraph: NewSceneGraph(),
		arcs:       NewArcCache(),
		dirty:      true,
	}
}

// SetDefaultResolution sets the vertex count used for arcs that do not
// specify one. Values below shape.MinVertexCount are ignored.
func (e *Engine) SetDefaultResolution(n int) {
	if n < shape.MinVertexCount {
		return
	}
	e.arcs.DefaultResolution = n
	e.dirty = true
}

// --- Commands (frontend → backend) ---

// LoadDocument loads a document from JSON, resetting selection and arc cache.
func (e *Engine) LoadDocument(jsonData string) error {
	var doc document.InDocument
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	e.SetDocument(&doc)
	return nil
}

// SetDocument installs an already decoded document, as LoadDocument does.
func (e *Engine) SetDocument(doc *document.InDocument) {
	e.doc = doc
	e.sceneID = firstScene(doc)
	e.selection = nil
	e.resetArcs()
	e.dirty = true
}

// UpdateDocument reloads a document from JSON while preserving the selection
// and any cached arc geometry.
func (e *Engine) UpdateDocument(jsonData string) error {
	var doc document.InDocument
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	e.doc = &doc
	if _, ok := doc.Scenes[e.sceneID]; !ok {
		e.sceneID = firstScene(&doc)
	}
	e.dirty = true
	return nil
}

// LoadSampleDocument loads the built-in sample document.
func (e *Engine) LoadSampleDocument(projectID string) {
	e.SetDocument(document.NewSampleDocument(projectID))
}

// SetScene switches the rendered scene.
func (e *Engine) SetScene(sceneID string) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	if _, ok := e.doc.Scenes[sceneID]; !ok {
		return fmt.Errorf("set scene %s: %w", sceneID, ErrSceneNotFound)
	}
	if e.sceneID != sceneID {
		e.sceneID = sceneID
		e.dirty = true
	}
	return nil
}

// SetArc replaces the parameters of a ShapeArc object. The object's anchors
// are rebuilt on the next Render.
func (e *Engine) SetArc(objectID string, d document.ArcData) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	obj, ok := e.doc.Objects[objectID]
	if !ok || obj.Type != document.ObjectTypeShapeArc {
		return fmt.Errorf("set arc %s: %w", objectID, ErrObjectNotArc)
	}
	if err := shape.Validate(d.Params()); err != nil {
		return fmt.Errorf("set arc %s: %w", objectID, err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode arc data: %w", err)
	}
	obj.Data = data
	e.doc.Objects[objectID] = obj
	e.dirty = true
	return nil
}

// Invalidate marks the scene graph stale after the document passed to
// SetDocument was mutated in place. Cached arcs are kept.
func (e *Engine) Invalidate() {
	e.dirty = true
}

// SetSelection sets the selected object IDs.
func (e *Engine) SetSelection(ids []string) {
	e.selection = ids
}

// Tick renders the current frame. It is called once per animation frame
// from the frontend.
func (e *Engine) Tick() string {
	return e.Render()
}

// --- Queries (frontend ← backend) ---

// Render evaluates the scene graph and returns draw commands as JSON.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(e.RenderCommands())
	return result
}

// RenderCommands rebuilds the scene graph if needed and compiles it to draw
// commands. Every cached arc is clean afterwards.
func (e *Engine) RenderCommands() []DrawCommand {
	if e.doc == nil {
		return nil
	}

	if e.dirty {
		e.sceneGraph = BuildSceneGraph(e.doc, e.sceneID, e.arcs)
		e.dirty = false
	}

	commands := CompileDrawCommands(e.sceneGraph)
	e.arcs.FlagReset()
	return commands
}

// SceneGraph returns the current scene graph, rebuilding it if needed.
func (e *Engine) SceneGraph() *SceneGraph {
	if e.doc != nil && e.dirty {
		e.RenderCommands()
	}
	return e.sceneGraph
}

// ArcRebuilds reports how many times arc anchors were re-traced.
func (e *Engine) ArcRebuilds() int {
	return e.arcs.Rebuilds()
}

// GetSelectionBounds returns the bounding box of the current selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	if len(e.selection) == 0 {
		return RectToJSON(Rect{})
	}
	return RectToJSON(GetSelectionBounds(e.SceneGraph(), e.selection))
}

// GetScene returns the current scene metadata as JSON.
func (e *Engine) GetScene() string {
	if e.doc == nil || e.sceneID == "" {
		return "{}"
	}

	scene, ok := e.doc.Scenes[e.sceneID]
	if !ok {
		return "{}"
	}

	data, _ := json.Marshal(scene)
	return string(data)
}

// Scene returns the current scene.
func (e *Engine) Scene() (document.Scene, bool) {
	if e.doc == nil {
		return document.Scene{}, false
	}
	scene, ok := e.doc.Scenes[e.sceneID]
	return scene, ok
}

// GetDocument returns the full document as JSON (for debugging/sync).
func (e *Engine) GetDocument() string {
	if e.doc == nil {
		return "{}"
	}
	data, _ := json.Marshal(e.doc)
	return string(data)
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	if e.selection == nil {
		return "[]"
	}
	data, _ := json.Marshal(e.selection)
	return string(data)
}

func (e *Engine) resetArcs() {
	res := e.arcs.DefaultResolution
	e.arcs = NewArcCache()
	e.arcs.DefaultResolution = res
}

func firstScene(doc *document.InDocument) string {
	if len(doc.Project.Scenes) > 0 {
		return doc.Project.Scenes[0]
	}
	return ""
}
