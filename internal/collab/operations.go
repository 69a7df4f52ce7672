package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/inamate/arcsegment/internal/document"
	"github.com/inamate/arcsegment/internal/engine"
	"github.com/inamate/arcsegment/internal/shape"
)

var ErrObjectNotFound = errors.New("object not found")

// DocumentState holds the authoritative document state for a room, along
// with the engine that renders it.
type DocumentState struct {
	mu        sync.Mutex
	doc       *document.InDocument
	eng       *engine.Engine
	serverSeq int64
	dirty     bool // changed since the last save
}

// NewDocumentState creates a new document state from an initial document.
// arcResolution is the vertex count for arcs that do not carry one.
func NewDocumentState(doc *document.InDocument, arcResolution int) *DocumentState {
	eng := engine.NewEngine()
	eng.SetDefaultResolution(arcResolution)
	eng.SetDocument(doc)
	return &DocumentState{doc: doc, eng: eng}
}

// ApplyOperation applies an operation to the document and returns the server sequence
func (ds *DocumentState) ApplyOperation(op Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := ds.applyOperationLocked(op); err != nil {
		return 0, err
	}

	ds.serverSeq++
	ds.dirty = true
	ds.eng.Invalidate()
	return ds.serverSeq, nil
}

func (ds *DocumentState) applyOperationLocked(op Operation) error {
	switch op.Type {
	case OpObjectTransform:
		return ds.applyTransform(op)
	case OpObjectStyle:
		return ds.applyStyle(op)
	case OpObjectDelete:
		return ds.applyDelete(op)
	case OpObjectCreate:
		return ds.applyCreate(op)
	case OpObjectVisibility:
		return ds.applyVisibility(op)
	case OpArcUpdate:
		return ds.applyArcUpdate(op)
	case OpSceneUpdate:
		return ds.applySceneUpdate(op)
	case OpProjectRename:
		return ds.applyProjectRename(op)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

// Render returns the current draw commands and the sequence they reflect.
func (ds *DocumentState) Render() (int64, string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.serverSeq, ds.eng.Render()
}

// SelectionBounds returns the world-space bounds of ids as JSON.
func (ds *DocumentState) SelectionBounds(ids []string) json.RawMessage {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return json.RawMessage(engine.RectToJSON(engine.GetSelectionBounds(ds.eng.SceneGraph(), ids)))
}

// Sync returns the document as JSON with its current sequence.
func (ds *DocumentState) Sync() (DocSyncPayload, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	data, err := json.Marshal(ds.doc)
	if err != nil {
		return DocSyncPayload{}, fmt.Errorf("marshal document: %w", err)
	}
	return DocSyncPayload{Document: data, ServerSeq: ds.serverSeq}, nil
}

// SaveIfDirty hands the document to save while holding the lock, so no
// operation lands mid-save. It reports whether save was called.
func (ds *DocumentState) SaveIfDirty(save func(*document.InDocument) error) (bool, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.dirty {
		return false, nil
	}
	if err := save(ds.doc); err != nil {
		return true, err
	}
	ds.dirty = false
	return true, nil
}

func (ds *DocumentState) object(id string) (document.ObjectNode, error) {
	obj, ok := ds.doc.Objects[id]
	if !ok {
		return document.ObjectNode{}, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	return obj, nil
}

func (ds *DocumentState) applyTransform(op Operation) error {
	obj, err := ds.object(op.ObjectID)
	if err != nil {
		return err
	}

	// Fields absent from the payload keep their value.
	if err := json.Unmarshal(op.Transform, &obj.Transform); err != nil {
		return fmt.Errorf("invalid transform: %w", err)
	}

	ds.doc.Objects[op.ObjectID] = obj
	return nil
}

func (ds *DocumentState) applyStyle(op Operation) error {
	obj, err := ds.object(op.ObjectID)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(op.Style, &obj.Style); err != nil {
		return fmt.Errorf("invalid style: %w", err)
	}
	if obj.Style.Opacity < 0 || obj.Style.Opacity > 1 {
		return fmt.Errorf("invalid style: opacity %g out of range", obj.Style.Opacity)
	}

	ds.doc.Objects[op.ObjectID] = obj
	return nil
}

// applyDelete removes an object and its whole subtree.
func (ds *DocumentState) applyDelete(op Operation) error {
	obj, err := ds.object(op.ObjectID)
	if err != nil {
		return err
	}
	if ds.isSceneRoot(op.ObjectID) {
		return fmt.Errorf("cannot delete scene root %s", op.ObjectID)
	}

	if obj.Parent != nil {
		if parent, ok := ds.doc.Objects[*obj.Parent]; ok {
			parent.Children = slices.DeleteFunc(slices.Clone(parent.Children), func(id string) bool {
				return id == op.ObjectID
			})
			ds.doc.Objects[*obj.Parent] = parent
		}
	}

	stack := []string{op.ObjectID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if o, ok := ds.doc.Objects[id]; ok {
			stack = append(stack, o.Children...)
			delete(ds.doc.Objects, id)
		}
	}
	return nil
}

func (ds *DocumentState) applyCreate(op Operation) error {
	var obj document.ObjectNode
	if err := json.Unmarshal(op.Object, &obj); err != nil {
		return fmt.Errorf("invalid object: %w", err)
	}
	if obj.ID == "" {
		return errors.New("invalid object: missing id")
	}
	if _, exists := ds.doc.Objects[obj.ID]; exists {
		return fmt.Errorf("object already exists: %s", obj.ID)
	}
	if obj.Type == document.ObjectTypeShapeArc {
		if _, err := document.ParseArcData(obj.Data); err != nil {
			return err
		}
	}

	parentID := op.ParentID
	if parentID == "" && obj.Parent != nil {
		parentID = *obj.Parent
	}
	parent, ok := ds.doc.Objects[parentID]
	if !ok {
		return fmt.Errorf("parent %w: %s", ErrObjectNotFound, parentID)
	}

	obj.Parent = &parentID
	if obj.Children == nil {
		obj.Children = []string{}
	}
	ds.doc.Objects[obj.ID] = obj

	if op.Index != nil && *op.Index >= 0 && *op.Index <= len(parent.Children) {
		parent.Children = slices.Insert(slices.Clone(parent.Children), *op.Index, obj.ID)
	} else {
		parent.Children = append(parent.Children, obj.ID)
	}
	ds.doc.Objects[parentID] = parent
	return nil
}

func (ds *DocumentState) applyVisibility(op Operation) error {
	obj, err := ds.object(op.ObjectID)
	if err != nil {
		return err
	}

	if op.Visible != nil {
		obj.Visible = *op.Visible
	}

	ds.doc.Objects[op.ObjectID] = obj
	return nil
}

// applyArcUpdate merges a partial ArcData into a ShapeArc object.
func (ds *DocumentState) applyArcUpdate(op Operation) error {
	obj, err := ds.object(op.ObjectID)
	if err != nil {
		return err
	}
	if obj.Type != document.ObjectTypeShapeArc {
		return fmt.Errorf("%w: %s", engine.ErrObjectNotArc, op.ObjectID)
	}

	var d document.ArcData
	if len(obj.Data) > 0 {
		// a malformed stored payload is replaced outright
		_ = json.Unmarshal(obj.Data, &d)
	}
	if err := json.Unmarshal(op.Arc, &d); err != nil {
		return fmt.Errorf("invalid arc: %w", err)
	}
	if err := shape.Validate(d.Params()); err != nil {
		return err
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode arc data: %w", err)
	}
	obj.Data = data
	ds.doc.Objects[op.ObjectID] = obj
	return nil
}

func (ds *DocumentState) applySceneUpdate(op Operation) error {
	scene, ok := ds.doc.Scenes[op.SceneID]
	if !ok {
		return fmt.Errorf("scene not found: %s", op.SceneID)
	}

	root := scene.Root
	if err := json.Unmarshal(op.Changes, &scene); err != nil {
		return fmt.Errorf("invalid scene changes: %w", err)
	}
	// identity fields are not editable
	scene.ID = op.SceneID
	scene.Root = root
	if scene.Width <= 0 || scene.Height <= 0 {
		return fmt.Errorf("invalid scene size %dx%d", scene.Width, scene.Height)
	}

	ds.doc.Scenes[op.SceneID] = scene
	return nil
}

func (ds *DocumentState) applyProjectRename(op Operation) error {
	if op.Name == "" {
		return errors.New("project name is required")
	}
	ds.doc.Project.Name = op.Name
	return nil
}

func (ds *DocumentState) isSceneRoot(id string) bool {
	for _, s := range ds.doc.Scenes {
		if s.Root == id {
			return true
		}
	}
	return false
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
