package engine

import (
	"honnef.co/go/curve"

	"github.com/inamate/arcsegment/internal/document"
)

// BuildSceneGraph builds a render-ready scene graph from the given scene.
// Arc geometry is resolved through arcs, which outlives the graph; arcs whose
// objects are gone from the scene are evicted.
func BuildSceneGraph(doc *document.InDocument, sceneID string, arcs *ArcCache) *SceneGraph {
	sg := NewSceneGraph()

	scene, ok := doc.Scenes[sceneID]
	if !ok {
		return sg
	}

	rootObj, ok := doc.Objects[scene.Root]
	if !ok {
		return sg
	}

	sg.Root = buildNode(doc, &rootObj, nil, curve.Identity, 1.0, sg, arcs)
	sg.Dirty = false

	if arcs != nil {
		arcs.Retain(sg.NodesById)
	}
	return sg
}

// buildNode recursively builds a SceneNode from a document ObjectNode.
func buildNode(
	doc *document.InDocument,
	obj *document.ObjectNode,
	parent *SceneNode,
	parentWorld curve.Affine,
	parentOpacity float64,
	sg *SceneGraph,
	arcs *ArcCache,
) *SceneNode {
	if !obj.Visible {
		return nil
	}

	local := FromTransform(obj.Transform)
	world := parentWorld.Mul(local)
	opacity := parentOpacity * obj.Style.Opacity

	node := &SceneNode{
		ID:             obj.ID,
		Type:           mapObjectType(obj.Type),
		LocalTransform: local,
		WorldTransform: world,
		Opacity:        opacity,
		Visible:        true,
		Parent:         parent,
		Fill:           obj.Style.Fill,
		Stroke:         obj.Style.Stroke,
		StrokeWidth:    obj.Style.StrokeWidth,
	}

	switch obj.Type {
	case document.ObjectTypeShapeRect:
		node.Path = generateRectPath(obj.Data)
		node.Bounds = computePathBounds(node.Path, world)

	case document.ObjectTypeShapeEllipse:
		node.Path = generateEllipsePath(obj.Data)
		node.Bounds = computePathBounds(node.Path, world)

	case document.ObjectTypeVectorPath:
		node.Path = extractVectorPath(obj.Data)
		node.Bounds = computePathBounds(node.Path, world)

	case document.ObjectTypeShapeArc:
		if arcs == nil {
			break
		}
		// An invalid payload renders nothing rather than failing the frame.
		d, err := document.ParseArcData(obj.Data)
		if err != nil {
			break
		}
		seg, path, err := arcs.Resolve(obj.ID, d)
		if err != nil {
			break
		}
		node.Path = path
		if len(path) > 0 {
			node.Bounds = rectFromCurve(world.TransformRectBoundingBox(seg.Path().Bounds()))
		}
	}

	sg.NodesById[obj.ID] = node

	for _, childID := range obj.Children {
		childObj, ok := doc.Objects[childID]
		if !ok {
			continue
		}

		childNode := buildNode(doc, &childObj, node, world, opacity, sg, arcs)
		if childNode != nil {
			node.Children = append(node.Children, childNode)

			if !childNode.Bounds.IsEmpty() {
				node.Bounds = node.Bounds.Union(childNode.Bounds)
			}
		}
	}

	return node
}

// mapObjectType converts document ObjectType to scene graph type string.
func mapObjectType(objType document.ObjectType) string {
	switch objType {
	case document.ObjectTypeGroup:
		return "group"
	case document.ObjectTypeShapeRect, document.ObjectTypeShapeEllipse, document.ObjectTypeVectorPath:
		return "shape"
	case document.ObjectTypeShapeArc:
		return "arc"
	default:
		return "unknown"
	}
}
