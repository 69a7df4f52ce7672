package engine

import (
	"github.com/inamate/arcsegment/internal/document"
	"github.com/inamate/arcsegment/internal/shape"
)

type cachedArc struct {
	segment *shape.ArcSegment
	path    []PathCommand
}

// ArcCache keeps one ArcSegment per ShapeArc object across scene graph
// rebuilds, so an arc whose parameters did not change is never re-traced.
// It is not safe for concurrent use.
type ArcCache struct {
	// DefaultResolution replaces a zero ArcData.Resolution when positive.
	DefaultResolution int

	arcs     map[string]*cachedArc
	rebuilds int
}

// NewArcCache creates an empty cache.
func NewArcCache() *ArcCache {
	return &ArcCache{arcs: make(map[string]*cachedArc)}
}

// Resolve returns the segment for objectID configured with d, rebuilding its
// anchors only if d differs from what the segment last traced. A change of
// resolution allocates a fresh segment since vertex buffers never resize.
func (c *ArcCache) Resolve(objectID string, d document.ArcData) (*shape.ArcSegment, []PathCommand, error) {
	if d.Resolution == 0 && c.DefaultResolution > 0 {
		d.Resolution = c.DefaultResolution
	}
	params := d.Params()

	entry, ok := c.arcs[objectID]
	if ok && entry.segment.Params().VertexCount == params.VertexCount {
		entry.segment.SetParams(params)
		if entry.segment.Dirty() {
			entry.segment.Update()
			entry.path = nil
		}
	} else {
		// NewArcSegment traces the anchors itself
		seg, err := shape.NewArcSegment(params)
		if err != nil {
			return nil, nil, err
		}
		entry = &cachedArc{segment: seg}
		c.arcs[objectID] = entry
	}

	if entry.path == nil {
		entry.path = bezPathToCommands(entry.segment.Path().BezPath())
		c.rebuilds++
	}
	return entry.segment, entry.path, nil
}

// FlagReset ends a render pass: every cached segment is marked clean.
func (c *ArcCache) FlagReset() {
	for _, entry := range c.arcs {
		entry.segment.FlagReset()
	}
}

// Retain drops every cached arc whose id is not in live.
func (c *ArcCache) Retain(live map[string]*SceneNode) {
	for id := range c.arcs {
		if _, ok := live[id]; !ok {
			delete(c.arcs, id)
		}
	}
}

// Len returns the number of cached arcs.
func (c *ArcCache) Len() int {
	return len(c.arcs)
}

// Rebuilds returns how many times an arc was re-traced since creation.
func (c *ArcCache) Rebuilds() int {
	return c.rebuilds
}
