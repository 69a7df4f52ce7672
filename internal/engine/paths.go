package engine

import (
	"encoding/json"

	"honnef.co/go/curve"
)

// generateRectPath generates path commands for a rectangle.
func generateRectPath(data json.RawMessage) []PathCommand {
	var rectData struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &rectData); err != nil {
		return nil
	}

	w, h := rectData.Width, rectData.Height
	return []PathCommand{
		{"M", 0.0, 0.0},
		{"L", w, 0.0},
		{"L", w, h},
		{"L", 0.0, h},
		{"Z"},
	}
}

// generateEllipsePath generates path commands for an ellipse using bezier curves.
func generateEllipsePath(data json.RawMessage) []PathCommand {
	var ellipseData struct {
		RX float64 `json:"rx"`
		RY float64 `json:"ry"`
	}
	if err := json.Unmarshal(data, &ellipseData); err != nil {
		return nil
	}

	rx, ry := ellipseData.RX, ellipseData.RY

	// k = 4 * (sqrt(2) - 1) / 3
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	return []PathCommand{
		{"M", rx, 0.0},
		{"C", rx, ky, kx, ry, 0.0, ry},
		{"C", -kx, ry, -rx, ky, -rx, 0.0},
		{"C", -rx, -ky, -kx, -ry, 0.0, -ry},
		{"C", kx, -ry, rx, -ky, rx, 0.0},
		{"Z"},
	}
}

// extractVectorPath extracts path commands from a VectorPath's data.
func extractVectorPath(data json.RawMessage) []PathCommand {
	var pathData struct {
		Commands [][]interface{} `json:"commands"`
	}
	if err := json.Unmarshal(data, &pathData); err != nil {
		return nil
	}

	result := make([]PathCommand, len(pathData.Commands))
	for i, cmd := range pathData.Commands {
		result[i] = PathCommand(cmd)
	}
	return result
}

// bezPathToCommands flattens a Bezier path into Canvas2D commands.
func bezPathToCommands(bp curve.BezPath) []PathCommand {
	cmds := make([]PathCommand, 0, len(bp))
	for _, el := range bp {
		switch el.Kind {
		case curve.MoveToKind:
			cmds = append(cmds, PathCommand{"M", el.P0.X, el.P0.Y})
		case curve.LineToKind:
			cmds = append(cmds, PathCommand{"L", el.P0.X, el.P0.Y})
		case curve.QuadToKind:
			cmds = append(cmds, PathCommand{"Q", el.P0.X, el.P0.Y, el.P1.X, el.P1.Y})
		case curve.CubicToKind:
			cmds = append(cmds, PathCommand{"C", el.P0.X, el.P0.Y, el.P1.X, el.P1.Y, el.P2.X, el.P2.Y})
		case curve.ClosePathKind:
			cmds = append(cmds, PathCommand{"Z"})
		}
	}
	return cmds
}

// CommandsToBezPath parses Canvas2D commands back into a Bezier path.
// Malformed commands are skipped.
func CommandsToBezPath(cmds []PathCommand) curve.BezPath {
	var bp curve.BezPath
	pt := func(cmd PathCommand, i int) curve.Point {
		return curve.Pt(toFloat64(cmd[i]), toFloat64(cmd[i+1]))
	}
	for _, cmd := range cmds {
		if len(cmd) == 0 {
			continue
		}
		op, ok := cmd[0].(string)
		if !ok {
			continue
		}

		switch {
		case op == "M" && len(cmd) >= 3:
			bp.MoveTo(pt(cmd, 1))
		case op == "L" && len(cmd) >= 3:
			if len(bp) == 0 {
				bp.MoveTo(pt(cmd, 1))
				continue
			}
			bp.LineTo(pt(cmd, 1))
		case op == "Q" && len(cmd) >= 5:
			if len(bp) == 0 {
				bp.MoveTo(pt(cmd, 3))
				continue
			}
			bp.QuadTo(pt(cmd, 1), pt(cmd, 3))
		case op == "C" && len(cmd) >= 7:
			if len(bp) == 0 {
				bp.MoveTo(pt(cmd, 5))
				continue
			}
			bp.CubicTo(pt(cmd, 1), pt(cmd, 3), pt(cmd, 5))
		case op == "Z":
			if len(bp) > 0 {
				bp.ClosePath()
			}
		}
	}
	return bp
}

// computePathBounds computes the axis-aligned bounding box of a path in world space.
func computePathBounds(path []PathCommand, world curve.Affine) Rect {
	bp := CommandsToBezPath(path)
	if !bp.HasSegments() {
		return Rect{}
	}
	return rectFromCurve(bp.Transform(world).BoundingBox())
}

// toFloat64 converts a JSON-decoded coordinate to float64.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
