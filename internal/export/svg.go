package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strconv"

	"honnef.co/go/curve"

	"github.com/inamate/arcsegment/internal/document"
	"github.com/inamate/arcsegment/internal/engine"
)

// Options controls SVG output.
type Options struct {
	// Precision caps the decimals of path coordinates; 0 writes them exactly.
	Precision int
}

// SVG writes a standalone SVG document for the scene graph. Paths are baked
// into world space, so no transform attributes are emitted.
func SVG(w io.Writer, sg *engine.SceneGraph, scene document.Scene, opts Options) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		scene.Width, scene.Height, scene.Width, scene.Height)
	if scene.Background != "" {
		fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(scene.Background))
	}

	if sg != nil && sg.Root != nil {
		if err := writeNode(bw, sg.Root, curve.SVGOptions{MaxPrecision: opts.Precision}); err != nil {
			return fmt.Errorf("write svg path: %w", err)
		}
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

// writeNode emits nodes in painter's order, like engine.CompileDrawCommands.
func writeNode(w *bufio.Writer, node *engine.SceneNode, opts curve.SVGOptions) error {
	if node == nil || !node.Visible {
		return nil
	}

	if bp := engine.CommandsToBezPath(node.Path); len(bp) > 0 {
		fmt.Fprintf(w, `<path id="%s" d="`, html.EscapeString(node.ID))
		if err := bp.Transform(node.WorldTransform).WriteSVG(w, opts); err != nil {
			return err
		}
		w.WriteString(`"`)
		writeStyle(w, node)
		w.WriteString("/>\n")
	}

	for _, child := range node.Children {
		if err := writeNode(w, child, opts); err != nil {
			return err
		}
	}
	return nil
}

func writeStyle(w *bufio.Writer, node *engine.SceneNode) {
	fill := node.Fill
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(w, ` fill="%s"`, html.EscapeString(fill))

	if node.Stroke != "" && node.StrokeWidth > 0 {
		fmt.Fprintf(w, ` stroke="%s" stroke-width="%s"`,
			html.EscapeString(node.Stroke), strconv.FormatFloat(node.StrokeWidth, 'f', -1, 64))
	}
	if node.Opacity < 1 {
		fmt.Fprintf(w, ` opacity="%s"`, strconv.FormatFloat(node.Opacity, 'f', -1, 64))
	}
}
