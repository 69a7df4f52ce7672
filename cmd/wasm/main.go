//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/inamate/arcsegment/internal/document"
	"github.com/inamate/arcsegment/internal/engine"
	"github.com/inamate/arcsegment/internal/export"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("updateDocument", js.FuncOf(updateDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("setScene", js.FuncOf(setScene))
	api.Set("setArc", js.FuncOf(setArc))
	api.Set("setDefaultResolution", js.FuncOf(setDefaultResolution))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	api.Set("render", js.FuncOf(render))
	api.Set("exportSVG", js.FuncOf(exportSVG))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getScene", js.FuncOf(getScene))
	api.Set("getDocument", js.FuncOf(getDocument))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getArcRebuilds", js.FuncOf(getArcRebuilds))

	js.Global().Set("arcEngine", api)
	js.Global().Set("arcWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("document JSON")
	}
	if err := eng.LoadDocument(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func updateDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("document JSON")
	}
	if err := eng.UpdateDocument(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	projectID := "proj_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		projectID = args[0].String()
	}
	eng.LoadSampleDocument(projectID)
	return okResult()
}

func setScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("scene ID")
	}
	if err := eng.SetScene(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// setArc(objectId, arcDataJSON)
func setArc(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("object ID or arc JSON")
	}
	d, err := document.ParseArcData(json.RawMessage(args[1].String()))
	if err != nil {
		return errorResult(err)
	}
	if err := eng.SetArc(args[0].String(), d); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setDefaultResolution(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return missing("resolution")
	}
	eng.SetDefaultResolution(args[0].Int())
	return okResult()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func tick(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Tick())
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

// exportSVG([precision]) returns the current scene as an SVG string.
func exportSVG(this js.Value, args []js.Value) interface{} {
	opts := export.Options{Precision: 3}
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		opts.Precision = args[0].Int()
	}

	scene, ok := eng.Scene()
	if !ok {
		return js.ValueOf("")
	}
	var sb strings.Builder
	if err := export.SVG(&sb, eng.SceneGraph(), scene, opts); err != nil {
		return errorResult(err)
	}
	return js.ValueOf(sb.String())
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getScene(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetScene())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getArcRebuilds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.ArcRebuilds())
}
