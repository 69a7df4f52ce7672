package export

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/inamate/arcsegment/internal/engine"
)

const maxDocumentSize = 10 << 20 // 10MB

type Handler struct {
	defaultResolution int
	precision         int
}

func NewHandler(defaultResolution, precision int) *Handler {
	return &Handler{defaultResolution: defaultResolution, precision: precision}
}

// ExportSVG renders a posted document to SVG. The optional "scene" query
// parameter picks a scene other than the first and "precision" overrides
// the configured coordinate precision.
func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "invalid document", http.StatusBadRequest)
		return
	}

	e := engine.NewEngine()
	e.SetDefaultResolution(h.defaultResolution)
	if err := e.LoadDocument(string(raw)); err != nil {
		http.Error(w, "invalid document", http.StatusBadRequest)
		return
	}
	if sceneID := r.URL.Query().Get("scene"); sceneID != "" {
		if err := e.SetScene(sceneID); err != nil {
			http.Error(w, "scene not found", http.StatusNotFound)
			return
		}
	}

	opts := Options{Precision: h.precision}
	if p := r.URL.Query().Get("precision"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 17 {
			http.Error(w, "invalid precision", http.StatusBadRequest)
			return
		}
		opts.Precision = n
	}

	if err := Render(w, e, opts); err != nil {
		slog.Error("svg export", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Render writes the engine's current scene as an SVG response.
func Render(w http.ResponseWriter, e *engine.Engine, opts Options) error {
	scene, ok := e.Scene()
	if !ok {
		http.Error(w, "document has no scene", http.StatusUnprocessableEntity)
		return nil
	}

	var buf bytes.Buffer
	if err := SVG(&buf, e.SceneGraph(), scene, opts); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
