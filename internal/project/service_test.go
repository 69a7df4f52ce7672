package project

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/arcsegment/internal/auth"
	"github.com/inamate/arcsegment/internal/db"
	"github.com/inamate/arcsegment/internal/document"
	"github.com/inamate/arcsegment/internal/engine"
	"github.com/inamate/arcsegment/internal/export"
)

type memStore struct {
	projects  map[string]db.Project
	snapshots map[string][]db.Snapshot
}

func newMemStore() *memStore {
	return &memStore{
		projects:  make(map[string]db.Project),
		snapshots: make(map[string][]db.Snapshot),
	}
}

func (m *memStore) CreateProject(_ context.Context, arg db.CreateProjectParams) (db.Project, error) {
	p := db.Project{ID: arg.ID, Name: arg.Name, OwnerID: arg.OwnerID, Width: 1280, Height: 720}
	m.projects[p.ID] = p
	return p, nil
}

func (m *memStore) GetProject(_ context.Context, id string) (db.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return db.Project{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *memStore) ListProjectsForOwner(_ context.Context, ownerID string) ([]db.Project, error) {
	var out []db.Project
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) RenameProject(_ context.Context, arg db.RenameProjectParams) error {
	p := m.projects[arg.ID]
	p.Name = arg.Name
	m.projects[arg.ID] = p
	return nil
}

func (m *memStore) DeleteProject(_ context.Context, id string) error {
	delete(m.projects, id)
	delete(m.snapshots, id)
	return nil
}

func (m *memStore) CreateSnapshot(_ context.Context, arg db.CreateSnapshotParams) (db.Snapshot, error) {
	s := db.Snapshot{ID: arg.ID, ProjectID: arg.ProjectID, Version: arg.Version, Document: arg.Document}
	m.snapshots[arg.ProjectID] = append(m.snapshots[arg.ProjectID], s)
	return s, nil
}

func (m *memStore) GetLatestSnapshot(_ context.Context, projectID string) (db.Snapshot, error) {
	snaps := m.snapshots[projectID]
	if len(snaps) == 0 {
		return db.Snapshot{}, pgx.ErrNoRows
	}
	return snaps[len(snaps)-1], nil
}

func TestProjectLifecycle(t *testing.T) {
	store := newMemStore()
	s := NewService(store, 36)
	ctx := context.Background()

	p, err := s.Create(ctx, "Charts", "user_a")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.ID, "proj_"))

	_, err = s.Get(ctx, p.ID, "user_b")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.Get(ctx, "proj_missing", "user_a")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.List(ctx, "user_a")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	doc, err := s.LoadDocument(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Charts", doc.Project.Name)

	require.NoError(t, s.SaveDocument(ctx, p.ID, document.NewSampleDocument(p.ID)))
	assert.EqualValues(t, 2, store.snapshots[p.ID][1].Version)

	cmds, err := s.Render(ctx, p.ID, "user_a")
	require.NoError(t, err)
	assert.Len(t, cmds, 8)

	var sb strings.Builder
	require.NoError(t, s.ExportSVG(ctx, p.ID, "user_a", &sb, export.Options{Precision: 2}))
	assert.Equal(t, 8, strings.Count(sb.String(), "<path "))

	require.NoError(t, s.Rename(ctx, p.ID, "Rings"))
	got, err := s.Get(ctx, p.ID, "user_a")
	require.NoError(t, err)
	assert.Equal(t, "Rings", got.Name)

	assert.ErrorIs(t, s.Delete(ctx, p.ID, "user_b"), ErrForbidden)
	require.NoError(t, s.Delete(ctx, p.ID, "user_a"))
	_, err = s.LoadDocument(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandlerRender(t *testing.T) {
	s := NewService(newMemStore(), 36)
	h := NewHandler(s, 3)
	ctx := context.Background()
	p, err := s.Create(ctx, "Empty", "user_a")
	require.NoError(t, err)

	serve := func(fn http.HandlerFunc, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/projects/"+p.ID, nil)
		req = mux.SetURLVars(req, map[string]string{"projectId": p.ID})
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		fn(rec, req)
		return rec
	}

	rec := serve(h.Render, "user_a")
	require.Equal(t, http.StatusOK, rec.Code)
	var cmds []engine.DrawCommand
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cmds))
	assert.Empty(t, cmds)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(h.ExportSVG, "user_a")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusForbidden, serve(h.Render, "user_b").Code)
	assert.Equal(t, http.StatusForbidden, serve(h.Get, "user_b").Code)
	assert.Equal(t, http.StatusNoContent, serve(h.Delete, "user_a").Code)
	assert.Equal(t, http.StatusNotFound, serve(h.GetLatestSnapshot, "user_a").Code)
}
