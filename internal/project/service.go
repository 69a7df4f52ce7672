package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/arcsegment/internal/db"
	"github.com/inamate/arcsegment/internal/document"
	"github.com/inamate/arcsegment/internal/engine"
	"github.com/inamate/arcsegment/internal/export"
	"github.com/inamate/arcsegment/internal/typeid"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrForbidden = errors.New("forbidden")
)

// Store is the subset of db.Queries the service needs.
type Store interface {
	CreateProject(ctx context.Context, arg db.CreateProjectParams) (db.Project, error)
	GetProject(ctx context.Context, id string) (db.Project, error)
	ListProjectsForOwner(ctx context.Context, ownerID string) ([]db.Project, error)
	RenameProject(ctx context.Context, arg db.RenameProjectParams) error
	DeleteProject(ctx context.Context, id string) error
	CreateSnapshot(ctx context.Context, arg db.CreateSnapshotParams) (db.Snapshot, error)
	GetLatestSnapshot(ctx context.Context, projectID string) (db.Snapshot, error)
}

type Service struct {
	store         Store
	arcResolution int
}

// NewService creates a project service. arcResolution is the vertex count
// used when rendering arcs that do not specify one.
func NewService(store Store, arcResolution int) *Service {
	return &Service{store: store, arcResolution: arcResolution}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Project, error) {
	projectID := typeid.NewProjectID()

	dbProj, err := s.store.CreateProject(ctx, db.CreateProjectParams{
		ID:      projectID,
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	// Seed empty document snapshot
	emptyDoc := document.NewEmptyDocument(projectID, name, typeid.NewSceneID(), typeid.NewObjectID())
	docJSON, err := json.Marshal(emptyDoc)
	if err != nil {
		return nil, fmt.Errorf("marshal empty document: %w", err)
	}

	_, err = s.store.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   1,
		Document:  docJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return dbProjectToProject(dbProj), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	dbProj, err := s.owned(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return dbProjectToProject(dbProj), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	dbProjects, err := s.store.ListProjectsForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(dbProjects))
	for i, p := range dbProjects {
		projects[i] = *dbProjectToProject(p)
	}
	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return err
	}
	return s.store.DeleteProject(ctx, projectID)
}

// Rename updates the stored project name. Access is checked by the caller.
func (s *Service) Rename(ctx context.Context, projectID, name string) error {
	if err := s.store.RenameProject(ctx, db.RenameProjectParams{ID: projectID, Name: name}); err != nil {
		return fmt.Errorf("rename project: %w", err)
	}
	return nil
}

// CanAccess reports whether userID may open projectID.
func (s *Service) CanAccess(ctx context.Context, projectID, userID string) error {
	_, err := s.owned(ctx, projectID, userID)
	return err
}

func (s *Service) GetLatestSnapshot(ctx context.Context, projectID, userID string) (json.RawMessage, error) {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	return snap.Document, nil
}

// LoadDocument decodes the latest snapshot of a project.
func (s *Service) LoadDocument(ctx context.Context, projectID string) (*document.InDocument, error) {
	snap, err := s.store.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	var doc document.InDocument
	if err := json.Unmarshal(snap.Document, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return &doc, nil
}

// SaveDocument stores doc as the next snapshot version.
func (s *Service) SaveDocument(ctx context.Context, projectID string, doc *document.InDocument) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	nextVersion := int32(1)
	current, err := s.store.GetLatestSnapshot(ctx, projectID)
	switch {
	case err == nil:
		nextVersion = current.Version + 1
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("get snapshot: %w", err)
	}

	_, err = s.store.CreateSnapshot(ctx, db.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   nextVersion,
		Document:  docJSON,
	})
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return nil
}

// Render compiles the latest snapshot to draw commands.
func (s *Service) Render(ctx context.Context, projectID, userID string) ([]engine.DrawCommand, error) {
	e, err := s.engineFor(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return e.RenderCommands(), nil
}

// ExportSVG writes the latest snapshot's first scene as SVG.
func (s *Service) ExportSVG(ctx context.Context, projectID, userID string, w io.Writer, opts export.Options) error {
	e, err := s.engineFor(ctx, projectID, userID)
	if err != nil {
		return err
	}
	scene, ok := e.Scene()
	if !ok {
		return fmt.Errorf("export project %s: %w", projectID, engine.ErrSceneNotFound)
	}
	return export.SVG(w, e.SceneGraph(), scene, opts)
}

func (s *Service) engineFor(ctx context.Context, projectID, userID string) (*engine.Engine, error) {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return nil, err
	}
	doc, err := s.LoadDocument(ctx, projectID)
	if err != nil {
		return nil, err
	}
	e := engine.NewEngine()
	e.SetDefaultResolution(s.arcResolution)
	e.SetDocument(doc)
	return e, nil
}

func (s *Service) owned(ctx context.Context, projectID, userID string) (db.Project, error) {
	if typeid.Validate(projectID, typeid.PrefixProject) != nil {
		return db.Project{}, ErrNotFound
	}
	dbProj, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return db.Project{}, ErrNotFound
		}
		return db.Project{}, fmt.Errorf("get project: %w", err)
	}
	if dbProj.OwnerID != userID {
		return db.Project{}, ErrForbidden
	}
	return dbProj, nil
}

func dbProjectToProject(p db.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		Width:     int(p.Width),
		Height:    int(p.Height),
		CreatedAt: p.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: p.UpdatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
}
