package db

import (
	"context"
)

const createSnapshot = `INSERT INTO snapshots (id, project_id, version, document)
VALUES ($1, $2, $3, $4)
RETURNING id, project_id, version, document, created_at`

type CreateSnapshotParams struct {
	ID        string
	ProjectID string
	Version   int32
	Document  []byte
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (Snapshot, error) {
	row := q.db.QueryRow(ctx, createSnapshot, arg.ID, arg.ProjectID, arg.Version, arg.Document)
	var i Snapshot
	err := row.Scan(&i.ID, &i.ProjectID, &i.Version, &i.Document, &i.CreatedAt)
	return i, err
}

const getLatestSnapshot = `SELECT id, project_id, version, document, created_at
FROM snapshots WHERE project_id = $1
ORDER BY version DESC
LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context, projectID string) (Snapshot, error) {
	row := q.db.QueryRow(ctx, getLatestSnapshot, projectID)
	var i Snapshot
	err := row.Scan(&i.ID, &i.ProjectID, &i.Version, &i.Document, &i.CreatedAt)
	return i, err
}
