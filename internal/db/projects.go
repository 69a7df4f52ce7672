package db

import (
	"context"
)

const createProject = `INSERT INTO projects (id, name, owner_id)
VALUES ($1, $2, $3)
RETURNING id, name, owner_id, width, height, created_at, updated_at`

type CreateProjectParams struct {
	ID      string
	Name    string
	OwnerID string
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, createProject, arg.ID, arg.Name, arg.OwnerID)
	var i Project
	err := row.Scan(&i.ID, &i.Name, &i.OwnerID, &i.Width, &i.Height, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getProject = `SELECT id, name, owner_id, width, height, created_at, updated_at
FROM projects WHERE id = $1`

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	row := q.db.QueryRow(ctx, getProject, id)
	var i Project
	err := row.Scan(&i.ID, &i.Name, &i.OwnerID, &i.Width, &i.Height, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listProjectsForOwner = `SELECT id, name, owner_id, width, height, created_at, updated_at
FROM projects WHERE owner_id = $1
ORDER BY updated_at DESC`

func (q *Queries) ListProjectsForOwner(ctx context.Context, ownerID string) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjectsForOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Project
	for rows.Next() {
		var i Project
		if err := rows.Scan(&i.ID, &i.Name, &i.OwnerID, &i.Width, &i.Height, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const renameProject = `UPDATE projects SET name = $2, updated_at = now() WHERE id = $1`

type RenameProjectParams struct {
	ID   string
	Name string
}

func (q *Queries) RenameProject(ctx context.Context, arg RenameProjectParams) error {
	_, err := q.db.Exec(ctx, renameProject, arg.ID, arg.Name)
	return err
}

const deleteProject = `DELETE FROM projects WHERE id = $1`

func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteProject, id)
	return err
}
