package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novawriterhq/novawriter/internal/models"
)

const projectColumns = `id, user_id, title, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject вставляет новый проект и возвращает его.
func (s *Storage) CreateProject(ctx context.Context, userID, title string) (*models.Project, error) {
	const op = "storage.CreateProject"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO projects (user_id, title)
			  VALUES ($1, $2)
			  RETURNING ` + projectColumns
	project, err := scanProject(s.DB.QueryRowContext(ctx, query, userID, title))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return project, nil
}

// ListProjects возвращает проекты пользователя, недавно изменённые первыми.
func (s *Storage) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	const op = "storage.ListProjects"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + projectColumns + `
			  FROM projects
			  WHERE user_id = $1
			  ORDER BY updated_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, project)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetProject возвращает проект по ID в пределах владельца.
func (s *Storage) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	const op = "storage.GetProject"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + projectColumns + `
			  FROM projects
			  WHERE id = $1 AND user_id = $2`
	project, err := scanProject(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return project, nil
}

// UpdateProject применяет частичное обновление проекта.
func (s *Storage) UpdateProject(ctx context.Context, id, userID string, upd models.ProjectUpdate) (*models.Project, error) {
	const op = "storage.UpdateProject"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE projects
			  SET title = COALESCE($1, title),
			      updated_at = now()
			  WHERE id = $2 AND user_id = $3
			  RETURNING ` + projectColumns
	project, err := scanProject(s.DB.QueryRowContext(ctx, query, upd.Title, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return project, nil
}

// DeleteProject удаляет проект вместе с его главами (FK CASCADE).
func (s *Storage) DeleteProject(ctx context.Context, id, userID string) error {
	const op = "storage.DeleteProject"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM projects WHERE id = $1 AND user_id = $2`
	res, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
