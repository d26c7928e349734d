package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novawriterhq/novawriter/internal/models"
)

const chapterColumns = `c.id, c.project_id, c.title, c.content, c.cursor_position,
		c.order_index, c.created_at, c.updated_at`

func scanChapter(row interface{ Scan(...any) error }) (*models.Chapter, error) {
	var c models.Chapter
	if err := row.Scan(&c.ID, &c.ProjectID, &c.Title, &c.Content, &c.CursorPosition,
		&c.OrderIndex, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChapter вставляет главу, если проект принадлежит пользователю.
// Для чужого проекта возвращает ErrNotFound.
func (s *Storage) CreateChapter(ctx context.Context, userID string, req models.DummyChapter) (*models.Chapter, error) {
	const op = "storage.CreateChapter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO chapters (project_id, title, content, order_index)
			  SELECT $1, $2, $3, $4
			  WHERE EXISTS (SELECT 1 FROM projects WHERE id = $1 AND user_id = $5)
			  RETURNING id, project_id, title, content, cursor_position, order_index, created_at, updated_at`
	chapter, err := scanChapter(s.DB.QueryRowContext(ctx, query,
		req.ProjectID, req.Title, req.Content, req.OrderIndex, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return chapter, nil
}

// ListChapters возвращает главы проекта пользователя по порядку следования.
func (s *Storage) ListChapters(ctx context.Context, projectID, userID string) ([]*models.Chapter, error) {
	const op = "storage.ListChapters"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + chapterColumns + `
			  FROM chapters c
			  JOIN projects p ON c.project_id = p.id
			  WHERE c.project_id = $1 AND p.user_id = $2
			  ORDER BY c.order_index, c.created_at`
	rows, err := s.DB.QueryContext(ctx, query, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, chapter)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetChapter возвращает главу по ID; владение проверяется через проект.
func (s *Storage) GetChapter(ctx context.Context, id, userID string) (*models.Chapter, error) {
	const op = "storage.GetChapter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + chapterColumns + `
			  FROM chapters c
			  JOIN projects p ON c.project_id = p.id
			  WHERE c.id = $1 AND p.user_id = $2`
	chapter, err := scanChapter(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return chapter, nil
}

// UpdateChapter применяет частичное обновление главы.
func (s *Storage) UpdateChapter(ctx context.Context, id, userID string, upd models.ChapterUpdate) (*models.Chapter, error) {
	const op = "storage.UpdateChapter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE chapters c
			  SET title = COALESCE($1, c.title),
			      content = COALESCE($2, c.content),
			      cursor_position = COALESCE($3, c.cursor_position),
			      order_index = COALESCE($4, c.order_index),
			      updated_at = now()
			  FROM projects p
			  WHERE c.id = $5 AND c.project_id = p.id AND p.user_id = $6
			  RETURNING ` + chapterColumns
	chapter, err := scanChapter(s.DB.QueryRowContext(ctx, query,
		upd.Title, upd.Content, upd.CursorPosition, upd.OrderIndex, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return chapter, nil
}

// DeleteChapter удаляет главу; владение проверяется через проект.
func (s *Storage) DeleteChapter(ctx context.Context, id, userID string) error {
	const op = "storage.DeleteChapter"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM chapters c
			  USING projects p
			  WHERE c.id = $1 AND c.project_id = p.id AND p.user_id = $2`
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
