package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novawriterhq/novawriter/internal/models"
)

const documentColumns = `id, user_id, title, content, cursor_position, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var d models.Document
	if err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.Content, &d.CursorPosition,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDocument вставляет новый документ и возвращает его.
func (s *Storage) CreateDocument(ctx context.Context, userID, title, content string) (*models.Document, error) {
	const op = "storage.CreateDocument"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO documents (user_id, title, content)
			  VALUES ($1, $2, $3)
			  RETURNING ` + documentColumns
	doc, err := scanDocument(s.DB.QueryRowContext(ctx, query, userID, title, content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// ListDocuments возвращает документы пользователя, недавно изменённые первыми.
func (s *Storage) ListDocuments(ctx context.Context, userID string) ([]*models.Document, error) {
	const op = "storage.ListDocuments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + documentColumns + `
			  FROM documents
			  WHERE user_id = $1
			  ORDER BY updated_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetDocument возвращает документ по ID в пределах владельца.
// Чужой документ неотличим от несуществующего.
func (s *Storage) GetDocument(ctx context.Context, id, userID string) (*models.Document, error) {
	const op = "storage.GetDocument"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + documentColumns + `
			  FROM documents
			  WHERE id = $1 AND user_id = $2`
	doc, err := scanDocument(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// UpdateDocument применяет частичное обновление: nil-поля остаются
// нетронутыми. updated_at обновляется при любом изменении.
func (s *Storage) UpdateDocument(ctx context.Context, id, userID string, upd models.DocumentUpdate) (*models.Document, error) {
	const op = "storage.UpdateDocument"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE documents
			  SET title = COALESCE($1, title),
			      content = COALESCE($2, content),
			      cursor_position = COALESCE($3, cursor_position),
			      updated_at = now()
			  WHERE id = $4 AND user_id = $5
			  RETURNING ` + documentColumns
	doc, err := scanDocument(s.DB.QueryRowContext(ctx, query,
		upd.Title, upd.Content, upd.CursorPosition, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// DeleteDocument удаляет документ в пределах владельца.
func (s *Storage) DeleteDocument(ctx context.Context, id, userID string) error {
	const op = "storage.DeleteDocument"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM documents WHERE id = $1 AND user_id = $2`
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
