package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novawriterhq/novawriter/internal/models"
)

const sampleColumns = `id, user_id, title, content, word_count, created_at`

func scanSample(row interface{ Scan(...any) error }) (*models.WritingSample, error) {
	var ws models.WritingSample
	if err := row.Scan(&ws.ID, &ws.UserID, &ws.Title, &ws.Content,
		&ws.WordCount, &ws.CreatedAt); err != nil {
		return nil, err
	}
	return &ws, nil
}

// CreateSample сохраняет образец текста с заранее посчитанным числом слов.
func (s *Storage) CreateSample(ctx context.Context, userID, title, content string, wordCount int) (*models.WritingSample, error) {
	const op = "storage.CreateSample"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO writing_samples (user_id, title, content, word_count)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + sampleColumns
	sample, err := scanSample(s.DB.QueryRowContext(ctx, query, userID, title, content, wordCount))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sample, nil
}

// ListSamples возвращает образцы текста пользователя, новые первыми.
func (s *Storage) ListSamples(ctx context.Context, userID string) ([]*models.WritingSample, error) {
	const op = "storage.ListSamples"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + sampleColumns + `
			  FROM writing_samples
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.WritingSample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sample)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetSample возвращает образец текста по ID в пределах владельца.
func (s *Storage) GetSample(ctx context.Context, id, userID string) (*models.WritingSample, error) {
	const op = "storage.GetSample"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + sampleColumns + `
			  FROM writing_samples
			  WHERE id = $1 AND user_id = $2`
	sample, err := scanSample(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sample, nil
}

// DeleteSample удаляет образец текста в пределах владельца.
func (s *Storage) DeleteSample(ctx context.Context, id, userID string) error {
	const op = "storage.DeleteSample"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM writing_samples WHERE id = $1 AND user_id = $2`
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
