package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novawriterhq/novawriter/internal/models"
)

const styleProfileColumns = `id, user_id, style_analysis, tone, vocabulary,
		sentence_structure, pacing, created_at, updated_at`

func scanStyleProfile(row interface{ Scan(...any) error }) (*models.StyleProfile, error) {
	var sp models.StyleProfile
	if err := row.Scan(&sp.ID, &sp.UserID, &sp.StyleAnalysis, &sp.Tone, &sp.Vocabulary,
		&sp.SentenceStructure, &sp.Pacing, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
		return nil, err
	}
	return &sp, nil
}

// UpsertStyleProfile сохраняет профиль стиля пользователя. Повторный
// анализ перезаписывает существующий профиль, а не создаёт новый.
func (s *Storage) UpsertStyleProfile(ctx context.Context, userID string, data models.StyleProfileData) (*models.StyleProfile, error) {
	const op = "storage.UpsertStyleProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO style_profiles (user_id, style_analysis, tone, vocabulary, sentence_structure, pacing)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_id) DO UPDATE
			  SET style_analysis = EXCLUDED.style_analysis,
			      tone = EXCLUDED.tone,
			      vocabulary = EXCLUDED.vocabulary,
			      sentence_structure = EXCLUDED.sentence_structure,
			      pacing = EXCLUDED.pacing,
			      updated_at = now()
			  RETURNING ` + styleProfileColumns
	profile, err := scanStyleProfile(s.DB.QueryRowContext(ctx, query,
		userID, data.StyleAnalysis, data.Tone, data.Vocabulary, data.SentenceStructure, data.Pacing))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// GetStyleProfile возвращает профиль стиля пользователя.
func (s *Storage) GetStyleProfile(ctx context.Context, userID string) (*models.StyleProfile, error) {
	const op = "storage.GetStyleProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + styleProfileColumns + `
			  FROM style_profiles
			  WHERE user_id = $1`
	profile, err := scanStyleProfile(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// DeleteStyleProfile удаляет профиль стиля пользователя.
func (s *Storage) DeleteStyleProfile(ctx context.Context, userID string) error {
	const op = "storage.DeleteStyleProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM style_profiles WHERE user_id = $1`
	res, err := s.DB.ExecContext(ctx, query, userID)
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
