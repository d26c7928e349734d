package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novawriterhq/novawriter/internal/models"
)

const characterColumns = `id, user_id, project_id, document_id, name, description, traits,
		created_at, updated_at`

func scanCharacter(row interface{ Scan(...any) error }) (*models.Character, error) {
	var c models.Character
	var projectID, documentID sql.NullString
	if err := row.Scan(&c.ID, &c.UserID, &projectID, &documentID, &c.Name,
		&c.Description, &c.Traits, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if projectID.Valid {
		c.ProjectID = &projectID.String
	}
	if documentID.Valid {
		c.DocumentID = &documentID.String
	}
	return &c, nil
}

// CreateCharacter вставляет нового персонажа и возвращает его.
func (s *Storage) CreateCharacter(ctx context.Context, userID string, req models.DummyCharacter) (*models.Character, error) {
	const op = "storage.CreateCharacter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO characters (user_id, project_id, document_id, name, description, traits)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + characterColumns
	character, err := scanCharacter(s.DB.QueryRowContext(ctx, query,
		userID, req.ProjectID, req.DocumentID, req.Name, req.Description, req.Traits))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return character, nil
}

// ListCharacters возвращает персонажей пользователя. Непустые поля
// фильтра сужают выборку до проекта либо документа.
func (s *Storage) ListCharacters(ctx context.Context, userID string, filter models.CharacterFilter) ([]*models.Character, error) {
	const op = "storage.ListCharacters"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + characterColumns + `
			  FROM characters
			  WHERE user_id = $1
			    AND ($2::uuid IS NULL OR project_id = $2)
			    AND ($3::uuid IS NULL OR document_id = $3)
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, userID, filter.ProjectID, filter.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Character
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, character)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetCharacter возвращает персонажа по ID в пределах владельца.
func (s *Storage) GetCharacter(ctx context.Context, id, userID string) (*models.Character, error) {
	const op = "storage.GetCharacter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + characterColumns + `
			  FROM characters
			  WHERE id = $1 AND user_id = $2`
	character, err := scanCharacter(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return character, nil
}

// UpdateCharacter применяет частичное обновление персонажа.
func (s *Storage) UpdateCharacter(ctx context.Context, id, userID string, upd models.CharacterUpdate) (*models.Character, error) {
	const op = "storage.UpdateCharacter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE characters
			  SET name = COALESCE($1, name),
			      description = COALESCE($2, description),
			      traits = COALESCE($3, traits),
			      updated_at = now()
			  WHERE id = $4 AND user_id = $5
			  RETURNING ` + characterColumns
	character, err := scanCharacter(s.DB.QueryRowContext(ctx, query,
		upd.Name, upd.Description, upd.Traits, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return character, nil
}

// DeleteCharacter удаляет персонажа в пределах владельца.
func (s *Storage) DeleteCharacter(ctx context.Context, id, userID string) error {
	const op = "storage.DeleteCharacter"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM characters WHERE id = $1 AND user_id = $2`
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
