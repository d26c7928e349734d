package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/novawriterhq/novawriter/internal/models"
)

// saveAuditTx пишет запись журнала аудита внутри открытой транзакции.
// Пустые UserID, PerformedBy и EntityID превращаются в NULL.
func saveAuditTx(ctx context.Context, tx *sql.Tx, entry models.AuditEntry) error {
	query := `INSERT INTO audit_logs (user_id, performed_by, action, entity_type, entity_id, details)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := tx.ExecContext(ctx, query,
		nullIfEmpty(entry.UserID), nullIfEmpty(entry.PerformedBy),
		entry.Action, entry.EntityType, nullIfEmpty(entry.EntityID), entry.Details)
	return err
}

// SaveAudit пишет одиночную запись журнала аудита вне транзакций.
// Используется для событий, не сопровождающих изменение данных,
// например для заблокированных попыток удаления.
func (s *Storage) SaveAudit(ctx context.Context, entry models.AuditEntry) error {
	const op = "storage.SaveAudit"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO audit_logs (user_id, performed_by, action, entity_type, entity_id, details)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		nullIfEmpty(entry.UserID), nullIfEmpty(entry.PerformedBy),
		entry.Action, entry.EntityType, nullIfEmpty(entry.EntityID), entry.Details)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

const auditColumns = `id, user_id, performed_by, action, entity_type, entity_id, details, created_at`

func scanAuditLog(rows *sql.Rows) (*models.AuditLog, error) {
	var item models.AuditLog
	var userID, performedBy, entityID sql.NullString
	if err := rows.Scan(&item.ID, &userID, &performedBy, &item.Action,
		&item.EntityType, &entityID, &item.Details, &item.CreatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		item.UserID = &userID.String
	}
	if performedBy.Valid {
		item.PerformedBy = &performedBy.String
	}
	if entityID.Valid {
		item.EntityID = &entityID.String
	}
	return &item, nil
}

// ListAuditLogs возвращает записи журнала аудита, новые первыми.
func (s *Storage) ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	const op = "storage.ListAuditLogs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + auditColumns + `
			  FROM audit_logs
			  ORDER BY created_at DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AuditLog
	for rows.Next() {
		item, err := scanAuditLog(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAuditLogsForUser возвращает записи журнала по одному пользователю.
func (s *Storage) ListAuditLogsForUser(ctx context.Context, userID string, limit int) ([]*models.AuditLog, error) {
	const op = "storage.ListAuditLogsForUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + auditColumns + `
			  FROM audit_logs
			  WHERE user_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AuditLog
	for rows.Next() {
		item, err := scanAuditLog(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
