package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/novawriterhq/novawriter/internal/models"
)

const userColumns = `id, email, password_hash, role, subscription_tier,
		payment_customer_id, payment_subscription_id, created_at, deleted_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var customerID, subscriptionID sql.NullString
	var deletedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.SubscriptionTier,
		&customerID, &subscriptionID, &u.CreatedAt, &deletedAt); err != nil {
		return nil, err
	}
	if customerID.Valid {
		u.PaymentCustomerID = &customerID.String
	}
	if subscriptionID.Valid {
		u.PaymentSubscriptionID = &subscriptionID.String
	}
	if deletedAt.Valid {
		u.DeletedAt = &deletedAt.Time
	}
	return u, nil
}

// nullIfEmpty преобразует пустую строку в NULL для nullable-колонок.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RegisterUser сохраняет нового пользователя и запись аудита о создании
// в одной транзакции.
func (s *Storage) RegisterUser(ctx context.Context, email, passwordHash, role, tier string) (*models.User, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO users (email, password_hash, role, subscription_tier)
			  VALUES ($1, $2, $3, $4)
			  RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRowContext(ctx, query, email, passwordHash, role, tier))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = saveAuditTx(ctx, tx, models.AuditEntry{
		UserID:      user.ID,
		PerformedBy: user.ID,
		Action:      models.AuditActionCreate,
		EntityType:  "user",
		EntityID:    user.ID,
		Details:     "account registered",
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUserByEmail возвращает не удалённого пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1 AND deleted_at IS NULL`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUser возвращает не удалённого пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = $1 AND deleted_at IS NULL`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUserIncludingDeleted возвращает пользователя по ID независимо
// от отметки об удалении. Используется административными операциями.
func (s *Storage) GetUserIncludingDeleted(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.GetUserIncludingDeleted"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = $1`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUserByPaymentCustomerID возвращает пользователя по идентификатору
// клиента в платёжной системе.
func (s *Storage) GetUserByPaymentCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByPaymentCustomerID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE payment_customer_id = $1 AND deleted_at IS NULL`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ListUsers возвращает пользователей, отсортированных по дате создания.
// При includeDeleted=false удалённые пользователи не попадают в выборку.
func (s *Storage) ListUsers(ctx context.Context, includeDeleted bool) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE ($1 OR deleted_at IS NULL)
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListDeletedUsers возвращает только удалённых пользователей.
func (s *Storage) ListDeletedUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListDeletedUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE deleted_at IS NOT NULL
			  ORDER BY deleted_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserRole меняет роль пользователя и пишет запись аудита
// в одной транзакции.
func (s *Storage) UpdateUserRole(ctx context.Context, userID, role, performedBy string) (*models.User, error) {
	const op = "storage.UpdateUserRole"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE users SET role = $1
			  WHERE id = $2 AND deleted_at IS NULL
			  RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRowContext(ctx, query, role, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = saveAuditTx(ctx, tx, models.AuditEntry{
		UserID:      userID,
		PerformedBy: performedBy,
		Action:      models.AuditActionUpdateRole,
		EntityType:  "user",
		EntityID:    userID,
		Details:     "role set to " + role,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateUserTier меняет тариф пользователя и пишет запись аудита
// в одной транзакции. performedBy может быть пустым: так помечаются
// изменения, пришедшие от платёжной системы.
func (s *Storage) UpdateUserTier(ctx context.Context, userID, tier, performedBy string) (*models.User, error) {
	const op = "storage.UpdateUserTier"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE users SET subscription_tier = $1
			  WHERE id = $2 AND deleted_at IS NULL
			  RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRowContext(ctx, query, tier, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = saveAuditTx(ctx, tx, models.AuditEntry{
		UserID:      userID,
		PerformedBy: performedBy,
		Action:      models.AuditActionUpdateSubscription,
		EntityType:  "user",
		EntityID:    userID,
		Details:     "subscription tier set to " + tier,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// SoftDeleteUser помечает пользователя удалённым и пишет запись аудита.
// Повторное удаление возвращает ErrNotFound.
func (s *Storage) SoftDeleteUser(ctx context.Context, userID, performedBy string) error {
	const op = "storage.SoftDeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE users SET deleted_at = now()
			  WHERE id = $1 AND deleted_at IS NULL`
	res, err := tx.ExecContext(ctx, query, userID)
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

	if err = saveAuditTx(ctx, tx, models.AuditEntry{
		UserID:      userID,
		PerformedBy: performedBy,
		Action:      models.AuditActionSoftDelete,
		EntityType:  "user",
		EntityID:    userID,
		Details:     "account soft-deleted",
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RestoreUser снимает отметку об удалении и пишет запись аудита.
func (s *Storage) RestoreUser(ctx context.Context, userID, performedBy string) (*models.User, error) {
	const op = "storage.RestoreUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE users SET deleted_at = NULL
			  WHERE id = $1 AND deleted_at IS NOT NULL
			  RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = saveAuditTx(ctx, tx, models.AuditEntry{
		UserID:      userID,
		PerformedBy: performedBy,
		Action:      models.AuditActionRestore,
		EntityType:  "user",
		EntityID:    userID,
		Details:     "account restored",
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// EnsureRoleAndTier выставляет роль и тариф, если они отличаются
// от требуемых. Обновление без изменения в аудит не попадает.
func (s *Storage) EnsureRoleAndTier(ctx context.Context, userID, role, tier string) error {
	const op = "storage.EnsureRoleAndTier"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET role = $1, subscription_tier = $2
			  WHERE id = $3 AND deleted_at IS NULL
			    AND (role <> $1 OR subscription_tier <> $2)`
	_, err := s.DB.ExecContext(ctx, query, role, tier, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetPaymentCustomerID сохраняет идентификатор клиента платёжной системы.
func (s *Storage) SetPaymentCustomerID(ctx context.Context, userID, customerID string) error {
	const op = "storage.SetPaymentCustomerID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET payment_customer_id = $1
			  WHERE id = $2 AND deleted_at IS NULL`
	_, err := s.DB.ExecContext(ctx, query, customerID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetPaymentSubscriptionID сохраняет идентификатор подписки платёжной системы.
func (s *Storage) SetPaymentSubscriptionID(ctx context.Context, userID, subscriptionID string) error {
	const op = "storage.SetPaymentSubscriptionID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET payment_subscription_id = $1
			  WHERE id = $2 AND deleted_at IS NULL`
	_, err := s.DB.ExecContext(ctx, query, nullIfEmpty(subscriptionID), userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
