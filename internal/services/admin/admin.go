// Package admin реализует операции панели администратора: управление
// пользователями, их тарифами и ролями, мягкое удаление с журналом аудита.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
)

// Ошибки правил защиты учётных записей. Тексты отдаются клиенту как есть.
var (
	ErrDeleteSelf      = errors.New("Cannot delete your own account")
	ErrDeleteSiteOwner = errors.New("Cannot delete site owner account")
	ErrDeleteAdmin     = errors.New("Cannot delete admin users. Please demote to regular user first.")
	ErrOwnerTier       = errors.New("Cannot modify site owner subscription tier")
	ErrOwnerRole       = errors.New("Cannot modify site owner role")
	ErrInvalidTier     = errors.New("Invalid subscription tier")
	ErrInvalidRole     = errors.New("Invalid role")
)

// UserRepository — операции над пользователями для панели администратора.
type UserRepository interface {
	GetUserIncludingDeleted(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, includeDeleted bool) ([]*models.User, error)
	ListDeletedUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, userID, role, performedBy string) (*models.User, error)
	UpdateUserTier(ctx context.Context, userID, tier, performedBy string) (*models.User, error)
	SoftDeleteUser(ctx context.Context, userID, performedBy string) error
	RestoreUser(ctx context.Context, userID, performedBy string) (*models.User, error)
	SaveAudit(ctx context.Context, entry models.AuditEntry) error
	ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error)
	ListAuditLogsForUser(ctx context.Context, userID string, limit int) ([]*models.AuditLog, error)
}

// SessionRevoker завершает все сессии пользователя.
type SessionRevoker interface {
	DeleteAllForUser(ctx context.Context, userID string) error
}

// SubscriptionCanceler отменяет подписку у платёжного провайдера.
type SubscriptionCanceler interface {
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// AdminService реализует операции панели администратора.
type AdminService struct {
	users          UserRepository
	sessions       SessionRevoker
	payments       SubscriptionCanceler
	siteOwnerEmail string
	log            *slog.Logger
}

// New создаёт AdminService.
func New(users UserRepository, sessions SessionRevoker, payments SubscriptionCanceler,
	siteOwnerEmail string, log *slog.Logger) *AdminService {
	return &AdminService{
		users:          users,
		sessions:       sessions,
		payments:       payments,
		siteOwnerEmail: siteOwnerEmail,
		log:            log,
	}
}

// ListUsers возвращает пользователей, при includeDeleted — вместе с удалёнными.
func (s *AdminService) ListUsers(ctx context.Context, includeDeleted bool) ([]*models.User, error) {
	return s.users.ListUsers(ctx, includeDeleted)
}

// ListDeletedUsers возвращает только мягко удалённых пользователей.
func (s *AdminService) ListDeletedUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListDeletedUsers(ctx)
}

// UpdateTier меняет тариф пользователя от имени администратора.
// Тариф владельца сайта защищён от изменения.
func (s *AdminService) UpdateTier(ctx context.Context, admin *models.User, userID, tier string) (*models.User, error) {
	const op = "admin.UpdateTier"

	if !models.ValidTier(tier) {
		return nil, ErrInvalidTier
	}
	target, err := s.users.GetUserIncludingDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if target.Email == s.siteOwnerEmail {
		return nil, ErrOwnerTier
	}
	return s.users.UpdateUserTier(ctx, userID, tier, admin.ID)
}

// UpdateRole меняет роль пользователя от имени администратора.
// Роль владельца сайта защищена от изменения.
func (s *AdminService) UpdateRole(ctx context.Context, admin *models.User, userID, role string) (*models.User, error) {
	const op = "admin.UpdateRole"

	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}
	target, err := s.users.GetUserIncludingDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if target.Email == s.siteOwnerEmail {
		return nil, ErrOwnerRole
	}
	return s.users.UpdateUserRole(ctx, userID, role, admin.ID)
}

// SoftDelete мягко удаляет пользователя и завершает все его сессии.
// Запрещено удалять себя, владельца сайта и других администраторов;
// каждая заблокированная попытка записывается в журнал аудита.
func (s *AdminService) SoftDelete(ctx context.Context, admin *models.User, userID string) error {
	const op = "admin.SoftDelete"

	target, err := s.users.GetUserIncludingDeleted(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var blocked error
	var details string
	switch {
	case target.ID == admin.ID:
		blocked = ErrDeleteSelf
		details = "Admin attempted to delete their own account - action blocked"
	case target.Email == s.siteOwnerEmail:
		blocked = ErrDeleteSiteOwner
		details = "Attempted to delete site owner account - action blocked"
	case target.Role == models.RoleAdmin:
		blocked = ErrDeleteAdmin
		details = fmt.Sprintf("Attempted to delete admin user %s - action blocked", target.Email)
	}
	if blocked != nil {
		if err := s.users.SaveAudit(ctx, models.AuditEntry{
			UserID:      target.ID,
			PerformedBy: admin.ID,
			Action:      models.AuditActionDeleteBlocked,
			EntityType:  "user",
			EntityID:    target.ID,
			Details:     details,
		}); err != nil {
			s.log.Error("failed to audit blocked delete", sl.Err(err))
		}
		return blocked
	}

	if err := s.users.SoftDeleteUser(ctx, userID, admin.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		s.log.Error("failed to revoke sessions of deleted user",
			slog.String("userId", userID), sl.Err(err))
	}
	if target.PaymentSubscriptionID != nil && *target.PaymentSubscriptionID != "" {
		if err := s.payments.CancelSubscription(ctx, *target.PaymentSubscriptionID); err != nil {
			s.log.Error("failed to cancel subscription of deleted user",
				slog.String("userId", userID), sl.Err(err))
		}
	}
	return nil
}

// Restore снимает отметку удаления с пользователя.
func (s *AdminService) Restore(ctx context.Context, admin *models.User, userID string) (*models.User, error) {
	return s.users.RestoreUser(ctx, userID, admin.ID)
}

// AuditLogs возвращает последние записи журнала аудита.
func (s *AdminService) AuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.users.ListAuditLogs(ctx, limit)
}

// AuditLogsForUser возвращает записи журнала аудита по одному пользователю.
func (s *AdminService) AuditLogsForUser(ctx context.Context, userID string, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.users.ListAuditLogsForUser(ctx, userID, limit)
}
