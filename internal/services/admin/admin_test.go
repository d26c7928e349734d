package admin

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novawriterhq/novawriter/internal/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserIncludingDeleted(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, includeDeleted bool) ([]*models.User, error) {
	args := m.Called(ctx, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) ListDeletedUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUserRole(ctx context.Context, userID, role, performedBy string) (*models.User, error) {
	args := m.Called(ctx, userID, role, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUserTier(ctx context.Context, userID, tier, performedBy string) (*models.User, error) {
	args := m.Called(ctx, userID, tier, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SoftDeleteUser(ctx context.Context, userID, performedBy string) error {
	args := m.Called(ctx, userID, performedBy)
	return args.Error(0)
}

func (m *MockUserRepository) RestoreUser(ctx context.Context, userID, performedBy string) (*models.User, error) {
	args := m.Called(ctx, userID, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SaveAudit(ctx context.Context, entry models.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockUserRepository) ListAuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockUserRepository) ListAuditLogsForUser(ctx context.Context, userID string, limit int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockSessionRevoker struct {
	mock.Mock
}

func (m *MockSessionRevoker) DeleteAllForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockSubscriptionCanceler struct {
	mock.Mock
}

func (m *MockSubscriptionCanceler) CancelSubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

const testOwnerEmail = "owner@novawriter.app"

func adminUser() *models.User {
	return &models.User{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}
}

func newService(users *MockUserRepository, sessions *MockSessionRevoker) *AdminService {
	return New(users, sessions, new(MockSubscriptionCanceler), testOwnerEmail, slog.Default())
}

func TestAdminService_SoftDelete(t *testing.T) {
	t.Run("обычный пользователь удаляется, сессии отзываются", func(t *testing.T) {
		users := new(MockUserRepository)
		sessions := new(MockSessionRevoker)
		users.On("GetUserIncludingDeleted", mock.Anything, "user-1").
			Return(&models.User{ID: "user-1", Email: "writer@example.com", Role: models.RoleUser}, nil)
		users.On("SoftDeleteUser", mock.Anything, "user-1", "admin-1").Return(nil)
		sessions.On("DeleteAllForUser", mock.Anything, "user-1").Return(nil)

		err := newService(users, sessions).SoftDelete(context.Background(), adminUser(), "user-1")
		require.NoError(t, err)
		users.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	blockedCases := []struct {
		name    string
		target  *models.User
		wantErr error
	}{
		{
			name:    "нельзя удалить собственную учётку",
			target:  &models.User{ID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin},
			wantErr: ErrDeleteSelf,
		},
		{
			name:    "нельзя удалить владельца сайта",
			target:  &models.User{ID: "owner-1", Email: testOwnerEmail, Role: models.RoleUser},
			wantErr: ErrDeleteSiteOwner,
		},
		{
			name:    "нельзя удалить другого администратора",
			target:  &models.User{ID: "admin-2", Email: "second@example.com", Role: models.RoleAdmin},
			wantErr: ErrDeleteAdmin,
		},
	}
	for _, tc := range blockedCases {
		t.Run(tc.name, func(t *testing.T) {
			users := new(MockUserRepository)
			sessions := new(MockSessionRevoker)
			users.On("GetUserIncludingDeleted", mock.Anything, tc.target.ID).Return(tc.target, nil)
			users.On("SaveAudit", mock.Anything, mock.MatchedBy(func(entry models.AuditEntry) bool {
				return entry.Action == models.AuditActionDeleteBlocked &&
					entry.UserID == tc.target.ID &&
					entry.PerformedBy == "admin-1"
			})).Return(nil)

			err := newService(users, sessions).SoftDelete(context.Background(), adminUser(), tc.target.ID)
			assert.ErrorIs(t, err, tc.wantErr)
			users.AssertExpectations(t)
			users.AssertNotCalled(t, "SoftDeleteUser", mock.Anything, mock.Anything, mock.Anything)
			sessions.AssertNotCalled(t, "DeleteAllForUser", mock.Anything, mock.Anything)
		})
	}

	t.Run("у платящего пользователя отменяется подписка", func(t *testing.T) {
		users := new(MockUserRepository)
		sessions := new(MockSessionRevoker)
		payments := new(MockSubscriptionCanceler)
		subID := "sub_123"
		users.On("GetUserIncludingDeleted", mock.Anything, "user-1").
			Return(&models.User{
				ID: "user-1", Email: "writer@example.com", Role: models.RoleUser,
				SubscriptionTier: models.TierPro, PaymentSubscriptionID: &subID,
			}, nil)
		users.On("SoftDeleteUser", mock.Anything, "user-1", "admin-1").Return(nil)
		sessions.On("DeleteAllForUser", mock.Anything, "user-1").Return(nil)
		payments.On("CancelSubscription", mock.Anything, "sub_123").Return(nil)

		service := New(users, sessions, payments, testOwnerEmail, slog.Default())
		err := service.SoftDelete(context.Background(), adminUser(), "user-1")
		require.NoError(t, err)
		payments.AssertExpectations(t)
	})

	t.Run("сбой отзыва сессий не отменяет удаление", func(t *testing.T) {
		users := new(MockUserRepository)
		sessions := new(MockSessionRevoker)
		users.On("GetUserIncludingDeleted", mock.Anything, "user-1").
			Return(&models.User{ID: "user-1", Email: "writer@example.com", Role: models.RoleUser}, nil)
		users.On("SoftDeleteUser", mock.Anything, "user-1", "admin-1").Return(nil)
		sessions.On("DeleteAllForUser", mock.Anything, "user-1").Return(assert.AnError)

		err := newService(users, sessions).SoftDelete(context.Background(), adminUser(), "user-1")
		require.NoError(t, err)
	})
}

func TestAdminService_UpdateTier(t *testing.T) {
	t.Run("тариф меняется с записью исполнителя", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserIncludingDeleted", mock.Anything, "user-1").
			Return(&models.User{ID: "user-1", Email: "writer@example.com"}, nil)
		users.On("UpdateUserTier", mock.Anything, "user-1", models.TierPro, "admin-1").
			Return(&models.User{ID: "user-1", SubscriptionTier: models.TierPro}, nil)

		updated, err := newService(users, new(MockSessionRevoker)).UpdateTier(
			context.Background(), adminUser(), "user-1", models.TierPro)
		require.NoError(t, err)
		assert.Equal(t, models.TierPro, updated.SubscriptionTier)
		users.AssertExpectations(t)
	})

	t.Run("неизвестный тариф отклоняется", func(t *testing.T) {
		users := new(MockUserRepository)
		_, err := newService(users, new(MockSessionRevoker)).UpdateTier(
			context.Background(), adminUser(), "user-1", "platinum")
		assert.ErrorIs(t, err, ErrInvalidTier)
		users.AssertNotCalled(t, "UpdateUserTier", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("тариф владельца сайта защищён", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserIncludingDeleted", mock.Anything, "owner-1").
			Return(&models.User{ID: "owner-1", Email: testOwnerEmail}, nil)

		_, err := newService(users, new(MockSessionRevoker)).UpdateTier(
			context.Background(), adminUser(), "owner-1", models.TierFree)
		assert.ErrorIs(t, err, ErrOwnerTier)
		users.AssertNotCalled(t, "UpdateUserTier", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAdminService_UpdateRole(t *testing.T) {
	t.Run("роль меняется", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserIncludingDeleted", mock.Anything, "user-1").
			Return(&models.User{ID: "user-1", Email: "writer@example.com", Role: models.RoleUser}, nil)
		users.On("UpdateUserRole", mock.Anything, "user-1", models.RoleAdmin, "admin-1").
			Return(&models.User{ID: "user-1", Role: models.RoleAdmin}, nil)

		updated, err := newService(users, new(MockSessionRevoker)).UpdateRole(
			context.Background(), adminUser(), "user-1", models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})

	t.Run("неизвестная роль отклоняется", func(t *testing.T) {
		_, err := newService(new(MockUserRepository), new(MockSessionRevoker)).UpdateRole(
			context.Background(), adminUser(), "user-1", "superuser")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("роль владельца сайта защищена", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserIncludingDeleted", mock.Anything, "owner-1").
			Return(&models.User{ID: "owner-1", Email: testOwnerEmail, Role: models.RoleAdmin}, nil)

		_, err := newService(users, new(MockSessionRevoker)).UpdateRole(
			context.Background(), adminUser(), "owner-1", models.RoleUser)
		assert.ErrorIs(t, err, ErrOwnerRole)
	})
}

func TestAdminService_AuditLogs_DefaultLimit(t *testing.T) {
	users := new(MockUserRepository)
	users.On("ListAuditLogs", mock.Anything, 100).Return([]*models.AuditLog{}, nil)
	users.On("ListAuditLogsForUser", mock.Anything, "user-1", 100).Return([]*models.AuditLog{}, nil)

	service := newService(users, new(MockSessionRevoker))
	_, err := service.AuditLogs(context.Background(), 0)
	require.NoError(t, err)
	_, err = service.AuditLogsForUser(context.Background(), "user-1", -5)
	require.NoError(t, err)
	users.AssertExpectations(t)
}
