package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novawriterhq/novawriter/internal/lib/password"
	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/storage"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) RegisterUser(ctx context.Context, email, passwordHash, role, tier string) (*models.User, error) {
	args := m.Called(ctx, email, passwordHash, role, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EnsureRoleAndTier(ctx context.Context, userID, role, tier string) error {
	args := m.Called(ctx, userID, role, tier)
	return args.Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockTokenMaker struct {
	mock.Mock
}

func (m *MockTokenMaker) GenerateToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

type MockWelcomePublisher struct {
	mock.Mock
}

func (m *MockWelcomePublisher) PublishWelcome(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const siteOwnerEmail = "owner@novawriter.org"

func newService(users *MockUserRepository, sessions *MockSessionStore,
	tokens *MockTokenMaker, mail *MockWelcomePublisher) *AuthService {
	return New(users, sessions, tokens, mail, siteOwnerEmail, newNoopLogger())
}

func TestAuthService_Register(t *testing.T) {
	t.Run("обычный пользователь получает роль user и тариф free", func(t *testing.T) {
		users := new(MockUserRepository)
		sessions := new(MockSessionStore)
		tokens := new(MockTokenMaker)
		mail := new(MockWelcomePublisher)

		user := &models.User{ID: "user-1", Email: "writer@example.com", Role: models.RoleUser, SubscriptionTier: models.TierFree}
		users.On("RegisterUser", mock.Anything, "writer@example.com", mock.AnythingOfType("string"),
			models.RoleUser, models.TierFree).Return(user, nil)
		tokens.On("GenerateToken", "user-1").Return("jwt-token", nil)
		sessions.On("Create", mock.Anything, "user-1").Return("sess-1", nil)
		mail.On("PublishWelcome", "writer@example.com").Return(nil)

		creds, err := newService(users, sessions, tokens, mail).
			Register(context.Background(), "writer@example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "jwt-token", creds.Token)
		assert.Equal(t, "sess-1", creds.SessionID)
		users.AssertExpectations(t)
		mail.AssertExpectations(t)
	})

	t.Run("владелец сайта сразу получает admin и pro", func(t *testing.T) {
		users := new(MockUserRepository)
		sessions := new(MockSessionStore)
		tokens := new(MockTokenMaker)
		mail := new(MockWelcomePublisher)

		user := &models.User{ID: "owner-1", Email: siteOwnerEmail, Role: models.RoleAdmin, SubscriptionTier: models.TierPro}
		users.On("RegisterUser", mock.Anything, siteOwnerEmail, mock.AnythingOfType("string"),
			models.RoleAdmin, models.TierPro).Return(user, nil)
		tokens.On("GenerateToken", "owner-1").Return("jwt-token", nil)
		sessions.On("Create", mock.Anything, "owner-1").Return("sess-1", nil)
		mail.On("PublishWelcome", siteOwnerEmail).Return(nil)

		_, err := newService(users, sessions, tokens, mail).
			Register(context.Background(), siteOwnerEmail, "secret123")

		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("занятый email превращается в ErrEmailTaken", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("RegisterUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &pgconn.PgError{Code: "23505"})

		_, err := newService(users, new(MockSessionStore), new(MockTokenMaker), new(MockWelcomePublisher)).
			Register(context.Background(), "taken@example.com", "secret123")

		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("сбой очереди писем не ломает регистрацию", func(t *testing.T) {
		users := new(MockUserRepository)
		sessions := new(MockSessionStore)
		tokens := new(MockTokenMaker)
		mail := new(MockWelcomePublisher)

		user := &models.User{ID: "user-1", Email: "writer@example.com"}
		users.On("RegisterUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(user, nil)
		tokens.On("GenerateToken", "user-1").Return("jwt-token", nil)
		sessions.On("Create", mock.Anything, "user-1").Return("sess-1", nil)
		mail.On("PublishWelcome", "writer@example.com").Return(assert.AnError)

		creds, err := newService(users, sessions, tokens, mail).
			Register(context.Background(), "writer@example.com", "secret123")

		require.NoError(t, err)
		assert.NotNil(t, creds)
	})
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := password.GetHash("secret123")
	require.NoError(t, err)

	t.Run("успешный вход", func(t *testing.T) {
		users := new(MockUserRepository)
		sessions := new(MockSessionStore)
		tokens := new(MockTokenMaker)

		user := &models.User{ID: "user-1", Email: "writer@example.com", PasswordHash: hashed, Role: models.RoleUser}
		users.On("GetUserByEmail", mock.Anything, "writer@example.com").Return(user, nil)
		tokens.On("GenerateToken", "user-1").Return("jwt-token", nil)
		sessions.On("Create", mock.Anything, "user-1").Return("sess-1", nil)

		creds, err := newService(users, sessions, tokens, new(MockWelcomePublisher)).
			Login(context.Background(), "writer@example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "user-1", creds.User.ID)
	})

	t.Run("неизвестный email и неверный пароль неразличимы", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, storage.ErrNotFound)

		service := newService(users, new(MockSessionStore), new(MockTokenMaker), new(MockWelcomePublisher))
		_, errUnknown := service.Login(context.Background(), "ghost@example.com", "secret123")
		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)

		users2 := new(MockUserRepository)
		users2.On("GetUserByEmail", mock.Anything, "writer@example.com").
			Return(&models.User{ID: "user-1", Email: "writer@example.com", PasswordHash: hashed}, nil)
		service2 := newService(users2, new(MockSessionStore), new(MockTokenMaker), new(MockWelcomePublisher))
		_, errWrongPass := service2.Login(context.Background(), "writer@example.com", "wrong-password")
		assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)

		assert.Equal(t, errUnknown, errWrongPass)
	})

	t.Run("вход владельца сайта восстанавливает права", func(t *testing.T) {
		users := new(MockUserRepository)
		sessions := new(MockSessionStore)
		tokens := new(MockTokenMaker)

		// В базе владелец внезапно обычный пользователь на free
		user := &models.User{ID: "owner-1", Email: siteOwnerEmail, PasswordHash: hashed,
			Role: models.RoleUser, SubscriptionTier: models.TierFree}
		users.On("GetUserByEmail", mock.Anything, siteOwnerEmail).Return(user, nil)
		users.On("EnsureRoleAndTier", mock.Anything, "owner-1", models.RoleAdmin, models.TierPro).Return(nil)
		tokens.On("GenerateToken", "owner-1").Return("jwt-token", nil)
		sessions.On("Create", mock.Anything, "owner-1").Return("sess-1", nil)

		creds, err := newService(users, sessions, tokens, new(MockWelcomePublisher)).
			Login(context.Background(), siteOwnerEmail, "secret123")

		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, creds.User.Role)
		assert.Equal(t, models.TierPro, creds.User.SubscriptionTier)
		users.AssertExpectations(t)
	})
}

func TestAuthService_Me(t *testing.T) {
	t.Run("обычный пользователь возвращается как есть", func(t *testing.T) {
		users := new(MockUserRepository)
		user := &models.User{ID: "user-1", Email: "writer@example.com", Role: models.RoleUser}

		got, err := newService(users, new(MockSessionStore), new(MockTokenMaker), new(MockWelcomePublisher)).
			Me(context.Background(), user)

		require.NoError(t, err)
		assert.Equal(t, user, got)
		users.AssertNotCalled(t, "EnsureRoleAndTier", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("профиль владельца сайта самовосстанавливается", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("EnsureRoleAndTier", mock.Anything, "owner-1", models.RoleAdmin, models.TierPro).Return(nil)

		user := &models.User{ID: "owner-1", Email: siteOwnerEmail, Role: models.RoleUser, SubscriptionTier: models.TierBasic}
		got, err := newService(users, new(MockSessionStore), new(MockTokenMaker), new(MockWelcomePublisher)).
			Me(context.Background(), user)

		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, got.Role)
		assert.Equal(t, models.TierPro, got.SubscriptionTier)
	})
}

func TestAuthService_Logout(t *testing.T) {
	sessions := new(MockSessionStore)
	sessions.On("Delete", mock.Anything, "sess-1").Return(nil)

	err := newService(new(MockUserRepository), sessions, new(MockTokenMaker), new(MockWelcomePublisher)).
		Logout(context.Background(), "sess-1")

	assert.NoError(t, err)
	sessions.AssertExpectations(t)
}
