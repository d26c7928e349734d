// Package auth реализует бизнес-логику регистрации, входа и выхода.
//
// Учётная запись владельца сайта самовосстанавливается: при регистрации,
// входе и запросе профиля ей принудительно выставляются роль администратора
// и тариф pro, даже если данные в базе были изменены.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/novawriterhq/novawriter/internal/lib/password"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/storage"
)

// ErrEmailTaken возвращается при регистрации на занятый email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials возвращается при неверном email или пароле.
// Несуществующий email и неверный пароль неразличимы.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository — хранилище пользователей.
type UserRepository interface {
	RegisterUser(ctx context.Context, email, passwordHash, role, tier string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EnsureRoleAndTier(ctx context.Context, userID, role, tier string) error
}

// SessionStore — хранилище серверных сессий.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// TokenMaker выпускает JWT токены.
type TokenMaker interface {
	GenerateToken(userID string) (string, error)
}

// WelcomePublisher ставит приветственное письмо в очередь отправки.
type WelcomePublisher interface {
	PublishWelcome(email string) error
}

// AuthService реализует бизнес-логику авторизации и аутентификации.
type AuthService struct {
	users          UserRepository
	sessions       SessionStore
	tokens         TokenMaker
	mail           WelcomePublisher
	siteOwnerEmail string
	log            *slog.Logger
}

// New создаёт AuthService.
func New(users UserRepository, sessions SessionStore, tokens TokenMaker,
	mail WelcomePublisher, siteOwnerEmail string, log *slog.Logger) *AuthService {
	return &AuthService{
		users:          users,
		sessions:       sessions,
		tokens:         tokens,
		mail:           mail,
		siteOwnerEmail: siteOwnerEmail,
		log:            log,
	}
}

// Credentials — результат успешной регистрации или входа.
type Credentials struct {
	User      *models.User
	Token     string
	SessionID string
}

// Register создаёт пользователя, сессию и токен. Письмо с приветствием
// уходит в очередь и не задерживает ответ.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (*Credentials, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	role, tier := models.RoleUser, models.TierFree
	if email == s.siteOwnerEmail {
		role, tier = models.RoleAdmin, models.TierPro
	}

	user, err := s.users.RegisterUser(ctx, email, hashed, role, tier)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	creds, err := s.issueCredentials(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mail.PublishWelcome(user.Email); err != nil {
		// Письмо не критично для регистрации
		s.log.Error("failed to enqueue welcome email", sl.Err(err))
	}

	return creds, nil
}

// Login проверяет пароль и выдаёт сессию и токен.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Credentials, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.healSiteOwner(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	creds, err := s.issueCredentials(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return creds, nil
}

// Logout завершает серверную сессию.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	const op = "auth.Logout"

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Me возвращает профиль текущего пользователя, по пути восстанавливая
// права владельца сайта.
func (s *AuthService) Me(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "auth.Me"

	if err := s.healSiteOwner(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *AuthService) issueCredentials(ctx context.Context, user *models.User) (*Credentials, error) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Credentials{User: user, Token: token, SessionID: sessionID}, nil
}

// healSiteOwner выправляет роль и тариф владельца сайта.
func (s *AuthService) healSiteOwner(ctx context.Context, user *models.User) error {
	if user.Email != s.siteOwnerEmail {
		return nil
	}
	if user.Role == models.RoleAdmin && user.SubscriptionTier == models.TierPro {
		return nil
	}
	if err := s.users.EnsureRoleAndTier(ctx, user.ID, models.RoleAdmin, models.TierPro); err != nil {
		return err
	}
	user.Role = models.RoleAdmin
	user.SubscriptionTier = models.TierPro
	return nil
}
