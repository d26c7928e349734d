// Package middlewarectx содержит HTTP middleware установления личности
// пользователя и проверки прав доступа.
//
// Identity принимает либо сессионную cookie, либо JWT в заголовке
// Authorization. Токен при первом обращении обменивается на серверную
// сессию: создаётся запись в хранилище сессий и выставляется cookie,
// дальнейшие запросы того же клиента идут по сессии.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novawriterhq/novawriter/internal/http/response"
	jwtlib "github.com/novawriterhq/novawriter/internal/lib/jwt"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/storage"
)

// SessionCookieName — имя сессионной cookie.
const SessionCookieName = "nw_session"

// Key тип для ключей контекста HTTP-запроса.
type Key string

// CurrentUser — ключ для текущего пользователя в контексте.
const CurrentUser Key = "currentUser"

// SessionStore описывает хранилище серверных сессий.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Create(ctx context.Context, userID string) (string, error)
}

// TokenParser описывает разбор JWT токена.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwtlib.CustomClaims, error)
}

// UserProvider описывает загрузку пользователя по ID.
type UserProvider interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// UserFromContext возвращает текущего пользователя запроса.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(CurrentUser).(*models.User)
	return user, ok
}

// SetSessionCookie выставляет сессионную cookie с переданным TTL.
func SetSessionCookie(w http.ResponseWriter, sessionID string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie сбрасывает сессионную cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Identity возвращает middleware, устанавливающий личность пользователя.
//
// Сначала проверяется сессионная cookie, затем заголовок Authorization.
// Валидный токен превращается в серверную сессию. Удалённый пользователь
// получает 401 независимо от валидности сессии или токена.
func Identity(sessions SessionStore, tokens TokenParser, users UserProvider,
	sessionTTL time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Identity"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userID := resolveUserID(r, w, sessions, tokens, sessionTTL, log)
			if userID == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					log.Error("failed to load user", sl.Err(err))
				}
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveUserID возвращает ID пользователя из сессии либо токена.
// Пустая строка означает отсутствие валидных учётных данных.
func resolveUserID(r *http.Request, w http.ResponseWriter, sessions SessionStore,
	tokens TokenParser, sessionTTL time.Duration, log *slog.Logger) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		userID, err := sessions.Get(r.Context(), cookie.Value)
		if err == nil {
			return userID
		}
		// Истёкшая сессия не мешает пройти по токену
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := tokens.ParseToken(tokenStr)
	if err != nil {
		return ""
	}

	// Токен обменивается на сессию, чтобы клиент дальше ходил по cookie
	sessionID, err := sessions.Create(r.Context(), claims.UserID)
	if err != nil {
		log.Error("failed to create session from token", sl.Err(err))
		return claims.UserID
	}
	SetSessionCookie(w, sessionID, sessionTTL)

	return claims.UserID
}
