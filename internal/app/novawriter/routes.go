// Package novawriter предоставляет маршруты для основного приложения.
package novawriter

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/novawriterhq/novawriter/internal/config"
	"github.com/novawriterhq/novawriter/internal/http/handlers/admin/auditlist"
	"github.com/novawriterhq/novawriter/internal/http/handlers/admin/deletedlist"
	"github.com/novawriterhq/novawriter/internal/http/handlers/admin/roleupdate"
	"github.com/novawriterhq/novawriter/internal/http/handlers/admin/tierupdate"
	"github.com/novawriterhq/novawriter/internal/http/handlers/admin/useraudit"
	"github.com/novawriterhq/novawriter/internal/http/handlers/admin/userdelete"
	"github.com/novawriterhq/novawriter/internal/http/handlers/admin/userlist"
	"github.com/novawriterhq/novawriter/internal/http/handlers/admin/userrestore"
	"github.com/novawriterhq/novawriter/internal/http/handlers/assist/suggest"
	"github.com/novawriterhq/novawriter/internal/http/handlers/auth/login"
	"github.com/novawriterhq/novawriter/internal/http/handlers/auth/logout"
	"github.com/novawriterhq/novawriter/internal/http/handlers/auth/me"
	"github.com/novawriterhq/novawriter/internal/http/handlers/auth/register"
	"github.com/novawriterhq/novawriter/internal/http/handlers/billing/subscriptioncreate"
	"github.com/novawriterhq/novawriter/internal/http/handlers/billing/webhook"
	chaptercreate "github.com/novawriterhq/novawriter/internal/http/handlers/chapter/create"
	chapterlist "github.com/novawriterhq/novawriter/internal/http/handlers/chapter/list"
	chapterread "github.com/novawriterhq/novawriter/internal/http/handlers/chapter/read"
	chapterremove "github.com/novawriterhq/novawriter/internal/http/handlers/chapter/remove"
	chapterupdate "github.com/novawriterhq/novawriter/internal/http/handlers/chapter/update"
	charactercreate "github.com/novawriterhq/novawriter/internal/http/handlers/character/create"
	characterlist "github.com/novawriterhq/novawriter/internal/http/handlers/character/list"
	characterread "github.com/novawriterhq/novawriter/internal/http/handlers/character/read"
	characterremove "github.com/novawriterhq/novawriter/internal/http/handlers/character/remove"
	characterupdate "github.com/novawriterhq/novawriter/internal/http/handlers/character/update"
	contactsend "github.com/novawriterhq/novawriter/internal/http/handlers/contact/send"
	documentcreate "github.com/novawriterhq/novawriter/internal/http/handlers/document/create"
	documentlist "github.com/novawriterhq/novawriter/internal/http/handlers/document/list"
	documentread "github.com/novawriterhq/novawriter/internal/http/handlers/document/read"
	documentremove "github.com/novawriterhq/novawriter/internal/http/handlers/document/remove"
	documentupdate "github.com/novawriterhq/novawriter/internal/http/handlers/document/update"
	"github.com/novawriterhq/novawriter/internal/http/handlers/health"
	projectcreate "github.com/novawriterhq/novawriter/internal/http/handlers/project/create"
	projectlist "github.com/novawriterhq/novawriter/internal/http/handlers/project/list"
	projectread "github.com/novawriterhq/novawriter/internal/http/handlers/project/read"
	projectremove "github.com/novawriterhq/novawriter/internal/http/handlers/project/remove"
	projectupdate "github.com/novawriterhq/novawriter/internal/http/handlers/project/update"
	"github.com/novawriterhq/novawriter/internal/http/handlers/style/analyze"
	"github.com/novawriterhq/novawriter/internal/http/handlers/style/profileread"
	"github.com/novawriterhq/novawriter/internal/http/handlers/style/profileremove"
	"github.com/novawriterhq/novawriter/internal/http/handlers/style/samplecreate"
	"github.com/novawriterhq/novawriter/internal/http/handlers/style/samplelist"
	"github.com/novawriterhq/novawriter/internal/http/handlers/style/sampleremove"
	"github.com/novawriterhq/novawriter/internal/http/handlers/transfer/exportfile"
	"github.com/novawriterhq/novawriter/internal/http/handlers/transfer/importfile"
	"github.com/novawriterhq/novawriter/internal/http/middlewarectx"
	"github.com/novawriterhq/novawriter/internal/lib/jwt"
	"github.com/novawriterhq/novawriter/internal/lib/rabbitmq"
	adminservice "github.com/novawriterhq/novawriter/internal/services/admin"
	assistservice "github.com/novawriterhq/novawriter/internal/services/assist"
	authservice "github.com/novawriterhq/novawriter/internal/services/auth"
	billingservice "github.com/novawriterhq/novawriter/internal/services/billing"
	chapterservice "github.com/novawriterhq/novawriter/internal/services/chapter"
	characterservice "github.com/novawriterhq/novawriter/internal/services/character"
	documentservice "github.com/novawriterhq/novawriter/internal/services/document"
	projectservice "github.com/novawriterhq/novawriter/internal/services/project"
	styleservice "github.com/novawriterhq/novawriter/internal/services/style"
	"github.com/novawriterhq/novawriter/internal/session"
	"github.com/novawriterhq/novawriter/internal/storage"
)

// Services объединяет зависимости маршрутов приложения.
type Services struct {
	Sessions  *session.Store
	Tokens    *jwt.MakerImpl
	Storage   *storage.Storage
	Auth      *authservice.AuthService
	Document  *documentservice.DocumentService
	Project   *projectservice.ProjectService
	Chapter   *chapterservice.ChapterService
	Character *characterservice.CharacterService
	Style     *styleservice.StyleService
	Assist    *assistservice.AssistService
	Billing   *billingservice.BillingService
	Admin     *adminservice.AdminService
	Contact   *rabbitmq.EmailPublisher
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Общий лимит на дорогие операции: языковая модель и импорт файлов
	aiLimiter := rate.NewLimiter(rate.Every(3*time.Second), 5)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth, cfg.SessionTTL).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth, cfg.SessionTTL).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger, s.Auth).ServeHTTP)
		r.Post("/contact", contactsend.New(logger, s.Contact).ServeHTTP)

		// Webhook платёжного провайдера (без аутентификации)
		r.Post("/payments/webhook", webhook.New(logger, s.Billing).ServeHTTP)

		// Группа с аутентификацией по сессии либо токену
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Identity(s.Sessions, s.Tokens, s.Storage, cfg.SessionTTL, logger))

			r.Get("/auth/me", me.New(logger, s.Auth).ServeHTTP)
			r.Get("/account", me.New(logger, s.Auth).ServeHTTP)

			r.Post("/documents", documentcreate.New(logger, s.Document).ServeHTTP)
			r.Get("/documents", documentlist.New(logger, s.Document).ServeHTTP)
			r.Get("/documents/{id}", documentread.New(logger, s.Document).ServeHTTP)
			r.Patch("/documents/{id}", documentupdate.New(logger, s.Document).ServeHTTP)
			r.Put("/documents/{id}", documentupdate.New(logger, s.Document).ServeHTTP)
			r.Delete("/documents/{id}", documentremove.New(logger, s.Document).ServeHTTP)

			r.Post("/projects", projectcreate.New(logger, s.Project).ServeHTTP)
			r.Get("/projects", projectlist.New(logger, s.Project).ServeHTTP)
			r.Get("/projects/{id}", projectread.New(logger, s.Project).ServeHTTP)
			r.Patch("/projects/{id}", projectupdate.New(logger, s.Project).ServeHTTP)
			r.Put("/projects/{id}", projectupdate.New(logger, s.Project).ServeHTTP)
			r.Delete("/projects/{id}", projectremove.New(logger, s.Project).ServeHTTP)

			r.Get("/projects/{id}/chapters", chapterlist.New(logger, s.Chapter).ServeHTTP)
			r.Post("/chapters", chaptercreate.New(logger, s.Chapter).ServeHTTP)
			r.Get("/chapters/{id}", chapterread.New(logger, s.Chapter).ServeHTTP)
			r.Patch("/chapters/{id}", chapterupdate.New(logger, s.Chapter).ServeHTTP)
			r.Put("/chapters/{id}", chapterupdate.New(logger, s.Chapter).ServeHTTP)
			r.Delete("/chapters/{id}", chapterremove.New(logger, s.Chapter).ServeHTTP)

			r.Post("/characters", charactercreate.New(logger, s.Character).ServeHTTP)
			r.Get("/characters", characterlist.New(logger, s.Character).ServeHTTP)
			r.Get("/characters/{id}", characterread.New(logger, s.Character).ServeHTTP)
			r.Patch("/characters/{id}", characterupdate.New(logger, s.Character).ServeHTTP)
			r.Put("/characters/{id}", characterupdate.New(logger, s.Character).ServeHTTP)
			r.Delete("/characters/{id}", characterremove.New(logger, s.Character).ServeHTTP)

			r.Post("/writing-samples", samplecreate.New(logger, s.Style).ServeHTTP)
			r.Get("/writing-samples", samplelist.New(logger, s.Style).ServeHTTP)
			r.Delete("/writing-samples/{id}", sampleremove.New(logger, s.Style).ServeHTTP)
			r.Get("/style-profile", profileread.New(logger, s.Style).ServeHTTP)
			r.Delete("/style-profile", profileremove.New(logger, s.Style).ServeHTTP)

			r.Post("/export/{format}", exportfile.New(logger, s.Document).ServeHTTP)
			r.Post("/create-subscription", subscriptioncreate.New(logger, s.Billing).ServeHTTP)

			// Дорогие операции под общим лимитом
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(aiLimiter, logger))
				r.Post("/style-profile/analyze", analyze.New(logger, s.Style).ServeHTTP)
				r.Post("/ai/suggest", suggest.New(logger, s.Assist).ServeHTTP)
				r.Post("/import", importfile.New(logger, s.Document).ServeHTTP)
			})

			// Панель администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Get("/admin/users", userlist.New(logger, s.Admin).ServeHTTP)
				r.Get("/admin/users/deleted", deletedlist.New(logger, s.Admin).ServeHTTP)
				r.Post("/admin/users/{id}/subscription", tierupdate.New(logger, s.Admin).ServeHTTP)
				r.Post("/admin/users/{id}/role", roleupdate.New(logger, s.Admin).ServeHTTP)
				r.Post("/admin/users/{id}/delete", userdelete.New(logger, s.Admin).ServeHTTP)
				r.Post("/admin/users/{id}/restore", userrestore.New(logger, s.Admin).ServeHTTP)
				r.Get("/admin/audit-logs", auditlist.New(logger, s.Admin).ServeHTTP)
				r.Get("/admin/users/{id}/audit-logs", useraudit.New(logger, s.Admin).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, s.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
