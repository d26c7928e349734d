// Package chapter реализует бизнес-логику глав книжных проектов.
// Владение главой всегда проверяется через её проект.
package chapter

import (
	"context"

	"github.com/novawriterhq/novawriter/internal/models"
)

// Repository — хранилище глав.
type Repository interface {
	CreateChapter(ctx context.Context, userID string, req models.DummyChapter) (*models.Chapter, error)
	ListChapters(ctx context.Context, projectID, userID string) ([]*models.Chapter, error)
	GetChapter(ctx context.Context, id, userID string) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, id, userID string, upd models.ChapterUpdate) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id, userID string) error
}

// ChapterService реализует операции над главами.
type ChapterService struct {
	repo Repository
}

// New создаёт ChapterService.
func New(repo Repository) *ChapterService {
	return &ChapterService{repo: repo}
}

// Create добавляет главу в проект пользователя.
func (s *ChapterService) Create(ctx context.Context, userID string, req models.DummyChapter) (*models.Chapter, error) {
	return s.repo.CreateChapter(ctx, userID, req)
}

// List возвращает главы проекта по порядку следования.
func (s *ChapterService) List(ctx context.Context, projectID, userID string) ([]*models.Chapter, error) {
	return s.repo.ListChapters(ctx, projectID, userID)
}

// Get возвращает главу пользователя.
func (s *ChapterService) Get(ctx context.Context, id, userID string) (*models.Chapter, error) {
	return s.repo.GetChapter(ctx, id, userID)
}

// Update применяет частичное обновление главы.
func (s *ChapterService) Update(ctx context.Context, id, userID string, upd models.ChapterUpdate) (*models.Chapter, error) {
	return s.repo.UpdateChapter(ctx, id, userID, upd)
}

// Delete удаляет главу.
func (s *ChapterService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.DeleteChapter(ctx, id, userID)
}
