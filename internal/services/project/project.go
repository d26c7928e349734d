// Package project реализует бизнес-логику книжных проектов.
package project

import (
	"context"

	"github.com/novawriterhq/novawriter/internal/models"
)

// Repository — хранилище проектов и их глав.
type Repository interface {
	CreateProject(ctx context.Context, userID, title string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string) ([]*models.Project, error)
	GetProject(ctx context.Context, id, userID string) (*models.Project, error)
	UpdateProject(ctx context.Context, id, userID string, upd models.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, id, userID string) error
	ListChapters(ctx context.Context, projectID, userID string) ([]*models.Chapter, error)
}

// ProjectService реализует операции над проектами пользователя.
type ProjectService struct {
	repo Repository
}

// New создаёт ProjectService.
func New(repo Repository) *ProjectService {
	return &ProjectService{repo: repo}
}

// Create создаёт проект.
func (s *ProjectService) Create(ctx context.Context, userID string, req models.DummyProject) (*models.Project, error) {
	return s.repo.CreateProject(ctx, userID, req.Title)
}

// List возвращает проекты пользователя, каждый вместе с его главами
// в порядке следования.
func (s *ProjectService) List(ctx context.Context, userID string) ([]*models.ProjectWithChapters, error) {
	projects, err := s.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]*models.ProjectWithChapters, 0, len(projects))
	for _, project := range projects {
		chapters, err := s.repo.ListChapters(ctx, project.ID, userID)
		if err != nil {
			return nil, err
		}
		result = append(result, &models.ProjectWithChapters{Project: *project, Chapters: chapters})
	}
	return result, nil
}

// Get возвращает проект вместе с его главами по порядку следования.
func (s *ProjectService) Get(ctx context.Context, id, userID string) (*models.ProjectWithChapters, error) {
	project, err := s.repo.GetProject(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	chapters, err := s.repo.ListChapters(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &models.ProjectWithChapters{Project: *project, Chapters: chapters}, nil
}

// Update применяет частичное обновление проекта.
func (s *ProjectService) Update(ctx context.Context, id, userID string, upd models.ProjectUpdate) (*models.Project, error) {
	return s.repo.UpdateProject(ctx, id, userID, upd)
}

// Delete удаляет проект вместе с главами.
func (s *ProjectService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.DeleteProject(ctx, id, userID)
}
