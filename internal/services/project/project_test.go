package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novawriterhq/novawriter/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateProject(ctx context.Context, userID, title string) (*models.Project, error) {
	args := m.Called(ctx, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockRepository) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockRepository) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockRepository) UpdateProject(ctx context.Context, id, userID string, upd models.ProjectUpdate) (*models.Project, error) {
	args := m.Called(ctx, id, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockRepository) DeleteProject(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockRepository) ListChapters(ctx context.Context, projectID, userID string) ([]*models.Chapter, error) {
	args := m.Called(ctx, projectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Chapter), args.Error(1)
}

func TestProjectService_List(t *testing.T) {
	t.Run("главы подтягиваются для каждого проекта", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListProjects", mock.Anything, "user-1").Return([]*models.Project{
			{ID: "p1", UserID: "user-1", Title: "Роман"},
			{ID: "p2", UserID: "user-1", Title: "Черновики"},
		}, nil)
		repo.On("ListChapters", mock.Anything, "p1", "user-1").Return([]*models.Chapter{
			{ID: "c1", ProjectID: "p1", Title: "Глава первая", OrderIndex: 0},
		}, nil)
		repo.On("ListChapters", mock.Anything, "p2", "user-1").Return([]*models.Chapter{}, nil)

		got, err := New(repo).List(context.Background(), "user-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Len(t, got[0].Chapters, 1)
		assert.Equal(t, "Глава первая", got[0].Chapters[0].Title)
		assert.Empty(t, got[1].Chapters)
		repo.AssertExpectations(t)
	})

	t.Run("ошибка загрузки глав прерывает список", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListProjects", mock.Anything, "user-1").Return([]*models.Project{
			{ID: "p1", UserID: "user-1", Title: "Роман"},
		}, nil)
		repo.On("ListChapters", mock.Anything, "p1", "user-1").Return(nil, assert.AnError)

		_, err := New(repo).List(context.Background(), "user-1")
		assert.Error(t, err)
	})
}
