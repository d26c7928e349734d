// Package character реализует бизнес-логику карточек персонажей.
package character

import (
	"context"

	"github.com/novawriterhq/novawriter/internal/models"
)

// Repository — хранилище персонажей.
type Repository interface {
	CreateCharacter(ctx context.Context, userID string, req models.DummyCharacter) (*models.Character, error)
	ListCharacters(ctx context.Context, userID string, filter models.CharacterFilter) ([]*models.Character, error)
	GetCharacter(ctx context.Context, id, userID string) (*models.Character, error)
	UpdateCharacter(ctx context.Context, id, userID string, upd models.CharacterUpdate) (*models.Character, error)
	DeleteCharacter(ctx context.Context, id, userID string) error
}

// CharacterService реализует операции над персонажами пользователя.
type CharacterService struct {
	repo Repository
}

// New создаёт CharacterService.
func New(repo Repository) *CharacterService {
	return &CharacterService{repo: repo}
}

// Create создаёт карточку персонажа, при необходимости привязанную
// к проекту или документу.
func (s *CharacterService) Create(ctx context.Context, userID string, req models.DummyCharacter) (*models.Character, error) {
	return s.repo.CreateCharacter(ctx, userID, req)
}

// List возвращает персонажей пользователя с учётом фильтра.
func (s *CharacterService) List(ctx context.Context, userID string, filter models.CharacterFilter) ([]*models.Character, error) {
	return s.repo.ListCharacters(ctx, userID, filter)
}

// Get возвращает персонажа пользователя.
func (s *CharacterService) Get(ctx context.Context, id, userID string) (*models.Character, error) {
	return s.repo.GetCharacter(ctx, id, userID)
}

// Update применяет частичное обновление персонажа.
func (s *CharacterService) Update(ctx context.Context, id, userID string, upd models.CharacterUpdate) (*models.Character, error) {
	return s.repo.UpdateCharacter(ctx, id, userID, upd)
}

// Delete удаляет персонажа.
func (s *CharacterService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.DeleteCharacter(ctx, id, userID)
}
