package models

import "time"

// Character — справочная карточка персонажа: свободные заметки без
// какого-либо поведения, опционально привязанные к проекту и/или документу.
type Character struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ProjectID   *string   `json:"projectId,omitempty"`
	DocumentID  *string   `json:"documentId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Traits      string    `json:"traits"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DummyCharacter используется для приёма данных нового персонажа из JSON-запроса.
type DummyCharacter struct {
	ProjectID   *string `json:"projectId" validate:"omitempty,uuid"`
	DocumentID  *string `json:"documentId" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Traits      string  `json:"traits"`
}

// CharacterUpdate описывает частичное обновление персонажа.
type CharacterUpdate struct {
	Name        *string `json:"name" validate:"omitempty"`
	Description *string `json:"description"`
	Traits      *string `json:"traits"`
}

// CharacterFilter задаёт необязательные фильтры выборки персонажей.
type CharacterFilter struct {
	ProjectID  *string
	DocumentID *string
}
