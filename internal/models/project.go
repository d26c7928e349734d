package models

import "time"

// Project представляет проект пользователя — контейнер для упорядоченных глав.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProjectWithChapters — проект вместе с главами в порядке orderIndex.
// Именно в таком виде проект отдаётся клиенту.
type ProjectWithChapters struct {
	Project
	Chapters []*Chapter `json:"chapters"`
}

// DummyProject используется для приёма данных нового проекта из JSON-запроса.
type DummyProject struct {
	Title string `json:"title" validate:"required"`
}

// ProjectUpdate описывает частичное обновление проекта.
type ProjectUpdate struct {
	Title *string `json:"title" validate:"omitempty"`
}
