package models

import "time"

// Chapter представляет главу проекта.
//
// OrderIndex задаёт порядок отображения и навигации; значения не обязаны
// быть непрерывными.
type Chapter struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CursorPosition int       `json:"cursorPosition"`
	OrderIndex     int       `json:"orderIndex"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DummyChapter используется для приёма данных новой главы из JSON-запроса.
type DummyChapter struct {
	ProjectID  string `json:"projectId" validate:"required,uuid"`
	Title      string `json:"title" validate:"required"`
	Content    string `json:"content"`
	OrderIndex int    `json:"orderIndex" validate:"omitempty,gte=0"`
}

// ChapterUpdate описывает частичное обновление главы.
type ChapterUpdate struct {
	Title          *string `json:"title" validate:"omitempty"`
	Content        *string `json:"content"`
	CursorPosition *int    `json:"cursorPosition" validate:"omitempty,gte=0"`
	OrderIndex     *int    `json:"orderIndex" validate:"omitempty,gte=0"`
}
