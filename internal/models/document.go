package models

import "time"

// Document представляет отдельный документ пользователя вне проектов.
//
// Content хранит разметку редактора как HTML-строку; CursorPosition —
// последняя известная позиция каретки, носит рекомендательный характер.
type Document struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CursorPosition int       `json:"cursorPosition"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DummyDocument используется для приёма данных нового документа из JSON-запроса.
type DummyDocument struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	CursorPosition int    `json:"cursorPosition" validate:"omitempty,gte=0"`
}

// DocumentUpdate описывает частичное обновление документа: nil-поля
// остаются нетронутыми.
type DocumentUpdate struct {
	Title          *string `json:"title" validate:"omitempty"`
	Content        *string `json:"content"`
	CursorPosition *int    `json:"cursorPosition" validate:"omitempty,gte=0"`
}
