package models

import "time"

// WritingSample — образец письма пользователя, корпус для анализа стиля.
// WordCount вычисляется на сервере при создании.
type WritingSample struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	WordCount int       `json:"wordCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// DummySample используется для приёма нового образца из JSON-запроса.
type DummySample struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}
