package models

import "time"

// StyleProfile — результат анализа стиля письма пользователя.
// У пользователя не бывает больше одного профиля; повторный анализ
// перезаписывает поля, история версий не ведётся.
type StyleProfile struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	StyleAnalysis     string    `json:"styleAnalysis"`
	Tone              string    `json:"tone"`
	Vocabulary        string    `json:"vocabulary"`
	SentenceStructure string    `json:"sentenceStructure"`
	Pacing            string    `json:"pacing"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// StyleProfileData — извлечённые из ответа модели поля профиля,
// без идентификаторов и временных меток.
type StyleProfileData struct {
	StyleAnalysis     string
	Tone              string
	Vocabulary        string
	SentenceStructure string
	Pacing            string
}
