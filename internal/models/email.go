package models

// WelcomeEmail — сообщение очереди о регистрации нового пользователя.
type WelcomeEmail struct {
	Email string `json:"email"`
}

// ContactMessage — сообщение очереди с обращением через форму обратной связи.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// DummyContact описывает запрос формы обратной связи.
type DummyContact struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}
