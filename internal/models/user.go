// Package models содержит доменные структуры приложения, а также
// вспомогательные типы для приёма данных из JSON-запросов до валидации.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Уровни подписки, открывающие доступ к функциям.
const (
	TierFree  = "free"
	TierBasic = "basic"
	TierPro   = "pro"
)

// User представляет зарегистрированного пользователя системы.
//
// DeletedAt — маркер мягкого удаления: строка никогда не удаляется
// физически, обычные выборки отфильтровывают помеченные записи.
type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	Role                  string     `json:"role"`             // user или admin
	SubscriptionTier      string     `json:"subscriptionTier"` // free, basic или pro
	PaymentCustomerID     *string    `json:"-"`                // Идентификатор клиента у платёжного провайдера
	PaymentSubscriptionID *string    `json:"-"`                // Идентификатор подписки у платёжного провайдера
	CreatedAt             time.Time  `json:"createdAt"`
	DeletedAt             *time.Time `json:"deletedAt,omitempty"`
}

// PublicUser — представление пользователя, отдаваемое наружу.
type PublicUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	SubscriptionTier string     `json:"subscriptionTier"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty"`
}

// Public возвращает внешнее представление пользователя.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:               u.ID,
		Email:            u.Email,
		Role:             u.Role,
		SubscriptionTier: u.SubscriptionTier,
		DeletedAt:        u.DeletedAt,
	}
}

// DummyCredentials используется для приёма email и пароля из JSON-запроса
// регистрации и входа.
type DummyCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ValidTier сообщает, является ли строка известным уровнем подписки.
func ValidTier(tier string) bool {
	return tier == TierFree || tier == TierBasic || tier == TierPro
}
