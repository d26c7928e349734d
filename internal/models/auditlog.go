package models

import "time"

// Действия, фиксируемые в журнале аудита.
const (
	AuditActionCreate             = "create"
	AuditActionUpdateRole         = "update_role"
	AuditActionUpdateSubscription = "update_subscription"
	AuditActionSoftDelete         = "soft_delete"
	AuditActionRestore            = "restore"
	AuditActionDeleteBlocked      = "delete_attempt_blocked"
)

// AuditLog — неизменяемая запись журнала аудита административных действий.
// Записи только добавляются; операций обновления и удаления не существует.
//
// UserID и PerformedBy становятся nil, если соответствующий пользователь
// был удалён физически (FK SET NULL) — сама запись при этом сохраняется.
type AuditLog struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"userId"`      // Пользователь, чьё состояние изменилось
	PerformedBy *string   `json:"performedBy"` // Кто выполнил действие
	Action      string    `json:"action"`
	EntityType  string    `json:"entityType"`
	EntityID    *string   `json:"entityId"`
	Details     string    `json:"details"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuditEntry — параметры новой записи журнала.
type AuditEntry struct {
	UserID      string
	PerformedBy string
	Action      string
	EntityType  string
	EntityID    string
	Details     string
}
