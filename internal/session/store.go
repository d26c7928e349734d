// Package session реализует серверные сессии на базе Redis.
// Ключом служит непрозрачный идентификатор, значением — ID пользователя.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound возвращается для отсутствующей или истёкшей сессии.
var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Store хранит сессии в Redis с автоматическим истечением по TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New создаёт хранилище сессий и проверяет доступность Redis.
func New(ctx context.Context, connectionString string, ttl time.Duration) (*Store, error) {
	const op = "session.New"

	opts, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

// NewWithClient оборачивает готовый клиент Redis. Используется в тестах.
func NewWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Create создаёт сессию для пользователя и возвращает её идентификатор.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	const op = "session.Create"

	sessionID := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+sessionID, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sessionID, nil
}

// Get возвращает ID пользователя по идентификатору сессии
// и продлевает её срок жизни.
func (s *Store) Get(ctx context.Context, sessionID string) (string, error) {
	const op = "session.Get"

	userID, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// Скользящее продление: активная сессия не истекает
	if err := s.client.Expire(ctx, keyPrefix+sessionID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userID, nil
}

// Delete завершает сессию. Удаление несуществующей сессии не ошибка.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	const op = "session.Delete"

	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAllForUser завершает все сессии пользователя. Вызывается
// при мягком удалении учётной записи.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) error {
	const op = "session.DeleteAllForUser"

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := s.client.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		if val == userID {
			if err := s.client.Del(ctx, key).Err(); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
