package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature возвращается для вебхука с неверной
// или устаревшей подписью.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Типы событий вебхуков, которые обрабатывает приложение.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaid         = "invoice.payment_succeeded"
)

// Event — входящее событие вебхука платёжной системы.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// SubscriptionEvent — объект подписки внутри события вебхука.
type SubscriptionEvent struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer"`
	Status     string `json:"status"`
	Items      struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// PriceID возвращает тарифный план из первой позиции подписки.
func (s *SubscriptionEvent) PriceID() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.ID
}

// signatureTolerance ограничивает возраст подписанного вебхука.
const signatureTolerance = 5 * time.Minute

// VerifySignature проверяет подпись вебхука в формате "t=...,v1=...".
// Подпись — HMAC-SHA256 от строки "{timestamp}.{payload}".
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	const op = "paymentprovider.VerifySignature"

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(expected), []byte(signature)) {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", op, ErrInvalidSignature)
}

// ParseEvent разбирает тело вебхука после проверки подписи.
func ParseEvent(payload []byte) (*Event, error) {
	const op = "paymentprovider.ParseEvent"

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &event, nil
}

// ParseSubscriptionEvent извлекает объект подписки из события.
func ParseSubscriptionEvent(event *Event) (*SubscriptionEvent, error) {
	const op = "paymentprovider.ParseSubscriptionEvent"

	var sub SubscriptionEvent
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}
