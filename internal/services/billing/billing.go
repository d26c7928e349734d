// Package billing связывает подписки пользователей с платёжным провайдером:
// оформление подписки и обработка событий вебхука.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/paymentprovider"
	"github.com/novawriterhq/novawriter/internal/storage"
)

// ErrInvalidTier возвращается для неизвестного тарифа или тарифа
// без настроенного идентификатора цены.
var ErrInvalidTier = errors.New("Invalid tier or price ID not configured")

// ErrInvalidSignature возвращается при неверной подписи вебхука.
var ErrInvalidSignature = paymentprovider.ErrInvalidSignature

// UserRepository — операции над пользователями, нужные биллингу.
type UserRepository interface {
	GetUserByPaymentCustomerID(ctx context.Context, customerID string) (*models.User, error)
	SetPaymentCustomerID(ctx context.Context, userID, customerID string) error
	SetPaymentSubscriptionID(ctx context.Context, userID, subscriptionID string) error
	UpdateUserTier(ctx context.Context, userID, tier, performedBy string) (*models.User, error)
}

// PaymentClient — клиент платёжного провайдера.
type PaymentClient interface {
	CreateCustomer(ctx context.Context, email string) (*paymentprovider.Customer, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*paymentprovider.Subscription, error)
}

// BillingService реализует оформление подписок и реакцию на события
// платёжного провайдера.
type BillingService struct {
	users          UserRepository
	payments       PaymentClient
	basicPriceID   string
	proPriceID     string
	webhookSecret  string
	siteOwnerEmail string
	log            *slog.Logger
}

// New создаёт BillingService.
func New(users UserRepository, payments PaymentClient, basicPriceID, proPriceID, webhookSecret, siteOwnerEmail string, log *slog.Logger) *BillingService {
	return &BillingService{
		users:          users,
		payments:       payments,
		basicPriceID:   basicPriceID,
		proPriceID:     proPriceID,
		webhookSecret:  webhookSecret,
		siteOwnerEmail: siteOwnerEmail,
		log:            log,
	}
}

// CheckoutResult — данные для завершения оплаты на стороне клиента.
type CheckoutResult struct {
	ClientSecret   string `json:"clientSecret"`
	SubscriptionID string `json:"subscriptionId"`
}

// priceIDForTier возвращает идентификатор цены для платного тарифа.
func (s *BillingService) priceIDForTier(tier string) (string, error) {
	switch tier {
	case models.TierBasic:
		if s.basicPriceID == "" {
			return "", ErrInvalidTier
		}
		return s.basicPriceID, nil
	case models.TierPro:
		if s.proPriceID == "" {
			return "", ErrInvalidTier
		}
		return s.proPriceID, nil
	default:
		return "", ErrInvalidTier
	}
}

// tierForPriceID — обратное соответствие; пустая строка для чужих цен.
func (s *BillingService) tierForPriceID(priceID string) string {
	switch priceID {
	case s.basicPriceID:
		return models.TierBasic
	case s.proPriceID:
		return models.TierPro
	default:
		return ""
	}
}

// Subscribe оформляет неоплаченную подписку на тариф и возвращает
// клиентский секрет для завершения платежа. Клиент у провайдера
// заводится лениво при первом оформлении.
func (s *BillingService) Subscribe(ctx context.Context, user *models.User, tier string) (*CheckoutResult, error) {
	const op = "billing.Subscribe"

	priceID, err := s.priceIDForTier(tier)
	if err != nil {
		return nil, err
	}

	customerID := ""
	if user.PaymentCustomerID != nil {
		customerID = *user.PaymentCustomerID
	}
	if customerID == "" {
		customer, err := s.payments.CreateCustomer(ctx, user.Email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		customerID = customer.ID
		if err := s.users.SetPaymentCustomerID(ctx, user.ID, customerID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	subscription, err := s.payments.CreateSubscription(ctx, customerID, priceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetPaymentSubscriptionID(ctx, user.ID, subscription.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.users.UpdateUserTier(ctx, user.ID, tier, ""); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &CheckoutResult{
		ClientSecret:   subscription.LatestInvoice.PaymentIntent.ClientSecret,
		SubscriptionID: subscription.ID,
	}, nil
}

// HandleWebhook проверяет подпись и применяет событие провайдера
// к тарифу пользователя. Неизвестные типы событий игнорируются.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	const op = "billing.HandleWebhook"

	if err := paymentprovider.VerifySignature(payload, signature, s.webhookSecret, time.Now()); err != nil {
		return err
	}

	event, err := paymentprovider.ParseEvent(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch event.Type {
	case paymentprovider.EventSubscriptionCreated, paymentprovider.EventSubscriptionUpdated:
		sub, err := paymentprovider.ParseSubscriptionEvent(event)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		tier := models.TierFree
		if sub.Status == "active" || sub.Status == "trialing" {
			tier = s.tierForPriceID(sub.PriceID())
			if tier == "" {
				s.log.Warn("webhook carries unknown price id",
					slog.String("priceId", sub.PriceID()))
				return nil
			}
		}
		return s.applyTier(ctx, sub.CustomerID, tier)
	case paymentprovider.EventSubscriptionDeleted:
		sub, err := paymentprovider.ParseSubscriptionEvent(event)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.applyTier(ctx, sub.CustomerID, models.TierFree)
	default:
		s.log.Debug("ignoring webhook event", slog.String("type", event.Type))
		return nil
	}
}

// applyTier меняет тариф пользователя по идентификатору клиента
// у провайдера. Тариф владельца сайта событиями не меняется.
func (s *BillingService) applyTier(ctx context.Context, customerID, tier string) error {
	const op = "billing.applyTier"

	user, err := s.users.GetUserByPaymentCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("webhook for unknown customer", slog.String("customerId", customerID))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.Email == s.siteOwnerEmail {
		return nil
	}
	if user.SubscriptionTier == tier {
		return nil
	}
	if _, err := s.users.UpdateUserTier(ctx, user.ID, tier, ""); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription tier updated by payment event",
		slog.String("userId", user.ID), slog.String("tier", tier))
	return nil
}
