package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/paymentprovider"
	"github.com/novawriterhq/novawriter/internal/storage"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserByPaymentCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetPaymentCustomerID(ctx context.Context, userID, customerID string) error {
	args := m.Called(ctx, userID, customerID)
	return args.Error(0)
}

func (m *MockUserRepository) SetPaymentSubscriptionID(ctx context.Context, userID, subscriptionID string) error {
	args := m.Called(ctx, userID, subscriptionID)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserTier(ctx context.Context, userID, tier, performedBy string) (*models.User, error) {
	args := m.Called(ctx, userID, tier, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) CreateCustomer(ctx context.Context, email string) (*paymentprovider.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Customer), args.Error(1)
}

func (m *MockPaymentClient) CreateSubscription(ctx context.Context, customerID, priceID string) (*paymentprovider.Subscription, error) {
	args := m.Called(ctx, customerID, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Subscription), args.Error(1)
}

const (
	testBasicPrice    = "price_basic"
	testProPrice      = "price_pro"
	testWebhookSecret = "whsec_test"
	testOwnerEmail    = "owner@novawriter.app"
)

func newService(users *MockUserRepository, payments *MockPaymentClient) *BillingService {
	return New(users, payments, testBasicPrice, testProPrice, testWebhookSecret, testOwnerEmail, slog.Default())
}

func subscriptionWithSecret(id, secret string) *paymentprovider.Subscription {
	sub := &paymentprovider.Subscription{ID: id, Status: "incomplete"}
	sub.LatestInvoice.PaymentIntent.ClientSecret = secret
	return sub
}

func TestBillingService_Subscribe(t *testing.T) {
	t.Run("новому клиенту заводится учётка у провайдера", func(t *testing.T) {
		users := new(MockUserRepository)
		payments := new(MockPaymentClient)

		payments.On("CreateCustomer", mock.Anything, "writer@example.com").
			Return(&paymentprovider.Customer{ID: "cus_1", Email: "writer@example.com"}, nil)
		users.On("SetPaymentCustomerID", mock.Anything, "user-1", "cus_1").Return(nil)
		payments.On("CreateSubscription", mock.Anything, "cus_1", testBasicPrice).
			Return(subscriptionWithSecret("sub_1", "pi_secret"), nil)
		users.On("SetPaymentSubscriptionID", mock.Anything, "user-1", "sub_1").Return(nil)
		users.On("UpdateUserTier", mock.Anything, "user-1", models.TierBasic, "").
			Return(&models.User{ID: "user-1", SubscriptionTier: models.TierBasic}, nil)

		result, err := newService(users, payments).Subscribe(context.Background(),
			&models.User{ID: "user-1", Email: "writer@example.com"}, models.TierBasic)
		require.NoError(t, err)
		assert.Equal(t, "pi_secret", result.ClientSecret)
		assert.Equal(t, "sub_1", result.SubscriptionID)
		users.AssertExpectations(t)
		payments.AssertExpectations(t)
	})

	t.Run("существующий клиент переиспользуется", func(t *testing.T) {
		users := new(MockUserRepository)
		payments := new(MockPaymentClient)

		customerID := "cus_known"
		payments.On("CreateSubscription", mock.Anything, "cus_known", testProPrice).
			Return(subscriptionWithSecret("sub_2", "pi_2"), nil)
		users.On("SetPaymentSubscriptionID", mock.Anything, "user-1", "sub_2").Return(nil)
		users.On("UpdateUserTier", mock.Anything, "user-1", models.TierPro, "").
			Return(&models.User{ID: "user-1"}, nil)

		_, err := newService(users, payments).Subscribe(context.Background(),
			&models.User{ID: "user-1", Email: "writer@example.com", PaymentCustomerID: &customerID},
			models.TierPro)
		require.NoError(t, err)
		payments.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("неизвестный тариф отклоняется", func(t *testing.T) {
		users := new(MockUserRepository)
		payments := new(MockPaymentClient)

		for _, tier := range []string{"free", "enterprise", ""} {
			_, err := newService(users, payments).Subscribe(context.Background(),
				&models.User{ID: "user-1"}, tier)
			assert.ErrorIs(t, err, ErrInvalidTier, tier)
		}
		payments.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("тариф без настроенной цены отклоняется", func(t *testing.T) {
		service := New(new(MockUserRepository), new(MockPaymentClient),
			"", testProPrice, testWebhookSecret, testOwnerEmail, slog.Default())

		_, err := service.Subscribe(context.Background(), &models.User{ID: "user-1"}, models.TierBasic)
		assert.ErrorIs(t, err, ErrInvalidTier)
	})
}

// signWebhook формирует тело и заголовок подписи вебхука.
func signWebhook(t *testing.T, payload []byte, secret string, at time.Time) string {
	t.Helper()
	timestamp := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func subscriptionEventPayload(eventType, customerID, status, priceID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": %q,
		"data": {"object": {
			"id": "sub_1",
			"customer": %q,
			"status": %q,
			"items": {"data": [{"price": {"id": %q}}]}
		}}
	}`, eventType, customerID, status, priceID))
}

func TestBillingService_HandleWebhook(t *testing.T) {
	t.Run("активная подписка переводит на тариф по цене", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByPaymentCustomerID", mock.Anything, "cus_1").
			Return(&models.User{ID: "user-1", Email: "writer@example.com", SubscriptionTier: models.TierFree}, nil)
		users.On("UpdateUserTier", mock.Anything, "user-1", models.TierPro, "").
			Return(&models.User{ID: "user-1"}, nil)

		payload := subscriptionEventPayload(paymentprovider.EventSubscriptionUpdated, "cus_1", "active", testProPrice)
		err := newService(users, new(MockPaymentClient)).HandleWebhook(context.Background(),
			payload, signWebhook(t, payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("неактивная подписка откатывает на бесплатный тариф", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByPaymentCustomerID", mock.Anything, "cus_1").
			Return(&models.User{ID: "user-1", Email: "writer@example.com", SubscriptionTier: models.TierPro}, nil)
		users.On("UpdateUserTier", mock.Anything, "user-1", models.TierFree, "").
			Return(&models.User{ID: "user-1"}, nil)

		payload := subscriptionEventPayload(paymentprovider.EventSubscriptionUpdated, "cus_1", "past_due", testProPrice)
		err := newService(users, new(MockPaymentClient)).HandleWebhook(context.Background(),
			payload, signWebhook(t, payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("удаление подписки откатывает на бесплатный тариф", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByPaymentCustomerID", mock.Anything, "cus_1").
			Return(&models.User{ID: "user-1", Email: "writer@example.com", SubscriptionTier: models.TierBasic}, nil)
		users.On("UpdateUserTier", mock.Anything, "user-1", models.TierFree, "").
			Return(&models.User{ID: "user-1"}, nil)

		payload := subscriptionEventPayload(paymentprovider.EventSubscriptionDeleted, "cus_1", "canceled", testBasicPrice)
		err := newService(users, new(MockPaymentClient)).HandleWebhook(context.Background(),
			payload, signWebhook(t, payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("тариф владельца сайта не меняется", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByPaymentCustomerID", mock.Anything, "cus_owner").
			Return(&models.User{ID: "owner-1", Email: testOwnerEmail, SubscriptionTier: models.TierPro}, nil)

		payload := subscriptionEventPayload(paymentprovider.EventSubscriptionDeleted, "cus_owner", "canceled", testProPrice)
		err := newService(users, new(MockPaymentClient)).HandleWebhook(context.Background(),
			payload, signWebhook(t, payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
		users.AssertNotCalled(t, "UpdateUserTier", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("неизвестный клиент игнорируется", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByPaymentCustomerID", mock.Anything, "cus_ghost").
			Return(nil, storage.ErrNotFound)

		payload := subscriptionEventPayload(paymentprovider.EventSubscriptionDeleted, "cus_ghost", "canceled", testProPrice)
		err := newService(users, new(MockPaymentClient)).HandleWebhook(context.Background(),
			payload, signWebhook(t, payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
	})

	t.Run("неверная подпись отклоняется до разбора события", func(t *testing.T) {
		users := new(MockUserRepository)

		payload := subscriptionEventPayload(paymentprovider.EventSubscriptionUpdated, "cus_1", "active", testProPrice)
		err := newService(users, new(MockPaymentClient)).HandleWebhook(context.Background(),
			payload, signWebhook(t, payload, "wrong_secret", time.Now()))
		assert.ErrorIs(t, err, ErrInvalidSignature)
		users.AssertNotCalled(t, "GetUserByPaymentCustomerID", mock.Anything, mock.Anything)
	})

	t.Run("посторонний тип события игнорируется", func(t *testing.T) {
		payload := []byte(`{"id": "evt_2", "type": "invoice.payment_succeeded", "data": {"object": {}}}`)
		err := newService(new(MockUserRepository), new(MockPaymentClient)).HandleWebhook(context.Background(),
			payload, signWebhook(t, payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
	})
}
