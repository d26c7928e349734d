// Package paymentprovider реализует клиента платёжной системы:
// создание клиентов и подписок по тарифам, а также разбор и проверку
// подписи входящих вебхуков.
package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client — HTTP-клиент платёжной системы.
type Client struct {
	httpClient *http.Client
	secretKey  string
	apiURL     string
}

// New создаёт клиента платёжной системы. apiURL переопределяется в тестах.
func New(secretKey, apiURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		secretKey:  secretKey,
		apiURL:     strings.TrimRight(apiURL, "/"),
	}
}

// Customer — клиент платёжной системы.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Subscription — подписка платёжной системы. ClientSecret передаётся
// на фронтенд для подтверждения первого платежа.
type Subscription struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	CustomerID    string `json:"customer"`
	LatestInvoice struct {
		PaymentIntent struct {
			ClientSecret string `json:"client_secret"`
		} `json:"payment_intent"`
	} `json:"latest_invoice"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	const op = "paymentprovider.postForm"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s: %s", op, apiErr.Error.Message)
		}
		return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateCustomer создаёт клиента платёжной системы для пользователя.
func (c *Client) CreateCustomer(ctx context.Context, email string) (*Customer, error) {
	const op = "paymentprovider.CreateCustomer"

	form := url.Values{}
	form.Set("email", email)

	var customer Customer
	if err := c.postForm(ctx, "/v1/customers", form, &customer); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &customer, nil
}

// CreateSubscription создаёт незавершённую подписку на тариф.
// Первый платёж подтверждается на фронтенде по ClientSecret.
func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID string) (*Subscription, error) {
	const op = "paymentprovider.CreateSubscription"

	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("items[0][price]", priceID)
	form.Set("payment_behavior", "default_incomplete")
	form.Set("expand[]", "latest_invoice.payment_intent")

	var subscription Subscription
	if err := c.postForm(ctx, "/v1/subscriptions", form, &subscription); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &subscription, nil
}

// CancelSubscription отменяет подписку немедленно.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	const op = "paymentprovider.CancelSubscription"

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.apiURL+"/v1/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}
	return nil
}
