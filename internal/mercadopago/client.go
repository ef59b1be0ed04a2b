// Package mercadopago implements the charge gateway client against the
// Mercado Pago payments API.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"pixcharge/internal/config"
	"pixcharge/internal/domain"
)

// Brazilian offset used for charge expiration timestamps, matching the
// format the payments API expects.
var brt = time.FixedZone("BRT", -3*60*60)

const expirationLayout = "2006-01-02T15:04:05.000-07:00"

// Client calls the Mercado Pago payments API.
type Client struct {
	accessToken     string
	baseURL         string
	notificationURL string
	payer           payer
	httpClient      *http.Client
}

// NewClient creates a gateway client from configuration.
func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		accessToken:     cfg.AccessToken,
		baseURL:         cfg.BaseURL,
		notificationURL: cfg.NotificationURL,
		payer: payer{
			Email:     cfg.PayerEmail,
			FirstName: cfg.PayerFirstName,
			LastName:  cfg.PayerLastName,
		},
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type payer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type createPaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             payer   `json:"payer"`
	DateOfExpiration  string  `json:"date_of_expiration"`
	NotificationURL   string  `json:"notification_url,omitempty"`
}

type transactionData struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

type paymentResponse struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	PointOfInteraction struct {
		TransactionData transactionData `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

// CreateCharge creates a Pix charge expiring at expiresAt and returns the
// gateway-assigned payment id together with the QR payload.
func (c *Client) CreateCharge(ctx context.Context, amount float64, description string, expiresAt time.Time) (*domain.Charge, error) {
	reqBody := createPaymentRequest{
		TransactionAmount: amount,
		Description:       description,
		PaymentMethodID:   "pix",
		Payer:             c.payer,
		DateOfExpiration:  expiresAt.In(brt).Format(expirationLayout),
		NotificationURL:   c.notificationURL,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode create payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	// The API rejects duplicate keys, so a fresh key per attempt mirrors
	// the service's no-retry policy.
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	var created paymentResponse
	if err := c.do(req, &created); err != nil {
		return nil, err
	}

	return &domain.Charge{
		PaymentID:    strconv.FormatInt(created.ID, 10),
		QRCode:       created.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: created.PointOfInteraction.TransactionData.QRCodeBase64,
	}, nil
}

// PaymentStatus fetches the authoritative status of a payment.
func (c *Client) PaymentStatus(ctx context.Context, paymentID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	var payment paymentResponse
	if err := c.do(req, &payment); err != nil {
		return "", err
	}

	return payment.Status, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mercadopago: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mercadopago: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("mercadopago: %s (status %d)", apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("mercadopago: unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("mercadopago: decode response: %w", err)
	}

	return nil
}
