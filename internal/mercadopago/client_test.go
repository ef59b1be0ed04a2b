package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pixcharge/internal/config"
)

func testConfig(baseURL string) config.GatewayConfig {
	return config.GatewayConfig{
		AccessToken:    "test-token",
		BaseURL:        baseURL,
		Timeout:        5 * time.Second,
		PayerEmail:     "teste@email.com",
		PayerFirstName: "Fulano",
		PayerLastName:  "da Silva",
	}
}

func TestCreateCharge(t *testing.T) {
	expiresAt := time.Now().Add(7 * time.Minute)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payments" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header %q", got)
		}
		if r.Header.Get("X-Idempotency-Key") == "" {
			t.Error("missing X-Idempotency-Key header")
		}

		var req createPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.TransactionAmount != 10.5 {
			t.Errorf("transaction_amount %v", req.TransactionAmount)
		}
		if req.PaymentMethodID != "pix" {
			t.Errorf("payment_method_id %q", req.PaymentMethodID)
		}
		if req.Payer.Email != "teste@email.com" {
			t.Errorf("payer email %q", req.Payer.Email)
		}
		if !strings.HasSuffix(req.DateOfExpiration, "-03:00") {
			t.Errorf("date_of_expiration %q not in BRT offset", req.DateOfExpiration)
		}
		if _, err := time.Parse(expirationLayout, req.DateOfExpiration); err != nil {
			t.Errorf("date_of_expiration %q unparseable: %v", req.DateOfExpiration, err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{
			"id": 123456789,
			"status": "pending",
			"point_of_interaction": {
				"transaction_data": {
					"qr_code": "00020126pix-code",
					"qr_code_base64": "aW1hZ2U="
				}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	charge, err := client.CreateCharge(context.Background(), 10.5, "Pagamento do Pedido ORD1 via Pix", expiresAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if charge.PaymentID != "123456789" {
		t.Errorf("payment id %q", charge.PaymentID)
	}
	if charge.QRCode != "00020126pix-code" || charge.QRCodeBase64 != "aW1hZ2U=" {
		t.Errorf("qr payload %+v", charge)
	}
}

func TestCreateCharge_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "invalid access token", "error": "bad_request", "status": 400}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	_, err := client.CreateCharge(context.Background(), 10, "x", time.Now().Add(time.Minute))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "invalid access token") {
		t.Errorf("error %q does not surface the API message", err)
	}
}

func TestPaymentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/payments/123456789" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 123456789, "status": "approved"}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	status, err := client.PaymentStatus(context.Background(), "123456789")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "approved" {
		t.Errorf("status %q", status)
	}
}

func TestPaymentStatus_UnexpectedStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	if _, err := client.PaymentStatus(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error")
	}
}
