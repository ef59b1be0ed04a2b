package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pixcharge/internal/domain"
	"pixcharge/internal/repository/memory"
	"pixcharge/internal/service"
)

// stubGateway is a minimal service.Gateway for handler tests.
type stubGateway struct {
	nextID    string
	status    string
	createErr error
	statusErr error
}

func (g *stubGateway) CreateCharge(ctx context.Context, amount float64, description string, expiresAt time.Time) (*domain.Charge, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &domain.Charge{
		PaymentID:    g.nextID,
		QRCode:       "pix-code-" + g.nextID,
		QRCodeBase64: "cGl4LWNvZGU=",
	}, nil
}

func (g *stubGateway) PaymentStatus(ctx context.Context, paymentID string) (string, error) {
	if g.statusErr != nil {
		return "", g.statusErr
	}
	return g.status, nil
}

func newTestRouter(repo *memory.PaymentRepository, gateway service.Gateway) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := service.NewPaymentService(repo, gateway, nil, nil, 7*time.Minute)
	h := NewPaymentHandler(svc)

	router := gin.New()
	router.POST("/criar-pagamento", h.CreatePayment)
	router.POST("/webhook", h.Webhook)
	router.GET("/check-payment-status/:paymentId", h.CheckStatus)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreatePayment_OK(t *testing.T) {
	repo := memory.NewPaymentRepository()
	router := newTestRouter(repo, &stubGateway{nextID: "P1"})

	before := time.Now()
	w := doJSON(t, router, http.MethodPost, "/criar-pagamento", `{"valor": 10.5, "order_id": "ORD1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp CreatePaymentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PaymentID != "P1" || resp.QRCode == "" || resp.QRCodeBase64 == "" {
		t.Errorf("unexpected response %+v", resp)
	}

	wantExpiry := before.Add(7 * time.Minute).UnixMilli()
	if diff := resp.ExpiresAt - wantExpiry; diff < -2000 || diff > 2000 {
		t.Errorf("expires_at %d, want about %d", resp.ExpiresAt, wantExpiry)
	}
}

func TestCreatePayment_ValidationErrors(t *testing.T) {
	router := newTestRouter(memory.NewPaymentRepository(), &stubGateway{nextID: "P1"})

	cases := []struct {
		name string
		body string
	}{
		{"zero amount", `{"valor": 0, "order_id": "ORD1"}`},
		{"negative amount", `{"valor": -5, "order_id": "ORD1"}`},
		{"missing order id", `{"valor": 10}`},
		{"malformed body", `{"valor": "ten"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/criar-pagamento", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Erro == "" {
				t.Error("expected an erro message")
			}
		})
	}
}

func TestCreatePayment_GatewayFailure(t *testing.T) {
	router := newTestRouter(memory.NewPaymentRepository(), &stubGateway{createErr: context.DeadlineExceeded})

	w := doJSON(t, router, http.MethodPost, "/criar-pagamento", `{"valor": 10, "order_id": "ORD1"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Erro == "" || resp.Detalhes == "" {
		t.Errorf("expected erro and detalhes, got %+v", resp)
	}
}

func TestWebhook_AlwaysAcknowledges(t *testing.T) {
	repo := memory.NewPaymentRepository()
	router := newTestRouter(repo, &stubGateway{status: "approved"})

	bodies := []string{
		`{"type": "payment", "data": {"id": "P-unknown"}}`, // unknown payment
		`{"type": "plan", "data": {"id": "X"}}`,            // ignorable type
		`{"type": "payment"}`,                              // no id
		`not json at all`,                                  // unreadable body
	}

	for _, body := range bodies {
		w := doJSON(t, router, http.MethodPost, "/webhook", body)
		if w.Code != http.StatusOK {
			t.Errorf("body %q: expected 200, got %d", body, w.Code)
		}
	}
}

func TestWebhook_NumericIDAccepted(t *testing.T) {
	repo := memory.NewPaymentRepository()
	router := newTestRouter(repo, &stubGateway{status: "approved"})

	err := repo.Create(context.Background(), &domain.Payment{
		ID:        "123456789",
		OrderID:   "ORD1",
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodPost, "/webhook", `{"type": "payment", "data": {"id": 123456789}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	payment, err := repo.GetByID(context.Background(), "123456789")
	if err != nil {
		t.Fatal(err)
	}
	if payment.Status != domain.StatusApproved {
		t.Errorf("expected approved, got %s", payment.Status)
	}
}

func TestCheckStatus_UnknownID(t *testing.T) {
	router := newTestRouter(memory.NewPaymentRepository(), &stubGateway{})

	w := doJSON(t, router, http.MethodGet, "/check-payment-status/garbage", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "not_found" {
		t.Errorf("expected not_found, got %s", resp.Status)
	}
}

func TestLifecycle_EndToEnd(t *testing.T) {
	repo := memory.NewPaymentRepository()
	gateway := &stubGateway{nextID: "P1", status: "in_process"}
	router := newTestRouter(repo, gateway)

	// Create.
	w := doJSON(t, router, http.MethodPost, "/criar-pagamento", `{"valor": 10.5, "order_id": "ORD1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", w.Code)
	}

	// First poll: pending.
	w = doJSON(t, router, http.MethodGet, "/check-payment-status/P1", "")
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "pending" {
		t.Fatalf("expected pending, got %s", resp.Status)
	}

	// Gateway approves, webhook arrives.
	gateway.status = "approved"
	w = doJSON(t, router, http.MethodPost, "/webhook", `{"type": "payment", "data": {"id": "P1"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("webhook: expected 200, got %d", w.Code)
	}

	// Second poll: approved, order id preserved.
	w = doJSON(t, router, http.MethodGet, "/check-payment-status/P1", "")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "approved" || resp.OrderID != "ORD1" {
		t.Errorf("expected approved/ORD1, got %+v", resp)
	}
}
