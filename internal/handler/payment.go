package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pixcharge/internal/service"
)

// PaymentHandler handles HTTP requests for Pix charges.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for creating a charge.
type CreatePaymentRequest struct {
	Valor   float64 `json:"valor"`
	OrderID string  `json:"order_id"`
}

// CreatePaymentResponse carries the QR payload the frontend renders.
type CreatePaymentResponse struct {
	QRCodeBase64 string `json:"qr_code_base64"`
	QRCode       string `json:"qr_code"`
	PaymentID    string `json:"payment_id"`
	ExpiresAt    int64  `json:"expires_at"`
}

// CreatePayment handles POST /criar-pagamento
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Erro: "invalid request body"})
		return
	}

	result, err := h.paymentService.CreateCharge(c.Request.Context(), service.CreateChargeRequest{
		Amount:  req.Valor,
		OrderID: req.OrderID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CreatePaymentResponse{
		QRCodeBase64: result.QRCodeBase64,
		QRCode:       result.QRCode,
		PaymentID:    result.PaymentID,
		ExpiresAt:    result.ExpiresAt.UnixMilli(),
	})
}

// flexibleID tolerates both string and numeric payment ids in notifications.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// WebhookRequest is the gateway-defined notification shape.
type WebhookRequest struct {
	Type string `json:"type"`
	Data struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
}

// Webhook handles POST /webhook
//
// The gateway treats delivery as fire-and-forget: anything other than a
// success acknowledgment risks indefinite re-delivery, so this endpoint
// always answers 200 regardless of the processing outcome.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("webhook with unreadable body acknowledged: %v", err)
		c.String(http.StatusOK, "webhook received")
		return
	}

	h.paymentService.ProcessNotification(c.Request.Context(), req.Type, string(req.Data.ID))

	c.String(http.StatusOK, "webhook received")
}

// StatusResponse is the wire format for a status poll.
type StatusResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id,omitempty"`
}

// CheckStatus handles GET /check-payment-status/:paymentId
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	paymentID := c.Param("paymentId")

	result, err := h.paymentService.CheckStatus(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.Found {
		// Unknown ids are a valid steady state, not an error.
		c.JSON(http.StatusOK, StatusResponse{Status: "not_found"})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Status:  string(result.Status),
		OrderID: result.OrderID,
	})
}
