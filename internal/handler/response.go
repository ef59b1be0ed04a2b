package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pixcharge/internal/repository"
	"pixcharge/internal/service"
)

// ErrorResponse is the wire format for errors. Field names are part of the
// public API consumed by the payment frontend.
type ErrorResponse struct {
	Erro     string `json:"erro"`
	Detalhes string `json:"detalhes,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	switch {
	// Validation errors - Bad Request, no side effects.
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrInvalidPaymentID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Erro: err.Error()})

	// Gateway failures surface the underlying message. No retry.
	case errors.Is(err, service.ErrGateway):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Erro:     "failed to create payment",
			Detalhes: err.Error(),
		})

	case errors.Is(err, repository.ErrAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Erro: err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Erro: err.Error()})
	}
}
