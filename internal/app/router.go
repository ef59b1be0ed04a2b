package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"pixcharge/internal/handler"
	"pixcharge/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client // nil when Redis is disabled
	NewRelicApp    *newrelic.Application
	StaticDir      string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Charge creation gets the idempotency shield; the webhook must not,
	// since every gateway re-delivery has to be re-processed.
	create := router.Group("/")
	if deps.RedisClient != nil {
		create.Use(middleware.Idempotency(deps.RedisClient))
	}
	create.POST("/criar-pagamento", deps.PaymentHandler.CreatePayment)

	router.POST("/webhook", deps.PaymentHandler.Webhook)
	router.GET("/check-payment-status/:paymentId", deps.PaymentHandler.CheckStatus)

	// Payment UI assets, when bundled with the server.
	if deps.StaticDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(deps.StaticDir))))
	}

	return router
}
