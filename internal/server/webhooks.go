package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	paymentdomain "github.com/funildigital/checkout/internal/payment/domain"
	"github.com/funildigital/checkout/internal/payment/webhook"
)

// HandleGatewayWebhook handles POST /api/webhooks/gateway. The gateway
// retries on non-2xx, so anything past authentication and basic payload
// checks answers 200: a rejected-but-acknowledged event must not be
// re-delivered forever.
func (s *Server) HandleGatewayWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil || len(payload) == 0 {
		AbortWithError(c, paymentdomain.ErrInvalidPayload)
		return
	}

	signature := c.GetHeader(webhook.SignatureHeader)

	result, err := s.webhookSvc.Ingest(c.Request.Context(), payload, signature)
	switch {
	case err == nil:
	case errors.Is(err, paymentdomain.ErrInvalidSignature),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidIdentifier):
		AbortWithError(c, err)
		return
	default:
		// Storage hiccups still get acknowledged; a non-2xx here would
		// have the gateway re-deliver the same event in a tight loop.
		s.log.Error("webhook ingest failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if !result.Known {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order": gin.H{
			"id":     result.Order.ExternalID,
			"status": result.Order.Status,
		},
	})
}
