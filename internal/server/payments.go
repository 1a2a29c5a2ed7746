package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/funildigital/checkout/internal/payment/domain"
)

// CreatePayment handles POST /api/payments.
func (s *Server) CreatePayment(c *gin.Context) {
	var raw paymentdomain.RawPaymentRequest
	if err := c.ShouldBindJSON(&raw); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	meta := paymentdomain.RequestMeta{ClientIP: c.ClientIP()}

	descriptor, err := s.paymentSvc.Create(c.Request.Context(), raw, meta)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, descriptor)
}
