package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/funildigital/checkout/internal/utmify"
)

// ListOrders handles GET /api/admin/orders.
func (s *Server) ListOrders(c *gin.Context) {
	orders, err := s.orderSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderByID handles GET /api/admin/orders/:id.
func (s *Server) GetOrderByID(c *gin.Context) {
	order, err := s.orderSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ResendUtmify handles POST /api/admin/orders/:id/resend-utmify. The
// relay call runs inline so the operator sees the vendor's verbatim
// answer.
func (s *Server) ResendUtmify(c *gin.Context) {
	order, err := s.orderSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	response, err := s.relay.SendOrderEvent(c.Request.Context(), &order, utmify.TriggerAdminResend)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":  false,
			"error":    err.Error(),
			"response": response,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"response": response,
	})
}
