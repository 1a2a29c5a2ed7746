package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetOrderStatus handles GET /api/orders/:external_id/status. This is
// the polling endpoint the checkout page hits while waiting for the PIX
// payment to clear.
func (s *Server) GetOrderStatus(c *gin.Context) {
	projection, err := s.orderSvc.GetStatus(c.Request.Context(), c.Param("external_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, projection)
}
