package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProducts handles GET /api/products.
func (s *Server) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": s.catalog.Products()})
}

// ListShippingOptions handles GET /api/shipping-options.
func (s *Server) ListShippingOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"shippingOptions": s.catalog.ShippingOptions()})
}
