package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderdomain "github.com/funildigital/checkout/internal/order/domain"
	paymentdomain "github.com/funildigital/checkout/internal/payment/domain"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTooManyRequests = errors.New("too_many_requests")
	ErrInvalidRequest  = errors.New("invalid_request")
)

// errorResponse is the single error shape every endpoint returns.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorResponse) {
	var gatewayErr *paymentdomain.GatewayError

	switch {
	case errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidPaymentMethod),
		errors.Is(err, paymentdomain.ErrInvalidCustomer),
		errors.Is(err, paymentdomain.ErrInvalidCard),
		errors.Is(err, paymentdomain.ErrInvalidItems),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidIdentifier),
		errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorResponse{
			Error: "Dados de pagamento inválidos",
			Code:  errorCode(err),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorResponse{Error: "Unauthorized"}
	case errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorResponse{
			Error: "Pedido não encontrado",
			Code:  "not_found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorResponse{
			Error: "Muitas tentativas, aguarde um momento",
			Code:  "too_many_requests",
		}
	case errors.Is(err, paymentdomain.ErrMissingConfig):
		return http.StatusInternalServerError, errorResponse{
			Error: "Erro ao processar pagamento",
			Code:  "payment_config_missing",
		}
	case errors.As(err, &gatewayErr):
		message := gatewayErr.Message
		if message == "" {
			message = "Erro ao processar pagamento"
		}
		return http.StatusInternalServerError, errorResponse{
			Error: message,
			Code:  "gateway_error",
		}
	default:
		return http.StatusInternalServerError, errorResponse{
			Error: "Erro interno",
			Code:  "internal_error",
		}
	}
}

// errorCode exposes the sentinel's stable name to the client.
func errorCode(err error) string {
	for _, sentinel := range []error{
		paymentdomain.ErrInvalidAmount,
		paymentdomain.ErrInvalidPaymentMethod,
		paymentdomain.ErrInvalidCustomer,
		paymentdomain.ErrInvalidCard,
		paymentdomain.ErrInvalidItems,
		paymentdomain.ErrInvalidPayload,
		paymentdomain.ErrInvalidIdentifier,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if errors.Is(err, orderdomain.ErrInvalidID) {
		return "invalid_id"
	}
	return "invalid_request"
}
