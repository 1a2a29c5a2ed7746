package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	orderdomain "github.com/funildigital/checkout/internal/order/domain"
)

const (
	MethodPix        = "pix"
	MethodCreditCard = "credit_card"
)

// MaxAmountCents is the hard ceiling on a single payment, in minor units.
const MaxAmountCents = 100_000_000

// RawPaymentRequest mirrors the untrusted checkout payload as posted by
// the browser. Normalize is the only way to turn it into a Request.
type RawPaymentRequest struct {
	Amount         int64             `json:"amount"`
	PaymentMethod  string            `json:"paymentMethod"`
	Customer       RawCustomer       `json:"customer"`
	Card           *RawCard          `json:"card,omitempty"`
	Installments   int               `json:"installments,omitempty"`
	Items          []RawItem         `json:"items"`
	Tracking       map[string]string `json:"tracking,omitempty"`
	ShippingOption string            `json:"shippingOption,omitempty"`
	UtmifyLeadID   string            `json:"utmifyLeadId,omitempty"`
}

type RawCustomer struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Document     string `json:"document"`
	Phone        string `json:"phone"`
	StreetName   string `json:"streetName,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zipCode,omitempty"`
}

type RawCard struct {
	Number     string `json:"number"`
	HolderName string `json:"holderName"`
	ExpMonth   int    `json:"expMonth"`
	ExpYear    int    `json:"expYear"`
	CVV        string `json:"cvv"`
}

type RawItem struct {
	Title         string  `json:"title"`
	Quantity      float64 `json:"quantity"`
	UnitPrice     int64   `json:"unitPrice"`
	OperationType int     `json:"operationType,omitempty"`
}

// Request is the normalized, bounded payment request. Every field has
// passed validation; free text is already truncated.
type Request struct {
	AmountCents    int64
	Method         string
	Customer       Customer
	Card           *Card
	Installments   int
	Items          []Item
	Tracking       map[string]string
	ShippingOption string
	UtmifyLeadID   string
}

type Customer struct {
	Name         string
	Email        string
	Document     string
	Phone        string
	StreetName   string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
}

type Card struct {
	Number     string
	HolderName string
	ExpMonth   int
	ExpYear    int
	CVV        string
}

type Item struct {
	Title          string
	Quantity       int
	UnitPriceCents int64
	OperationType  int
}

// RequestMeta carries correlation data captured at the HTTP layer.
type RequestMeta struct {
	ClientIP string
}

// PixDetails is the client-usable PIX descriptor.
type PixDetails struct {
	Payload      string    `json:"payload"`
	QRCodeBase64 string    `json:"qrCodeBase64,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Descriptor is what the browser receives after a successful creation.
type Descriptor struct {
	ExternalID string             `json:"id"`
	Status     orderdomain.Status `json:"status"`
	Amount     int64              `json:"amount"`
	Method     string             `json:"paymentMethod"`
	Pix        *PixDetails        `json:"pix,omitempty"`
}

// Transaction is the canonical result of a gateway create call.
type Transaction struct {
	ExternalID   string
	Status       string
	PixPayload   string
	PixQRCode    string
	PixExpiresAt time.Time
}

// Gateway creates transactions against the external payment provider.
type Gateway interface {
	CreateTransaction(ctx context.Context, req Request, postbackURL string) (*Transaction, error)
}

type Service interface {
	Create(ctx context.Context, raw RawPaymentRequest, meta RequestMeta) (Descriptor, error)
}

var (
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidCard          = errors.New("invalid_card")
	ErrInvalidItems         = errors.New("invalid_items")
	ErrMissingConfig        = errors.New("payment_config_missing")
	ErrInvalidPayload       = errors.New("invalid_payload")
	ErrInvalidIdentifier    = errors.New("invalid_identifier")
	ErrInvalidSignature     = errors.New("invalid_signature")
)

// GatewayError surfaces an upstream rejection with the vendor message
// when one was available, behind a stable local type.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Message)
}
