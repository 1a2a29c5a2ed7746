package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the closed order status vocabulary. Gateway wording is mapped
// onto it by StatusFromGateway; nothing else ever widens it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

// Order is the single source of truth for a checkout. Created once by
// payment creation, mutated only by webhook ingestion (status/paid_at).
type Order struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	ExternalID       string         `gorm:"uniqueIndex;not null" json:"external_id"`
	CustomerName     string         `gorm:"not null" json:"customer_name"`
	CustomerEmail    string         `gorm:"not null" json:"customer_email"`
	CustomerDocument string         `gorm:"not null" json:"customer_document"`
	CustomerPhone    string         `gorm:"not null" json:"customer_phone"`
	TotalAmount      float64        `gorm:"not null" json:"total_amount"`
	Status           Status         `gorm:"not null;default:'pending'" json:"status"`
	PaymentMethod    string         `gorm:"not null" json:"payment_method"`
	PaidAt           *time.Time     `json:"paid_at"`
	PixPayload       string         `json:"pix_payload,omitempty"`
	ShippingOption   string         `json:"shipping_option,omitempty"`
	ShippingPrice    float64        `json:"shipping_price"`
	StreetName       string         `json:"street_name,omitempty"`
	Number           string         `json:"number,omitempty"`
	Complement       string         `json:"complement,omitempty"`
	Neighborhood     string         `json:"neighborhood,omitempty"`
	City             string         `json:"city,omitempty"`
	State            string         `json:"state,omitempty"`
	ZipCode          string         `json:"zip_code,omitempty"`
	Products         datatypes.JSON `gorm:"type:jsonb;not null" json:"products"`
	UTMParams        datatypes.JSON `gorm:"type:jsonb;not null" json:"utm_params"`
	UtmifyLeadID     string         `json:"utmify_lead_id,omitempty"`
	ClientIP         string         `json:"client_ip,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// Item is the immutable line-item snapshot stored on the order. Prices
// stay in minor units; only the order total is denormalized to currency.
type Item struct {
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// statusByGatewayWord maps the gateway's free-form status/event wording
// onto the closed enum. Unknown words resolve to pending, which applies
// as a no-op.
var statusByGatewayWord = map[string]Status{
	"paid":         StatusPaid,
	"approved":     StatusPaid,
	"completed":    StatusPaid,
	"refunded":     StatusRefunded,
	"charged_back": StatusRefunded,
	"chargeback":   StatusRefunded,
	"cancelled":    StatusCancelled,
	"canceled":     StatusCancelled,
	"expired":      StatusCancelled,
	"failed":       StatusCancelled,
	"pending":      StatusPending,
	"waiting":      StatusPending,
}

// StatusFromGateway normalizes a gateway status or event name.
func StatusFromGateway(raw string) Status {
	status, ok := statusByGatewayWord[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return StatusPending
	}
	return status
}

// CanTransition reports whether a webhook may move an order from one
// status to another. Terminal states never revert; the only transition
// out of paid is a refund. Writing the same status again is a harmless
// no-op handled by the caller.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusPending:
		return true
	case StatusPaid:
		return to == StatusRefunded
	default:
		return false
	}
}

var externalIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidExternalID bounds the identifier shared with the gateway.
func ValidExternalID(id string) bool {
	return id != "" && len(id) <= 100 && externalIDPattern.MatchString(id)
}
