package utmify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	orderdomain "github.com/funildigital/checkout/internal/order/domain"
)

func sampleOrder() *orderdomain.Order {
	created := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return &orderdomain.Order{
		ExternalID:       "tx-1",
		CustomerName:     "Maria Silva",
		CustomerEmail:    "maria@example.com",
		CustomerDocument: "12345678909",
		CustomerPhone:    "11987654321",
		TotalAmount:      47.10,
		Status:           orderdomain.StatusPending,
		PaymentMethod:    "pix",
		Products:         []byte(`[{"title":"Kit Completo","quantity":1,"unit_price_cents":4710}]`),
		UTMParams:        []byte(`{"utm_source":"facebook"}`),
		ClientIP:         "203.0.113.7",
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func TestBuildOrderPayload_StatusMapping(t *testing.T) {
	tests := []struct {
		status orderdomain.Status
		want   string
	}{
		{orderdomain.StatusPending, "waiting_payment"},
		{orderdomain.StatusPaid, "paid"},
		{orderdomain.StatusRefunded, "refunded"},
		{orderdomain.StatusCancelled, "refused"},
	}

	for _, tt := range tests {
		order := sampleOrder()
		order.Status = tt.status
		payload := BuildOrderPayload(order, "FunilDigital")
		assert.Equal(t, tt.want, payload.Status, "status %s", tt.status)
	}
}

func TestBuildOrderPayload_Fields(t *testing.T) {
	order := sampleOrder()
	paidAt := time.Date(2026, 8, 30, 12, 5, 0, 0, time.UTC)
	order.Status = orderdomain.StatusPaid
	order.PaidAt = &paidAt

	payload := BuildOrderPayload(order, "FunilDigital")

	assert.Equal(t, "tx-1", payload.OrderID)
	assert.Equal(t, "FunilDigital", payload.Platform)
	assert.Equal(t, int64(4710), payload.Commission.TotalPriceInCents)
	if assert.NotNil(t, payload.ApprovedDate) {
		assert.Equal(t, "2026-08-30 12:05:00", *payload.ApprovedDate)
	}
	assert.Nil(t, payload.RefundedAt)
	assert.Equal(t, "facebook", payload.TrackingParameters["utm_source"])
	if assert.Len(t, payload.Products, 1) {
		assert.Equal(t, "Kit Completo", payload.Products[0].Name)
		assert.Equal(t, int64(4710), payload.Products[0].PriceInCents)
	}
	assert.Equal(t, "BR", payload.Customer.Country)
	assert.Equal(t, "203.0.113.7", payload.Customer.IP)
}

func TestBuildOrderPayload_PendingHasNoApprovedDate(t *testing.T) {
	payload := BuildOrderPayload(sampleOrder(), "FunilDigital")
	assert.Nil(t, payload.ApprovedDate)
	assert.Equal(t, "2026-08-30 12:00:00", payload.CreatedAt)
}
