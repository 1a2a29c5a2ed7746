package utmify

import (
	"encoding/json"
	"fmt"
	"math"

	orderdomain "github.com/funildigital/checkout/internal/order/domain"
)

// OrderPayload is the vendor shape consumed by the attribution API.
type OrderPayload struct {
	OrderID            string            `json:"orderId"`
	Platform           string            `json:"platform"`
	PaymentMethod      string            `json:"paymentMethod"`
	Status             string            `json:"status"`
	CreatedAt          string            `json:"createdAt"`
	ApprovedDate       *string           `json:"approvedDate"`
	RefundedAt         *string           `json:"refundedAt"`
	Customer           CustomerPayload   `json:"customer"`
	TrackingParameters map[string]string `json:"trackingParameters"`
	Commission         CommissionPayload `json:"commission"`
	Products           []ProductPayload  `json:"products"`
	IsTest             bool              `json:"isTest"`
}

type CustomerPayload struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Document string  `json:"document"`
	Country  string  `json:"country"`
	IP       string  `json:"ip,omitempty"`
	LeadID   *string `json:"leadId,omitempty"`
}

type CommissionPayload struct {
	TotalPriceInCents     int64 `json:"totalPriceInCents"`
	GatewayFeeInCents     int64 `json:"gatewayFeeInCents"`
	UserCommissionInCents int64 `json:"userCommissionInCents"`
}

type ProductPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PlanID       *string `json:"planId"`
	PlanName     *string `json:"planName"`
	Quantity     int     `json:"quantity"`
	PriceInCents int64   `json:"priceInCents"`
}

// statusByOrderStatus maps the local enum onto the vendor vocabulary.
var statusByOrderStatus = map[orderdomain.Status]string{
	orderdomain.StatusPending:   "waiting_payment",
	orderdomain.StatusPaid:      "paid",
	orderdomain.StatusRefunded:  "refunded",
	orderdomain.StatusCancelled: "refused",
}

const vendorTimeLayout = "2006-01-02 15:04:05"

// BuildOrderPayload derives the vendor payload from stored order fields
// only, so a manual resend produces the same event the automatic path
// would have sent.
func BuildOrderPayload(order *orderdomain.Order, platform string) OrderPayload {
	status, ok := statusByOrderStatus[order.Status]
	if !ok {
		status = "waiting_payment"
	}

	var approvedDate *string
	if order.PaidAt != nil {
		formatted := order.PaidAt.UTC().Format(vendorTimeLayout)
		approvedDate = &formatted
	}
	var refundedAt *string
	if order.Status == orderdomain.StatusRefunded {
		formatted := order.UpdatedAt.UTC().Format(vendorTimeLayout)
		refundedAt = &formatted
	}

	var leadID *string
	if order.UtmifyLeadID != "" {
		value := order.UtmifyLeadID
		leadID = &value
	}

	totalCents := int64(math.Round(order.TotalAmount * 100))

	return OrderPayload{
		OrderID:       order.ExternalID,
		Platform:      platform,
		PaymentMethod: order.PaymentMethod,
		Status:        status,
		CreatedAt:     order.CreatedAt.UTC().Format(vendorTimeLayout),
		ApprovedDate:  approvedDate,
		RefundedAt:    refundedAt,
		Customer: CustomerPayload{
			Name:     order.CustomerName,
			Email:    order.CustomerEmail,
			Phone:    order.CustomerPhone,
			Document: order.CustomerDocument,
			Country:  "BR",
			IP:       order.ClientIP,
			LeadID:   leadID,
		},
		TrackingParameters: decodeTracking(order.UTMParams),
		Commission: CommissionPayload{
			TotalPriceInCents:     totalCents,
			UserCommissionInCents: totalCents,
		},
		Products: decodeProducts(order),
		IsTest:   false,
	}
}

func decodeTracking(raw []byte) map[string]string {
	tracking := map[string]string{}
	if len(raw) == 0 {
		return tracking
	}
	_ = json.Unmarshal(raw, &tracking)
	return tracking
}

func decodeProducts(order *orderdomain.Order) []ProductPayload {
	var items []orderdomain.Item
	if len(order.Products) > 0 {
		_ = json.Unmarshal(order.Products, &items)
	}

	products := make([]ProductPayload, 0, len(items))
	for i, item := range items {
		products = append(products, ProductPayload{
			ID:           fmt.Sprintf("%s-%d", order.ExternalID, i+1),
			Name:         item.Title,
			Quantity:     item.Quantity,
			PriceInCents: item.UnitPriceCents,
		})
	}
	return products
}
