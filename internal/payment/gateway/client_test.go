package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/funildigital/checkout/internal/config"
	"github.com/funildigital/checkout/internal/payment/domain"
)

func testConfig(url string) config.Config {
	return config.Config{
		Gateway: config.GatewayConfig{
			APIURL:            url,
			APIToken:          "token-123",
			OfferHash:         "offer-1",
			ProductHash:       "prod-1",
			PixExpirationMins: 30,
		},
	}
}

func testRequest() domain.Request {
	return domain.Request{
		AmountCents: 4710,
		Method:      domain.MethodPix,
		Customer: domain.Customer{
			Name:     "Maria Silva",
			Email:    "maria@example.com",
			Document: "12345678909",
			Phone:    "11987654321",
		},
		Items: []domain.Item{
			{Title: "Kit Completo", Quantity: 1, UnitPriceCents: 4710},
		},
	}
}

func TestCreateTransaction_Pix(t *testing.T) {
	var captured map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Error(err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hash": "tx-abc",
			"payment_status": "waiting",
			"pix": {
				"pix_qr_code": "00020126330014br.gov.bcb.pix",
				"pix_qr_code_base64": "aGVsbG8=",
				"pix_expiration_date": "2026-08-31T12:00:00Z"
			}
		}`))
	}))
	defer ts.Close()

	client := NewClient(testConfig(ts.URL), zap.NewNop())

	tx, err := client.CreateTransaction(context.Background(), testRequest(), "https://shop.test/postback")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "tx-abc", tx.ExternalID)
	assert.Equal(t, "waiting", tx.Status)
	assert.Equal(t, "00020126330014br.gov.bcb.pix", tx.PixPayload)
	assert.Equal(t, "aGVsbG8=", tx.PixQRCode)
	assert.Equal(t, 2026, tx.PixExpiresAt.Year())

	assert.Equal(t, float64(4710), captured["amount"])
	assert.Equal(t, "offer-1", captured["offer_hash"])
	assert.Equal(t, float64(30), captured["expire_in_minutes"])
	assert.Equal(t, "https://shop.test/postback", captured["postback_url"])

	cart, ok := captured["cart"].([]any)
	if assert.True(t, ok) && assert.Len(t, cart, 1) {
		line := cart[0].(map[string]any)
		assert.Equal(t, "prod-1", line["product_hash"])
	}
}

func TestCreateTransaction_CardBody(t *testing.T) {
	var captured map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"transaction_id":"tx-card","status":"approved"}`))
	}))
	defer ts.Close()

	client := NewClient(testConfig(ts.URL), zap.NewNop())

	req := testRequest()
	req.Method = domain.MethodCreditCard
	req.Installments = 3
	req.Card = &domain.Card{
		Number:     "4111111111111111",
		HolderName: "MARIA SILVA",
		ExpMonth:   12,
		ExpYear:    30,
		CVV:        "123",
	}

	tx, err := client.CreateTransaction(context.Background(), req, "")
	if err != nil {
		t.Fatal(err)
	}

	// transaction_id backfills when hash is absent.
	assert.Equal(t, "tx-card", tx.ExternalID)
	assert.Equal(t, "approved", tx.Status)

	assert.Equal(t, float64(3), captured["installments"])
	card, ok := captured["card"].(map[string]any)
	if assert.True(t, ok) {
		assert.Equal(t, "4111111111111111", card["number"])
	}
	_, hasExpire := captured["expire_in_minutes"]
	assert.False(t, hasExpire, "card requests carry no pix expiration")
}

func TestCreateTransaction_VendorRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"cartão recusado"}`))
	}))
	defer ts.Close()

	client := NewClient(testConfig(ts.URL), zap.NewNop())

	_, err := client.CreateTransaction(context.Background(), testRequest(), "")

	var gatewayErr *domain.GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	assert.Equal(t, http.StatusUnprocessableEntity, gatewayErr.StatusCode)
	assert.Equal(t, "cartão recusado", gatewayErr.Message)
}
