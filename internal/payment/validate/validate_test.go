package validate

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/funildigital/checkout/internal/payment/domain"
)

func validRaw() domain.RawPaymentRequest {
	return domain.RawPaymentRequest{
		Amount:        4710,
		PaymentMethod: domain.MethodPix,
		Customer: domain.RawCustomer{
			Name:     "Maria Silva",
			Email:    "maria@example.com",
			Document: "123.456.789-09",
			Phone:    "(11) 98765-4321",
		},
		Items: []domain.RawItem{
			{Title: "Kit Completo", Quantity: 1, UnitPrice: 4710},
		},
	}
}

func TestNormalize_Amount(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		wantErr error
	}{
		{"zero", 0, domain.ErrInvalidAmount},
		{"negative", -100, domain.ErrInvalidAmount},
		{"above ceiling", domain.MaxAmountCents + 1, domain.ErrInvalidAmount},
		{"at ceiling", domain.MaxAmountCents, nil},
		{"one cent", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw.Amount = tt.amount
			_, err := Normalize(raw)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNormalize_PaymentMethod(t *testing.T) {
	raw := validRaw()
	raw.PaymentMethod = "boleto"
	_, err := Normalize(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	raw.PaymentMethod = "  pix  "
	req, err := Normalize(raw)
	assert.NoError(t, err)
	assert.Equal(t, domain.MethodPix, req.Method)
}

func TestNormalize_DocumentDigits(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     string
		wantErr  bool
	}{
		{"formatted cpf", "123.456.789-09", "12345678909", false},
		{"bare cpf", "12345678909", "12345678909", false},
		{"formatted cnpj", "12.345.678/0001-95", "12345678000195", false},
		{"too short", "123", "", true},
		{"twelve digits", "123456789012", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw.Customer.Document = tt.document
			req, err := Normalize(raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, req.Customer.Document)
		})
	}
}

func TestNormalize_CustomerFields(t *testing.T) {
	raw := validRaw()
	raw.Customer.Name = " A "
	_, err := Normalize(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	raw = validRaw()
	raw.Customer.Email = "not-an-email"
	_, err = Normalize(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	raw = validRaw()
	raw.Customer.Phone = "123"
	_, err = Normalize(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	// Phone keeps only digits.
	raw = validRaw()
	req, err := Normalize(raw)
	assert.NoError(t, err)
	assert.Equal(t, "11987654321", req.Customer.Phone)
}

func TestNormalize_Card(t *testing.T) {
	base := func() domain.RawPaymentRequest {
		raw := validRaw()
		raw.PaymentMethod = domain.MethodCreditCard
		raw.Card = &domain.RawCard{
			Number:     "4111 1111 1111 1111",
			HolderName: "MARIA SILVA",
			ExpMonth:   12,
			ExpYear:    2030,
			CVV:        "123",
		}
		return raw
	}

	req, err := Normalize(base())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "4111111111111111", req.Card.Number)
	assert.Equal(t, 30, req.Card.ExpYear)

	raw := base()
	raw.Card = nil
	_, err = Normalize(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCard)

	raw = base()
	raw.Card.ExpMonth = 13
	_, err = Normalize(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCard)

	raw = base()
	raw.Card.ExpYear = 23
	_, err = Normalize(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCard)

	raw = base()
	raw.Card.Number = "1234"
	_, err = Normalize(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidCard)

	// PIX requests ignore the card entirely.
	raw = validRaw()
	raw.Card = &domain.RawCard{Number: "junk"}
	req, err = Normalize(raw)
	assert.NoError(t, err)
	assert.Nil(t, req.Card)
}

func TestNormalize_ItemClamping(t *testing.T) {
	raw := validRaw()
	raw.Items = []domain.RawItem{
		{Title: "", Quantity: 0, UnitPrice: -500},
		{Title: strings.Repeat("x", 300), Quantity: 5000, UnitPrice: 100},
	}

	req, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "item", req.Items[0].Title)
	assert.Equal(t, 1, req.Items[0].Quantity)
	assert.Equal(t, int64(0), req.Items[0].UnitPriceCents)

	assert.Len(t, req.Items[1].Title, 150)
	assert.Equal(t, 1000, req.Items[1].Quantity)
}

func TestNormalize_EmptyCart(t *testing.T) {
	raw := validRaw()
	raw.Items = nil
	_, err := Normalize(raw)
	if !errors.Is(err, domain.ErrInvalidItems) {
		t.Fatalf("expected ErrInvalidItems, got %v", err)
	}
}

func TestNormalize_InstallmentsClamped(t *testing.T) {
	raw := validRaw()
	raw.PaymentMethod = domain.MethodCreditCard
	raw.Card = &domain.RawCard{
		Number:     "4111111111111111",
		HolderName: "MARIA SILVA",
		ExpMonth:   1,
		ExpYear:    2031,
		CVV:        "1234",
	}

	raw.Installments = 0
	req, err := Normalize(raw)
	assert.NoError(t, err)
	assert.Equal(t, 1, req.Installments)

	raw.Installments = 48
	req, err = Normalize(raw)
	assert.NoError(t, err)
	assert.Equal(t, 12, req.Installments)
}

func TestNormalize_TrackingTruncated(t *testing.T) {
	raw := validRaw()
	raw.Tracking = map[string]string{
		"utm_source": strings.Repeat("a", 500),
		"   ":        "dropped",
	}

	req, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, req.Tracking, 1)
	assert.Len(t, req.Tracking["utm_source"], 255)
}

func TestNormalize_TruncatesOnRuneBoundary(t *testing.T) {
	raw := validRaw()
	// "x" shifts the accented runes so the 120-byte name ceiling lands
	// in the middle of one.
	raw.Customer.Name = "x" + strings.Repeat("ã", 100)
	raw.Customer.City = strings.Repeat("ç", 150)

	req, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}

	assert.True(t, utf8.ValidString(req.Customer.Name))
	assert.Equal(t, 119, len(req.Customer.Name))
	assert.True(t, utf8.ValidString(req.Customer.City))
	assert.LessOrEqual(t, len(req.Customer.City), 200)
}
