package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/funildigital/checkout/internal/payment/domain"
)

// Field ceilings. Oversized free text is truncated, never rejected, so a
// hostile payload cannot grow rows or downstream requests.
const (
	maxNameLen     = 120
	maxEmailLen    = 160
	maxTextLen     = 200
	maxTitleLen    = 150
	maxTrackingLen = 255
	maxItems       = 50
	maxQuantity    = 1000
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// Normalize turns an untrusted payment request into a bounded Request or
// rejects it with a tagged error. It is pure: no I/O, no side effects,
// and it runs before any network call.
func Normalize(raw domain.RawPaymentRequest) (domain.Request, error) {
	if raw.Amount <= 0 || raw.Amount > domain.MaxAmountCents {
		return domain.Request{}, domain.ErrInvalidAmount
	}

	method := strings.TrimSpace(raw.PaymentMethod)
	if method != domain.MethodPix && method != domain.MethodCreditCard {
		return domain.Request{}, domain.ErrInvalidPaymentMethod
	}

	customer, err := normalizeCustomer(raw.Customer)
	if err != nil {
		return domain.Request{}, err
	}

	var card *domain.Card
	if method == domain.MethodCreditCard {
		card, err = normalizeCard(raw.Card)
		if err != nil {
			return domain.Request{}, err
		}
	}

	items, err := normalizeItems(raw.Items)
	if err != nil {
		return domain.Request{}, err
	}

	installments := raw.Installments
	if installments < 1 {
		installments = 1
	}
	if installments > 12 {
		installments = 12
	}

	return domain.Request{
		AmountCents:    raw.Amount,
		Method:         method,
		Customer:       customer,
		Card:           card,
		Installments:   installments,
		Items:          items,
		Tracking:       normalizeTracking(raw.Tracking),
		ShippingOption: truncate(strings.TrimSpace(raw.ShippingOption), maxTextLen),
		UtmifyLeadID:   truncate(strings.TrimSpace(raw.UtmifyLeadID), maxTextLen),
	}, nil
}

func normalizeCustomer(raw domain.RawCustomer) (domain.Customer, error) {
	name := strings.TrimSpace(raw.Name)
	if len(name) < 2 {
		return domain.Customer{}, domain.ErrInvalidCustomer
	}

	email := strings.TrimSpace(raw.Email)
	if !emailPattern.MatchString(email) || len(email) > maxEmailLen {
		return domain.Customer{}, domain.ErrInvalidCustomer
	}

	document := digits(raw.Document)
	if len(document) != 11 && len(document) != 14 {
		return domain.Customer{}, domain.ErrInvalidCustomer
	}

	phone := digits(raw.Phone)
	if len(phone) < 10 || len(phone) > 11 {
		return domain.Customer{}, domain.ErrInvalidCustomer
	}

	return domain.Customer{
		Name:         truncate(name, maxNameLen),
		Email:        email,
		Document:     document,
		Phone:        phone,
		StreetName:   truncate(strings.TrimSpace(raw.StreetName), maxTextLen),
		Number:       truncate(strings.TrimSpace(raw.Number), maxTextLen),
		Complement:   truncate(strings.TrimSpace(raw.Complement), maxTextLen),
		Neighborhood: truncate(strings.TrimSpace(raw.Neighborhood), maxTextLen),
		City:         truncate(strings.TrimSpace(raw.City), maxTextLen),
		State:        truncate(strings.TrimSpace(raw.State), maxTextLen),
		ZipCode:      digits(raw.ZipCode),
	}, nil
}

func normalizeCard(raw *domain.RawCard) (*domain.Card, error) {
	if raw == nil {
		return nil, domain.ErrInvalidCard
	}

	number := digits(raw.Number)
	if len(number) < 13 || len(number) > 19 {
		return nil, domain.ErrInvalidCard
	}

	holder := strings.TrimSpace(raw.HolderName)
	if len(holder) < 2 {
		return nil, domain.ErrInvalidCard
	}

	if raw.ExpMonth < 1 || raw.ExpMonth > 12 {
		return nil, domain.ErrInvalidCard
	}

	// Two-digit year floor; four-digit years are reduced first.
	year := raw.ExpYear
	if year >= 2000 {
		year -= 2000
	}
	if year < 24 || year > 99 {
		return nil, domain.ErrInvalidCard
	}

	cvv := digits(raw.CVV)
	if len(cvv) < 3 || len(cvv) > 4 {
		return nil, domain.ErrInvalidCard
	}

	return &domain.Card{
		Number:     number,
		HolderName: truncate(holder, maxNameLen),
		ExpMonth:   raw.ExpMonth,
		ExpYear:    year,
		CVV:        cvv,
	}, nil
}

// normalizeItems clamps instead of rejecting: a weird quantity or price
// becomes a sane one, only an empty cart is an error.
func normalizeItems(raw []domain.RawItem) ([]domain.Item, error) {
	if len(raw) == 0 {
		return nil, domain.ErrInvalidItems
	}
	if len(raw) > maxItems {
		raw = raw[:maxItems]
	}

	items := make([]domain.Item, 0, len(raw))
	for _, item := range raw {
		quantity := int(item.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		if quantity > maxQuantity {
			quantity = maxQuantity
		}

		unitPrice := item.UnitPrice
		if unitPrice < 0 {
			unitPrice = 0
		}

		title := truncate(strings.TrimSpace(item.Title), maxTitleLen)
		if title == "" {
			title = "item"
		}

		items = append(items, domain.Item{
			Title:          title,
			Quantity:       quantity,
			UnitPriceCents: unitPrice,
			OperationType:  item.OperationType,
		})
	}
	return items, nil
}

func normalizeTracking(raw map[string]string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	tracking := make(map[string]string, len(raw))
	for key, value := range raw {
		key = truncate(strings.TrimSpace(key), maxTextLen)
		if key == "" {
			continue
		}
		tracking[key] = truncate(strings.TrimSpace(value), maxTrackingLen)
	}
	return tracking
}

func digits(value string) string {
	return nonDigits.ReplaceAllString(value, "")
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	// Back up to a rune boundary so multibyte text is never cut mid-rune.
	cut := max
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}
