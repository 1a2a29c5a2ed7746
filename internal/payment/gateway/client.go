package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/funildigital/checkout/internal/config"
	"github.com/funildigital/checkout/internal/payment/domain"
	"go.uber.org/zap"
)

// Client talks to the external payment gateway's transaction API.
type Client struct {
	httpClient *http.Client
	log        *zap.Logger
	cfg        config.GatewayConfig
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.Named("payment.gateway"),
		cfg:        cfg.Gateway,
	}
}

type createTransactionRequest struct {
	Amount        int64             `json:"amount"`
	OfferHash     string            `json:"offer_hash,omitempty"`
	PaymentMethod string            `json:"payment_method"`
	Installments  int               `json:"installments,omitempty"`
	Customer      customerPayload   `json:"customer"`
	Cart          []cartLine        `json:"cart"`
	Card          *cardPayload      `json:"card,omitempty"`
	ExpireInMins  int               `json:"expire_in_minutes,omitempty"`
	PostbackURL   string            `json:"postback_url,omitempty"`
	Tracking      map[string]string `json:"tracking_parameters,omitempty"`
}

type customerPayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Document     string `json:"document"`
	PhoneNumber  string `json:"phone_number"`
	StreetName   string `json:"street_name,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
}

type cartLine struct {
	ProductHash   string `json:"product_hash,omitempty"`
	Title         string `json:"title"`
	Price         int64  `json:"price"`
	Quantity      int    `json:"quantity"`
	OperationType int    `json:"operation_type"`
	Tangible      bool   `json:"tangible"`
}

type cardPayload struct {
	Number          string `json:"number"`
	HolderName      string `json:"holder_name"`
	ExpirationMonth int    `json:"expiration_month"`
	ExpirationYear  int    `json:"expiration_year"`
	CVV             string `json:"cvv"`
}

type createTransactionResponse struct {
	Hash          string       `json:"hash"`
	TransactionID string       `json:"transaction_id"`
	PaymentStatus string       `json:"payment_status"`
	Status        string       `json:"status"`
	Pix           *pixResponse `json:"pix,omitempty"`
	Message       string       `json:"message,omitempty"`
	Error         string       `json:"error,omitempty"`
}

type pixResponse struct {
	QRCode         string `json:"pix_qr_code"`
	QRCodeBase64   string `json:"pix_qr_code_base64"`
	ExpirationDate string `json:"pix_expiration_date"`
}

// CreateTransaction performs the single outbound create call. There is no
// retry here; the caller surfaces failures to the client, which may retry.
func (c *Client) CreateTransaction(ctx context.Context, req domain.Request, postbackURL string) (*domain.Transaction, error) {
	body := createTransactionRequest{
		Amount:        req.AmountCents,
		OfferHash:     c.cfg.OfferHash,
		PaymentMethod: req.Method,
		Customer: customerPayload{
			Name:         req.Customer.Name,
			Email:        req.Customer.Email,
			Document:     req.Customer.Document,
			PhoneNumber:  req.Customer.Phone,
			StreetName:   req.Customer.StreetName,
			Number:       req.Customer.Number,
			Complement:   req.Customer.Complement,
			Neighborhood: req.Customer.Neighborhood,
			City:         req.Customer.City,
			State:        req.Customer.State,
			ZipCode:      req.Customer.ZipCode,
		},
		Cart:        buildCart(c.cfg.ProductHash, req.Items),
		PostbackURL: postbackURL,
		Tracking:    req.Tracking,
	}

	if req.Method == domain.MethodCreditCard {
		body.Installments = req.Installments
		if req.Card != nil {
			body.Card = &cardPayload{
				Number:          req.Card.Number,
				HolderName:      req.Card.HolderName,
				ExpirationMonth: req.Card.ExpMonth,
				ExpirationYear:  req.Card.ExpYear,
				CVV:             req.Card.CVV,
			}
		}
	} else {
		body.ExpireInMins = c.cfg.PixExpirationMins
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.cfg.APIURL, "/") + "/transactions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("gateway rejected transaction",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, &domain.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    vendorMessage(respBody),
		}
	}

	var decoded createTransactionResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	tx := &domain.Transaction{
		ExternalID: firstNonEmpty(decoded.Hash, decoded.TransactionID),
		Status:     firstNonEmpty(decoded.PaymentStatus, decoded.Status),
	}
	if decoded.Pix != nil {
		tx.PixPayload = decoded.Pix.QRCode
		tx.PixQRCode = decoded.Pix.QRCodeBase64
		if decoded.Pix.ExpirationDate != "" {
			if parsed, err := time.Parse(time.RFC3339, decoded.Pix.ExpirationDate); err == nil {
				tx.PixExpiresAt = parsed
			}
		}
	}

	return tx, nil
}

func buildCart(productHash string, items []domain.Item) []cartLine {
	cart := make([]cartLine, 0, len(items))
	for _, item := range items {
		cart = append(cart, cartLine{
			ProductHash:   productHash,
			Title:         item.Title,
			Price:         item.UnitPriceCents,
			Quantity:      item.Quantity,
			OperationType: item.OperationType,
			Tangible:      false,
		})
	}
	return cart
}

// vendorMessage pulls a human-readable message out of an error body
// without trusting its shape.
func vendorMessage(body []byte) string {
	var decoded createTransactionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ""
	}
	return firstNonEmpty(decoded.Message, decoded.Error)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
