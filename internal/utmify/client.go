package utmify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/funildigital/checkout/internal/config"
	orderdomain "github.com/funildigital/checkout/internal/order/domain"
	"go.uber.org/zap"
)

// Trigger names which lifecycle fact is being relayed.
type Trigger string

const (
	TriggerCheckout    Trigger = "checkout"
	TriggerPaid        Trigger = "paid"
	TriggerAdminResend Trigger = "admin_resend"
)

var ErrNotConfigured = errors.New("utmify_not_configured")

// Service forwards order lifecycle events to the attribution API.
// Delivery is best effort: callers either detach the call or treat the
// returned error as operator information, never as a payment failure.
type Service interface {
	SendOrderEvent(ctx context.Context, order *orderdomain.Order, trigger Trigger) (string, error)
}

type Client struct {
	httpClient *http.Client
	log        *zap.Logger
	cfg        config.UtmifyConfig
}

func NewClient(cfg config.Config, log *zap.Logger) Service {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.Named("utmify.client"),
		cfg:        cfg.Utmify,
	}
}

// SendOrderEvent posts the vendor payload once. No retry, no dead-letter:
// a lost event is an accepted cost (admin resend covers remediation).
func (c *Client) SendOrderEvent(ctx context.Context, order *orderdomain.Order, trigger Trigger) (string, error) {
	if order == nil {
		return "", errors.New("nil order")
	}
	if c.cfg.APIToken == "" {
		return "", ErrNotConfigured
	}

	payload := BuildOrderPayload(order, c.cfg.Platform)

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(encoded))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-token", c.cfg.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("utmify request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	text := string(body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("utmify rejected order event",
			zap.String("external_id", order.ExternalID),
			zap.String("trigger", string(trigger)),
			zap.Int("status", resp.StatusCode),
			zap.String("body", text),
		)
		return text, fmt.Errorf("utmify returned status %d", resp.StatusCode)
	}

	c.log.Info("utmify order event delivered",
		zap.String("external_id", order.ExternalID),
		zap.String("trigger", string(trigger)),
		zap.String("status", string(order.Status)),
	)
	return text, nil
}
