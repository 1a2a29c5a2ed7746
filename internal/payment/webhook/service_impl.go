package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/funildigital/checkout/internal/async"
	"github.com/funildigital/checkout/internal/config"
	"github.com/funildigital/checkout/internal/observability/metrics"
	orderdomain "github.com/funildigital/checkout/internal/order/domain"
	"github.com/funildigital/checkout/internal/payment/domain"
	"github.com/funildigital/checkout/internal/utmify"
)

// SignatureHeader carries the optional HMAC over the raw body.
const SignatureHeader = "X-Webhook-Signature"

// Result reports what a webhook delivery did. Known is false when the
// identifier resolves to no order; Applied is false when the delivery
// was a duplicate or an illegal transition.
type Result struct {
	Order   *orderdomain.Order
	Known   bool
	Applied bool
}

type Service interface {
	Ingest(ctx context.Context, payload []byte, signature string) (Result, error)
}

// notification is the gateway's postback shape. Identifier and status
// fields vary between gateway versions; the first non-empty one wins.
// Some versions nest the interesting fields under "data".
type notification struct {
	ID            string        `json:"id"`
	TransactionID string        `json:"transaction_id"`
	Hash          string        `json:"hash"`
	ExternalID    string        `json:"external_id"`
	Status        string        `json:"status"`
	PaymentStatus string        `json:"payment_status"`
	Event         string        `json:"event"`
	Data          *notification `json:"data,omitempty"`
}

func (n *notification) identifier() string {
	for _, candidate := range []string{n.Hash, n.TransactionID, n.ID, n.ExternalID} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	if n.Data != nil {
		return n.Data.identifier()
	}
	return ""
}

func (n *notification) statusWord() string {
	for _, candidate := range []string{n.PaymentStatus, n.Status, n.Event} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	if n.Data != nil {
		return n.Data.statusWord()
	}
	return ""
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	Orders  orderdomain.Repository
	Relay   utmify.Service
	Metrics *metrics.Metrics
}

type webhookService struct {
	db      *gorm.DB
	log     *zap.Logger
	cfg     config.Config
	orders  orderdomain.Repository
	relay   utmify.Service
	metrics *metrics.Metrics
}

func New(p Params) Service {
	return &webhookService{
		db:      p.DB,
		log:     p.Log.Named("payment.webhook"),
		cfg:     p.Cfg,
		orders:  p.Orders,
		relay:   p.Relay,
		metrics: p.Metrics,
	}
}

// Ingest applies one gateway postback. The operation is idempotent:
// re-delivering an already-applied status is a no-op, and a status that
// would move an order backwards is dropped.
func (s *webhookService) Ingest(ctx context.Context, payload []byte, signature string) (Result, error) {
	if err := s.verifySignature(payload, signature); err != nil {
		return Result{}, err
	}

	var note notification
	if err := json.Unmarshal(payload, &note); err != nil {
		return Result{}, domain.ErrInvalidPayload
	}

	externalID := note.identifier()
	if externalID == "" {
		return Result{}, domain.ErrInvalidPayload
	}
	if !orderdomain.ValidExternalID(externalID) {
		return Result{}, domain.ErrInvalidIdentifier
	}

	next := orderdomain.StatusFromGateway(note.statusWord())

	order, err := s.orders.FindByExternalID(ctx, s.db, externalID)
	if err != nil {
		return Result{}, err
	}
	if order == nil {
		s.log.Info("webhook for unknown order",
			zap.String("external_id", externalID),
			zap.String("status", string(next)),
		)
		s.metrics.WebhookEvent(ctx, string(next), "unknown_order")
		return Result{Known: false}, nil
	}

	if !orderdomain.CanTransition(order.Status, next) {
		s.log.Info("webhook ignored",
			zap.String("external_id", externalID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(next)),
		)
		s.metrics.WebhookEvent(ctx, string(next), "ignored")
		return Result{Order: order, Known: true, Applied: false}, nil
	}

	now := time.Now().UTC()
	var paidAt *time.Time
	if next == orderdomain.StatusPaid && order.PaidAt == nil {
		paidAt = &now
	}

	if err := s.orders.UpdateStatus(ctx, s.db, externalID, next, paidAt, now); err != nil {
		return Result{}, err
	}

	order.Status = next
	order.UpdatedAt = now
	if paidAt != nil {
		order.PaidAt = paidAt
	}

	s.log.Info("order status updated",
		zap.String("external_id", externalID),
		zap.String("status", string(next)),
	)
	s.metrics.WebhookEvent(ctx, string(next), "applied")

	if next == orderdomain.StatusPaid {
		s.detachRelay(order)
	}

	return Result{Order: order, Known: true, Applied: true}, nil
}

// verifySignature checks the optional HMAC-SHA256 over the raw body.
// Verification only applies when a secret is configured; deployments
// without one accept any caller, matching the gateway's default mode.
func (s *webhookService) verifySignature(payload []byte, signature string) error {
	secret := s.cfg.Gateway.WebhookSecret
	if secret == "" {
		return nil
	}

	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	provided, err := hex.DecodeString(signature)
	if err != nil || len(provided) == 0 {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

func (s *webhookService) detachRelay(order *orderdomain.Order) {
	async.Detach(s.log, "utmify.paid", func(ctx context.Context) error {
		_, err := s.relay.SendOrderEvent(ctx, order, utmify.TriggerPaid)
		outcome := "delivered"
		if err != nil {
			outcome = "failed"
		}
		s.metrics.RelayDelivery(ctx, string(utmify.TriggerPaid), outcome)
		return err
	})
}
