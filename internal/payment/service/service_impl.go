package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/funildigital/checkout/internal/async"
	"github.com/funildigital/checkout/internal/catalog"
	"github.com/funildigital/checkout/internal/config"
	"github.com/funildigital/checkout/internal/observability/metrics"
	orderdomain "github.com/funildigital/checkout/internal/order/domain"
	"github.com/funildigital/checkout/internal/payment/domain"
	"github.com/funildigital/checkout/internal/payment/validate"
	"github.com/funildigital/checkout/internal/utmify"
	"github.com/funildigital/checkout/pkg/db"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	Node    *snowflake.Node
	Gateway domain.Gateway
	Orders  orderdomain.Repository
	Catalog *catalog.Holder
	Relay   utmify.Service
	Metrics *metrics.Metrics
}

type paymentService struct {
	db      *gorm.DB
	log     *zap.Logger
	cfg     config.Config
	node    *snowflake.Node
	gateway domain.Gateway
	orders  orderdomain.Repository
	catalog *catalog.Holder
	relay   utmify.Service
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &paymentService{
		db:      p.DB,
		log:     p.Log.Named("payment.service"),
		cfg:     p.Cfg,
		node:    p.Node,
		gateway: p.Gateway,
		orders:  p.Orders,
		catalog: p.Catalog,
		relay:   p.Relay,
		metrics: p.Metrics,
	}
}

// Create validates the checkout payload, creates the gateway transaction
// and persists the order snapshot. Persistence and relay failures never
// surface to the buyer once the gateway accepted the charge.
func (s *paymentService) Create(ctx context.Context, raw domain.RawPaymentRequest, meta domain.RequestMeta) (domain.Descriptor, error) {
	req, err := validate.Normalize(raw)
	if err != nil {
		s.metrics.PaymentCreated(ctx, methodLabel(raw.PaymentMethod), "rejected")
		return domain.Descriptor{}, err
	}

	if s.cfg.Gateway.APIToken == "" {
		s.log.Error("payment gateway token is not configured")
		return domain.Descriptor{}, domain.ErrMissingConfig
	}

	shipping, shippingPriceCents := s.resolveShipping(req.ShippingOption)
	req.AmountCents += shippingPriceCents

	tx, err := s.gateway.CreateTransaction(ctx, req, s.cfg.Gateway.PostbackURL)
	if err != nil {
		s.metrics.PaymentCreated(ctx, req.Method, "gateway_error")
		return domain.Descriptor{}, err
	}

	externalID := tx.ExternalID
	if !orderdomain.ValidExternalID(externalID) {
		externalID = uuid.NewString()
		s.log.Warn("gateway returned unusable transaction id, generated local one",
			zap.String("external_id", externalID))
	}

	status := orderdomain.StatusFromGateway(tx.Status)
	now := time.Now().UTC()

	order := s.buildOrder(req, meta, tx, externalID, status, shipping, now)

	switch err := s.orders.Insert(ctx, s.db, order); {
	case err == nil:
		s.metrics.PaymentCreated(ctx, req.Method, "created")
	case db.IsDuplicateKeyErr(err):
		// The gateway re-issued a transaction hash we already hold.
		s.log.Warn("order already recorded", zap.String("external_id", externalID))
		s.metrics.PaymentCreated(ctx, req.Method, "duplicate")
	default:
		// The gateway charge already exists; losing the row is an
		// operational incident, not a buyer-facing failure.
		s.log.Error("order insert failed",
			zap.String("external_id", externalID),
			zap.Error(err),
		)
		s.metrics.PaymentCreated(ctx, req.Method, "insert_failed")
	}

	trigger := utmify.TriggerCheckout
	if status == orderdomain.StatusPaid {
		trigger = utmify.TriggerPaid
	}
	s.detachRelay(order, trigger)

	descriptor := domain.Descriptor{
		ExternalID: externalID,
		Status:     status,
		Amount:     req.AmountCents,
		Method:     req.Method,
	}
	if req.Method == domain.MethodPix {
		descriptor.Pix = &domain.PixDetails{
			Payload:      tx.PixPayload,
			QRCodeBase64: tx.PixQRCode,
			ExpiresAt:    tx.PixExpiresAt,
		}
	}
	return descriptor, nil
}

// resolveShipping maps the requested option to the catalog price. Unknown
// options ship free rather than failing the checkout.
func (s *paymentService) resolveShipping(optionID string) (catalog.ShippingOption, int64) {
	if optionID == "" {
		return catalog.ShippingOption{}, 0
	}
	option, ok := s.catalog.ShippingByID(optionID)
	if !ok {
		s.log.Warn("unknown shipping option requested", zap.String("option", optionID))
		return catalog.ShippingOption{ID: optionID}, 0
	}
	return option, option.PriceCents
}

func (s *paymentService) buildOrder(
	req domain.Request,
	meta domain.RequestMeta,
	tx *domain.Transaction,
	externalID string,
	status orderdomain.Status,
	shipping catalog.ShippingOption,
	now time.Time,
) *orderdomain.Order {
	items := make([]orderdomain.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.Item{
			Title:          item.Title,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	products, _ := json.Marshal(items)

	tracking := req.Tracking
	if tracking == nil {
		tracking = map[string]string{}
	}
	utmParams, _ := json.Marshal(tracking)

	order := &orderdomain.Order{
		ID:               s.node.Generate(),
		ExternalID:       externalID,
		CustomerName:     req.Customer.Name,
		CustomerEmail:    req.Customer.Email,
		CustomerDocument: req.Customer.Document,
		CustomerPhone:    req.Customer.Phone,
		TotalAmount:      float64(req.AmountCents) / 100,
		Status:           status,
		PaymentMethod:    req.Method,
		PixPayload:       tx.PixPayload,
		ShippingOption:   shipping.ID,
		ShippingPrice:    float64(shipping.PriceCents) / 100,
		StreetName:       req.Customer.StreetName,
		Number:           req.Customer.Number,
		Complement:       req.Customer.Complement,
		Neighborhood:     req.Customer.Neighborhood,
		City:             req.Customer.City,
		State:            req.Customer.State,
		ZipCode:          req.Customer.ZipCode,
		Products:         products,
		UTMParams:        utmParams,
		UtmifyLeadID:     req.UtmifyLeadID,
		ClientIP:         meta.ClientIP,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if status == orderdomain.StatusPaid {
		paidAt := now
		order.PaidAt = &paidAt
	}
	return order
}

// methodLabel keeps metric labels on the closed vocabulary even for
// rejected payloads.
func methodLabel(method string) string {
	switch method {
	case domain.MethodPix, domain.MethodCreditCard:
		return method
	default:
		return "unknown"
	}
}

func (s *paymentService) detachRelay(order *orderdomain.Order, trigger utmify.Trigger) {
	async.Detach(s.log, "utmify."+string(trigger), func(ctx context.Context) error {
		_, err := s.relay.SendOrderEvent(ctx, order, trigger)
		outcome := "delivered"
		if err != nil {
			outcome = "failed"
		}
		s.metrics.RelayDelivery(ctx, string(trigger), outcome)
		return err
	})
}
