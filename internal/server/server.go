package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/funildigital/checkout/internal/catalog"
	"github.com/funildigital/checkout/internal/config"
	"github.com/funildigital/checkout/internal/observability/metrics"
	"github.com/funildigital/checkout/internal/order"
	orderdomain "github.com/funildigital/checkout/internal/order/domain"
	"github.com/funildigital/checkout/internal/payment"
	paymentdomain "github.com/funildigital/checkout/internal/payment/domain"
	"github.com/funildigital/checkout/internal/payment/webhook"
	"github.com/funildigital/checkout/internal/ratelimit"
	"github.com/funildigital/checkout/internal/utmify"
)

var Module = fx.Module("http.server",
	catalog.Module,
	metrics.Module,
	ratelimit.Module,
	utmify.Module,
	order.Module,
	payment.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	log            *zap.Logger
	paymentSvc     paymentdomain.Service
	webhookSvc     webhook.Service
	orderSvc       orderdomain.Service
	relay          utmify.Service
	catalog        *catalog.Holder
	paymentLimiter *ratelimit.PaymentLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	Log            *zap.Logger
	PaymentSvc     paymentdomain.Service
	WebhookSvc     webhook.Service
	OrderSvc       orderdomain.Service
	Relay          utmify.Service
	Catalog        *catalog.Holder
	PaymentLimiter *ratelimit.PaymentLimiter
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		log:            p.Log.Named("http.server"),
		paymentSvc:     p.PaymentSvc,
		webhookSvc:     p.WebhookSvc,
		orderSvc:       p.OrderSvc,
		relay:          p.Relay,
		catalog:        p.Catalog,
		paymentLimiter: p.PaymentLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/payments", s.PaymentRateLimit(), s.CreatePayment)
	api.POST("/webhooks/gateway", s.HandleGatewayWebhook)
	api.GET("/orders/:external_id/status", s.GetOrderStatus)

	api.GET("/products", s.ListProducts)
	api.GET("/shipping-options", s.ListShippingOptions)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin")

	admin.Use(s.AdminRequired())

	admin.GET("/orders", s.ListOrders)
	admin.GET("/orders/:id", s.GetOrderByID)
	admin.POST("/orders/:id/resend-utmify", s.ResendUtmify)
}
