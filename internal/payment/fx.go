package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/funildigital/checkout/internal/config"
	"github.com/funildigital/checkout/internal/payment/domain"
	"github.com/funildigital/checkout/internal/payment/gateway"
	"github.com/funildigital/checkout/internal/payment/service"
	"github.com/funildigital/checkout/internal/payment/webhook"
)

var Module = fx.Module("payment.service",
	fx.Provide(func(cfg config.Config, log *zap.Logger) domain.Gateway {
		return gateway.NewClient(cfg, log)
	}),
	fx.Provide(service.New),
	fx.Provide(webhook.New),
)
