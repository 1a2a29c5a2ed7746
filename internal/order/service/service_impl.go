package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/funildigital/checkout/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("order.service"),
		repo: p.Repo,
	}
}

// GetStatus is the polling read path. It returns the narrow projection
// only, so repeated client polls never see payment instrument data.
func (s *Service) GetStatus(ctx context.Context, externalID string) (domain.StatusProjection, error) {
	externalID = strings.TrimSpace(externalID)
	if !domain.ValidExternalID(externalID) {
		return domain.StatusProjection{}, domain.ErrInvalidID
	}

	order, err := s.repo.FindByExternalID(ctx, s.db, externalID)
	if err != nil {
		return domain.StatusProjection{}, err
	}
	if order == nil {
		return domain.StatusProjection{}, domain.ErrNotFound
	}

	return domain.StatusProjection{
		Status:           order.Status,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		CustomerDocument: order.CustomerDocument,
		CustomerPhone:    order.CustomerPhone,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Order, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Order{}, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}

	return *order, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}
	return orders, nil
}
