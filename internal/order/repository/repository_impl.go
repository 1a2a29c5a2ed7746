package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/funildigital/checkout/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, external_id, customer_name, customer_email, customer_document, customer_phone,
			total_amount, status, payment_method, paid_at, pix_payload,
			shipping_option, shipping_price,
			street_name, number, complement, neighborhood, city, state, zip_code,
			products, utm_params, utmify_lead_id, client_ip, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.ExternalID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerDocument,
		order.CustomerPhone,
		order.TotalAmount,
		order.Status,
		order.PaymentMethod,
		order.PaidAt,
		order.PixPayload,
		order.ShippingOption,
		order.ShippingPrice,
		order.StreetName,
		order.Number,
		order.Complement,
		order.Neighborhood,
		order.City,
		order.State,
		order.ZipCode,
		order.Products,
		order.UTMParams,
		order.UtmifyLeadID,
		order.ClientIP,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("external_id = ?", externalID).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, externalID string, status domain.Status, paidAt *time.Time, updatedAt time.Time) error {
	if paidAt != nil {
		return db.WithContext(ctx).Exec(
			`UPDATE orders SET status = ?, paid_at = ?, updated_at = ? WHERE external_id = ?`,
			status,
			paidAt,
			updatedAt,
			externalID,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE external_id = ?`,
		status,
		updatedAt,
		externalID,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
