package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*Order, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, externalID string, status Status, paidAt *time.Time, updatedAt time.Time) error
	List(ctx context.Context, db *gorm.DB) ([]*Order, error)
}
