package domain

import (
	"context"
	"errors"
)

// StatusProjection is the narrow read returned to polling clients. It
// deliberately never includes payment instrument data or totals.
type StatusProjection struct {
	Status           Status `json:"status"`
	CustomerName     string `json:"customerName"`
	CustomerEmail    string `json:"customerEmail"`
	CustomerDocument string `json:"customerDocument"`
	CustomerPhone    string `json:"customerPhone"`
}

type Service interface {
	GetStatus(ctx context.Context, externalID string) (StatusProjection, error)
	GetByID(ctx context.Context, id string) (Order, error)
	List(ctx context.Context) ([]Order, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
