package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/funildigital/checkout/internal/order/domain"
	"github.com/funildigital/checkout/internal/order/repository"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:ordersvc?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Order{}); err != nil {
		t.Fatal(err)
	}
	if err := db.Exec("DELETE FROM orders").Error; err != nil {
		t.Fatal(err)
	}

	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
	return svc, db, node
}

func seedOrder(t *testing.T, db *gorm.DB, node *snowflake.Node, externalID string) domain.Order {
	t.Helper()
	now := time.Now().UTC()
	order := domain.Order{
		ID:               node.Generate(),
		ExternalID:       externalID,
		CustomerName:     "Maria Silva",
		CustomerEmail:    "maria@example.com",
		CustomerDocument: "12345678909",
		CustomerPhone:    "11987654321",
		TotalAmount:      47.10,
		Status:           domain.StatusPending,
		PaymentMethod:    "pix",
		PixPayload:       "00020126330014br.gov.bcb.pix",
		Products:         []byte(`[]`),
		UTMParams:        []byte(`{}`),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repository.Provide().Insert(context.Background(), db, &order); err != nil {
		t.Fatal(err)
	}
	return order
}

func TestGetStatus(t *testing.T) {
	svc, db, node := newTestService(t)
	seedOrder(t, db, node, "tx-status-1")

	projection, err := svc.GetStatus(context.Background(), "tx-status-1")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, domain.StatusPending, projection.Status)
	assert.Equal(t, "Maria Silva", projection.CustomerName)
}

func TestGetStatus_InvalidID(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, id := range []string{"", "has spaces", "semi;colon", "a/b"} {
		_, err := svc.GetStatus(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrInvalidID, "id %q", id)
	}
}

func TestGetStatus_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetStatus(context.Background(), "tx-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByID(t *testing.T) {
	svc, db, node := newTestService(t)
	seeded := seedOrder(t, db, node, "tx-byid-1")

	order, err := svc.GetByID(context.Background(), seeded.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "tx-byid-1", order.ExternalID)

	_, err = svc.GetByID(context.Background(), "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestList_NewestFirst(t *testing.T) {
	svc, db, node := newTestService(t)

	older := seedOrder(t, db, node, "tx-list-1")
	if err := db.Exec(
		"UPDATE orders SET created_at = ? WHERE external_id = ?",
		older.CreatedAt.Add(-time.Hour), "tx-list-1",
	).Error; err != nil {
		t.Fatal(err)
	}
	seedOrder(t, db, node, "tx-list-2")

	orders, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if assert.Len(t, orders, 2) {
		assert.Equal(t, "tx-list-2", orders[0].ExternalID)
		assert.Equal(t, "tx-list-1", orders[1].ExternalID)
	}
}
