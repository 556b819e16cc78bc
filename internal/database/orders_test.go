package database

import (
	"context"
	"testing"

	"vantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	order := &models.PurchaseOrder{
		Reference: "po-abc123",
		Message:   "Shopping list:\n- Buns x5",
		Lines: []models.OrderLine{
			{ItemID: 1, ItemName: "Buns", Category: "Buns & Chips", Quantity: 5},
		},
	}

	require.NoError(t, db.CreatePurchaseOrder(ctx, order))
	require.NotZero(t, order.ID)

	got, err := db.GetPurchaseOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Reference, got.Reference)
	assert.Equal(t, order.Message, got.Message)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Buns", got.Lines[0].ItemName)
	assert.Equal(t, int64(5), got.Lines[0].Quantity)

	byRef, err := db.GetPurchaseOrderByReference(ctx, "po-abc123")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byRef.ID)
}

func TestPurchaseOrderNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetPurchaseOrder(context.Background(), 42)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = db.GetPurchaseOrderByReference(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListRecentOrders(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, ref := range []string{"po-1", "po-2", "po-3"} {
		require.NoError(t, db.CreatePurchaseOrder(ctx, &models.PurchaseOrder{
			Reference: ref,
			Message:   "m",
			Lines:     []models.OrderLine{},
		}))
	}

	orders, err := db.ListRecentOrders(ctx, 2)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "po-3", orders[0].Reference)
	assert.Equal(t, "po-2", orders[1].Reference)
}
