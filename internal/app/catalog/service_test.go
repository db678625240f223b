package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/adapter/memory"
	"github.com/YelzhanWeb/canteen/internal/domain"
)

func TestCatalog(t *testing.T) {
	store := memory.NewStore()
	memory.Seed(store)
	store.PutMenuItem(domain.MenuItem{ID: 9, Name: "Old Special", Category: "lunch", Price: decimal.NewFromInt(80)})
	svc := NewService(store, logger.NewNop())
	ctx := context.Background()

	all, err := svc.ListMenu(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "beverages", all[0].Category)

	lunch, err := svc.ListMenuByCategory(ctx, " Lunch ")
	require.NoError(t, err)
	require.Len(t, lunch, 2)
	require.Equal(t, "Paneer Biryani", lunch[0].Name)

	_, err = svc.ListMenuByCategory(ctx, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	item, err := svc.GetMenuItem(ctx, 9)
	require.NoError(t, err)
	require.False(t, item.IsAvailable)

	_, err = svc.GetMenuItem(ctx, 77)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetMenuItem(ctx, 0)
	require.ErrorIs(t, err, domain.ErrValidation)
}
