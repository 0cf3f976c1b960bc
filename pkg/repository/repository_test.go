package repository

import (
	"context"
	"testing"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db/option"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	Kind      string
	SortOrder int
}

func setupStore(t *testing.T) Repository[widget] {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return ProvideStore[widget](conn)
}

func TestStoreFindWithOptions(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.BatchCreate(ctx, []*widget{
		{ID: 1, Name: "camera", Kind: "gear", SortOrder: 3},
		{ID: 2, Name: "drone", Kind: "gear", SortOrder: 1},
		{ID: 3, Name: "edit", Kind: "service", SortOrder: 2},
	}))

	items, err := store.Find(ctx, &widget{Kind: "gear"}, option.WithSortBy(option.QuerySortBy{
		Allow: map[string]bool{"sort_order": true},
		Field: "sort_order",
	}))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "drone", items[0].Name)

	items, err = store.Find(ctx, &widget{}, option.ApplyOperator(option.Condition{
		Field:    "sort_order",
		Operator: option.GTE,
		Value:    2,
	}))
	require.NoError(t, err)
	require.Len(t, items, 2)

	count, err := store.Count(ctx, &widget{Kind: "service"})
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestStoreFindOneMissingReturnsNil(t *testing.T) {
	store := setupStore(t)

	item, err := store.FindOne(context.Background(), &widget{Name: "absent"})
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	require.NoError(t, store.Create(ctx, &widget{ID: 9, Name: "old"}))

	require.NoError(t, store.Update(ctx, 9, map[string]any{"name": "new"}))

	item, err := store.FindOne(ctx, &widget{ID: 9})
	require.NoError(t, err)
	require.Equal(t, "new", item.Name)
}
