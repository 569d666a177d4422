package service

import (
	"context"
	"testing"

	"webstudio/internal/models"
	"webstudio/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(t *testing.T) (*CatalogService, *store.Store) {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	logger := zerolog.Nop()
	return NewCatalogService(st, &logger), st
}

func TestCatalog_CreateService_AssignsNextID(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	first := models.Service{Name: "Лендинг", Category: "Сайты"}
	require.NoError(t, svc.CreateService(ctx, &first))
	assert.Equal(t, 1, first.ID)

	second := models.Service{Name: "Корпоративный сайт", Category: "Сайты"}
	require.NoError(t, svc.CreateService(ctx, &second))
	assert.Equal(t, 2, second.ID)

	// Deleting the highest id frees it for reuse: ids are max+1, not a counter.
	require.NoError(t, svc.DeleteService(ctx, 2))
	third := models.Service{Name: "Telegram-бот", Category: "Боты"}
	require.NoError(t, svc.CreateService(ctx, &third))
	assert.Equal(t, 2, third.ID)
}

func TestCatalog_CreateService_KeepsExplicitID(t *testing.T) {
	svc, _ := newCatalogService(t)

	explicit := models.Service{ID: 42, Name: "CRM"}
	require.NoError(t, svc.CreateService(context.Background(), &explicit))
	assert.Equal(t, 42, explicit.ID)
}

func TestCatalog_CreateService_RequiresName(t *testing.T) {
	svc, _ := newCatalogService(t)

	err := svc.CreateService(context.Background(), &models.Service{Name: "   "})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCatalog_FindService(t *testing.T) {
	svc, st := newCatalogService(t)
	require.NoError(t, st.SaveServices([]models.Service{{ID: 7, Name: "CRM"}}))

	found, err := svc.FindService(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "CRM", found.Name)

	_, err = svc.FindService(context.Background(), 8)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCatalog_UpdateService_PreservesID(t *testing.T) {
	svc, st := newCatalogService(t)
	require.NoError(t, st.SaveServices([]models.Service{{ID: 1, Name: "Лендинг", Category: "Сайты"}}))

	updated, err := svc.UpdateService(context.Background(), 1, models.Service{
		ID:       999,
		Name:     "Лендинг под ключ",
		Category: "Сайты",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "Лендинг под ключ", updated.Name)
}

func TestCatalog_DeleteService_DoesNotCascade(t *testing.T) {
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	logger := zerolog.Nop()
	catalog := NewCatalogService(st, &logger)
	orders := NewOrderService(st, catalog, nil, nil, nil, &logger)
	ctx := context.Background()

	require.NoError(t, st.SaveServices([]models.Service{{ID: 1, Name: "Лендинг"}}))
	order, err := orders.CreateOrder(ctx, CreateOrderInput{CustomerName: "Анна", ServiceID: 1})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteService(ctx, 1))

	// Existing order keeps the snapshotted name.
	kept, err := orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Лендинг", kept.ServiceName)

	// New orders for the deleted id fall back to the placeholder.
	fresh, err := orders.CreateOrder(ctx, CreateOrderInput{CustomerName: "Иван", ServiceID: 1})
	require.NoError(t, err)
	assert.Equal(t, models.PlaceholderServiceName, fresh.ServiceName)
}

func TestCatalog_RenameCategory(t *testing.T) {
	svc, st := newCatalogService(t)
	require.NoError(t, st.SaveServices([]models.Service{
		{ID: 1, Name: "Лендинг", Category: "Сайты"},
		{ID: 2, Name: "Бот", Category: "Боты"},
		{ID: 3, Name: "Магазин", Category: "Сайты"},
	}))

	renamed, err := svc.RenameCategory(context.Background(), "Сайты", "Веб-разработка")
	require.NoError(t, err)
	assert.Equal(t, 2, renamed)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Веб-разработка", "Боты"}, categories)
}

func TestCatalog_DeleteCategory_RemovesMembers(t *testing.T) {
	svc, st := newCatalogService(t)
	require.NoError(t, st.SaveServices([]models.Service{
		{ID: 1, Name: "Лендинг", Category: "Сайты"},
		{ID: 2, Name: "Бот", Category: "Боты"},
		{ID: 3, Name: "Магазин", Category: "Сайты"},
	}))

	deleted, err := svc.DeleteCategory(context.Background(), "Сайты")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	services, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Бот", services[0].Name)
}
