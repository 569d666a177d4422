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

func newContactService(t *testing.T) (*ContactService, *store.Store) {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	logger := zerolog.Nop()
	catalog := NewCatalogService(st, &logger)
	orders := NewOrderService(st, catalog, nil, nil, nil, &logger)
	return NewContactService(st, orders, nil, &logger), st
}

func TestContactSubmit_PlainInquiry(t *testing.T) {
	svc, st := newContactService(t)

	contact, order, err := svc.Submit(context.Background(), ContactInput{
		Name:    "Анна",
		Email:   "anna@example.com",
		Phone:   "+7 (900) 000-00-01",
		Message: "Нужен сайт",
	})
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Equal(t, "Анна", contact.Name)
	assert.Nil(t, contact.Service)
	assert.False(t, contact.Date.IsZero())

	contacts, err := st.LoadContacts()
	require.NoError(t, err)
	assert.Len(t, contacts, 1)

	orders, err := st.LoadOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestContactSubmit_AppliesDefaults(t *testing.T) {
	svc, _ := newContactService(t)

	contact, _, err := svc.Submit(context.Background(), ContactInput{Message: "перезвоните"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultContactName, contact.Name)
	assert.Equal(t, models.DefaultContactEmail, contact.Email)
	assert.Equal(t, models.DefaultContactPhone, contact.Phone)
}

func TestContactSubmit_WithServiceCreatesOrder(t *testing.T) {
	svc, st := newContactService(t)
	require.NoError(t, st.SaveServices([]models.Service{{ID: 3, Name: "CRM"}}))

	serviceID := 3
	price := "250 000 ₽"
	contact, order, err := svc.Submit(context.Background(), ContactInput{
		Name:       "Борис",
		Email:      "boris@example.com",
		Phone:      "+7 (900) 000-00-02",
		Service:    &serviceID,
		TotalPrice: &price,
	})
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, "CRM", order.ServiceName)
	assert.Equal(t, 250000, order.TotalPrice)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, contact.Name, order.CustomerName)

	orders, err := st.LoadOrders()
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestContactSubmit_DanglingServiceStillOrders(t *testing.T) {
	svc, _ := newContactService(t)

	serviceID := 404
	_, order, err := svc.Submit(context.Background(), ContactInput{
		Name:    "Вера",
		Service: &serviceID,
	})
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.PlaceholderServiceName, order.ServiceName)
}

func TestContactList(t *testing.T) {
	svc, st := newContactService(t)
	require.NoError(t, st.AppendContact(models.Contact{Name: "Анна"}))
	require.NoError(t, st.AppendContact(models.Contact{Name: "Борис"}))

	contacts, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}
