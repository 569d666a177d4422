package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"webstudio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestStore_MissingFileInitializesEmpty(t *testing.T) {
	s := newTestStore(t)

	orders, err := s.LoadOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)

	// The file now exists and holds an empty JSON array.
	data, err := os.ReadFile(filepath.Join(s.Dir(), ordersFile))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{
			ID:            "1740000000000",
			CustomerName:  "Анна",
			CustomerEmail: "anna@example.com",
			CustomerPhone: "+7 (900) 000-00-01",
			ServiceID:     2,
			ServiceName:   "Интернет-магазин",
			TotalPrice:    120000,
			Status:        models.StatusPending,
			CreatedAt:     created,
			UpdatedAt:     created,
		},
	}
	require.NoError(t, s.SaveOrders(orders))

	loaded, err := s.LoadOrders()
	require.NoError(t, err)
	assert.Equal(t, orders, loaded)

	// Saving the same records again does not change the collection.
	require.NoError(t, s.SaveOrders(loaded))
	again, err := s.LoadOrders()
	require.NoError(t, err)
	assert.Equal(t, orders, again)
}

func TestStore_ServicesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	services := []models.Service{
		{ID: 1, Name: "Лендинг", Category: "Сайты", Price: "от 50 000 ₽", Features: []string{"Адаптивная верстка"}},
		{ID: 2, Name: "Telegram-бот", Category: "Боты", Price: "от 80 000 ₽", Features: []string{}},
	}
	require.NoError(t, s.SaveServices(services))

	loaded, err := s.LoadServices()
	require.NoError(t, err)
	assert.Equal(t, services, loaded)
}

func TestStore_CorruptedFileReturnsParseError(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), servicesFile), []byte("{not json"), 0o644))

	_, err := s.LoadServices()
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, servicesFile, parseErr.File)
}

func TestStore_UpdateErrorLeavesFileIntact(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveServices([]models.Service{{ID: 1, Name: "Лендинг"}}))

	boom := errors.New("boom")
	err := s.UpdateServices(func(records []models.Service) ([]models.Service, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	loaded, err := s.LoadServices()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Лендинг", loaded[0].Name)
}

func TestStore_AppendContactIsAppendOnly(t *testing.T) {
	s := newTestStore(t)

	first := models.Contact{Name: "Иван", Email: "ivan@example.com", Date: time.Now().UTC()}
	second := models.Contact{Name: "Мария", Email: "maria@example.com", Date: time.Now().UTC()}

	require.NoError(t, s.AppendContact(first))
	require.NoError(t, s.AppendContact(second))

	contacts, err := s.LoadContacts()
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Иван", contacts[0].Name)
	assert.Equal(t, "Мария", contacts[1].Name)
}

func TestStore_ConcurrentUpdatesDoNotLoseRecords(t *testing.T) {
	s := newTestStore(t)

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)

	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			err := s.UpdateOrders(func(records []models.Order) ([]models.Order, error) {
				return append(records, models.Order{Status: models.StatusPending}), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	orders, err := s.LoadOrders()
	require.NoError(t, err)
	assert.Len(t, orders, writers)
}

func TestStore_WriteLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveOrders([]models.Order{{ID: "1", Status: models.StatusPending}}))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.Regexp(t, `\.json$`, entry.Name())
	}
}
