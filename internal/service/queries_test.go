package service

import (
	"testing"
	"time"

	"webstudio/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSortByCreatedAtDescending_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.AddDate(0, 0, 5)},
	}

	sorted := SortByCreatedAtDescending(orders)
	assert.Equal(t, "new", sorted[0].ID)
	assert.Equal(t, "old", orders[0].ID)
}

func TestSortByCreatedAtDescending_StableForSameInstant(t *testing.T) {
	instant := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: "a", CreatedAt: instant},
		{ID: "b", CreatedAt: instant},
		{ID: "c", CreatedAt: instant},
	}

	sorted := SortByCreatedAtDescending(orders)
	assert.Equal(t, []string{"a", "b", "c"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestCountByStatus(t *testing.T) {
	orders := []models.Order{
		{Status: models.StatusPending},
		{Status: models.StatusPending},
		{Status: models.StatusPaid},
	}

	assert.Equal(t, 2, CountByStatus(orders, models.StatusPending))
	assert.Equal(t, 1, CountByStatus(orders, models.StatusPaid))
	assert.Equal(t, 0, CountByStatus(orders, models.StatusCancelled))
}

func TestFilterByCustomer(t *testing.T) {
	orders := []models.Order{
		{ID: "1", CustomerEmail: "anna@example.com", CustomerPhone: "+7 (900) 000-00-01"},
		{ID: "2", CustomerEmail: "boris@example.com", CustomerPhone: "+7 (900) 000-00-02"},
		{ID: "3", CustomerEmail: "", CustomerPhone: ""},
	}

	t.Run("matches either field", func(t *testing.T) {
		matched := FilterByCustomer(orders, "anna@example.com", "+7 (900) 000-00-02")
		assert.Len(t, matched, 2)
	})

	t.Run("empty query fields never match", func(t *testing.T) {
		// Order 3 has empty email and phone; an empty query string must not
		// pick it up.
		matched := FilterByCustomer(orders, "", "")
		assert.Empty(t, matched)
	})

	t.Run("no match", func(t *testing.T) {
		matched := FilterByCustomer(orders, "nobody@example.com", "")
		assert.Empty(t, matched)
	})
}

func TestDistinctCategories_FirstSeenOrder(t *testing.T) {
	services := []models.Service{
		{ID: 1, Category: "Сайты"},
		{ID: 2, Category: "Боты"},
		{ID: 3, Category: "Сайты"},
	}

	categories := DistinctCategories(services)
	assert.Equal(t, []string{"Сайты", "Боты"}, categories)
}

func TestGroupPartnerServicesByPartnerName(t *testing.T) {
	listings := []models.PartnerService{
		{ID: "1", PartnerName: "CloudPay"},
		{ID: "2", PartnerName: "HostPro"},
		{ID: "3", PartnerName: "CloudPay"},
	}

	groups := GroupPartnerServicesByPartnerName(listings)
	assert.Len(t, groups, 2)
	assert.Equal(t, "CloudPay", groups[0].PartnerName)
	assert.Equal(t, 2, groups[0].Count)
	assert.Len(t, groups[0].Services, 2)
	assert.Equal(t, "HostPro", groups[1].PartnerName)
	assert.Equal(t, 1, groups[1].Count)
}
