package service

import (
	"sort"

	"webstudio/internal/models"
)

// Query views: pure projections over already-loaded collections. They never
// touch the store and never mutate their input.

// SortByCreatedAtDescending returns a copy of orders sorted newest first.
// The sort is stable, so same-instant orders keep their relative order.
func SortByCreatedAtDescending(orders []models.Order) []models.Order {
	sorted := append([]models.Order(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

// CountByStatus counts orders currently in the given status.
func CountByStatus(orders []models.Order, status models.OrderStatus) int {
	count := 0
	for _, order := range orders {
		if order.Status == status {
			count++
		}
	}
	return count
}

// FilterByCustomer returns the orders whose email OR phone matches exactly.
// A customer is identified by either channel, not both.
func FilterByCustomer(orders []models.Order, email, phone string) []models.Order {
	matched := []models.Order{}
	for _, order := range orders {
		if (email != "" && order.CustomerEmail == email) || (phone != "" && order.CustomerPhone == phone) {
			matched = append(matched, order)
		}
	}
	return matched
}

// DistinctCategories derives the category list from the live service
// collection in first-seen order. There is no separate category store.
func DistinctCategories(services []models.Service) []string {
	seen := make(map[string]bool, len(services))
	categories := []string{}
	for _, svc := range services {
		if !seen[svc.Category] {
			seen[svc.Category] = true
			categories = append(categories, svc.Category)
		}
	}
	return categories
}

// GroupPartnerServicesByPartnerName groups listings by partner name,
// preserving first-seen partner order and member insertion order.
func GroupPartnerServicesByPartnerName(services []models.PartnerService) []models.PartnerGroup {
	index := make(map[string]int, len(services))
	groups := []models.PartnerGroup{}
	for _, svc := range services {
		i, ok := index[svc.PartnerName]
		if !ok {
			i = len(groups)
			index[svc.PartnerName] = i
			groups = append(groups, models.PartnerGroup{PartnerName: svc.PartnerName})
		}
		groups[i].Services = append(groups[i].Services, svc)
		groups[i].Count++
	}
	return groups
}
