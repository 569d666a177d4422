package service

import (
	"context"
	"strings"

	"webstudio/internal/domain"
	"webstudio/internal/models"
	"webstudio/internal/store"

	"github.com/rs/zerolog"
)

// CatalogService resolves and manages the service catalog. Reads are plain
// collection loads; admin mutations go through the store's update cycle.
type CatalogService struct {
	store  domain.RecordStore
	logger *zerolog.Logger
}

func NewCatalogService(recordStore domain.RecordStore, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{store: recordStore, logger: logger}
}

// ListServices returns the full catalog in insertion order.
func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.store.LoadServices()
}

// FindService looks a service up by identifier.
func (s *CatalogService) FindService(ctx context.Context, id int) (*models.Service, error) {
	services, err := s.store.LoadServices()
	if err != nil {
		return nil, err
	}
	for i := range services {
		if services[i].ID == id {
			return &services[i], nil
		}
	}
	return nil, store.ErrNotFound
}

// Categories derives the category list from the current catalog.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	services, err := s.store.LoadServices()
	if err != nil {
		return nil, err
	}
	return DistinctCategories(services), nil
}

// CreateService appends a catalog entry. When the caller omits the id the
// next free integer is assigned; the admin form never sends one.
func (s *CatalogService) CreateService(ctx context.Context, svc *models.Service) error {
	if strings.TrimSpace(svc.Name) == "" {
		return validationErrorf("service name is required")
	}

	return s.store.UpdateServices(func(services []models.Service) ([]models.Service, error) {
		if svc.ID == 0 {
			maxID := 0
			for _, existing := range services {
				if existing.ID > maxID {
					maxID = existing.ID
				}
			}
			svc.ID = maxID + 1
		}
		return append(services, *svc), nil
	})
}

// UpdateService replaces the editable fields of the service with the given id.
func (s *CatalogService) UpdateService(ctx context.Context, id int, updated models.Service) (*models.Service, error) {
	if strings.TrimSpace(updated.Name) == "" {
		return nil, validationErrorf("service name is required")
	}

	var result models.Service
	err := s.store.UpdateServices(func(services []models.Service) ([]models.Service, error) {
		for i := range services {
			if services[i].ID == id {
				updated.ID = id
				services[i] = updated
				result = services[i]
				return services, nil
			}
		}
		return nil, store.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteService removes a catalog entry. Existing orders keep their
// snapshotted service name; nothing cascades.
func (s *CatalogService) DeleteService(ctx context.Context, id int) error {
	return s.store.UpdateServices(func(services []models.Service) ([]models.Service, error) {
		for i := range services {
			if services[i].ID == id {
				return append(services[:i], services[i+1:]...), nil
			}
		}
		return nil, store.ErrNotFound
	})
}

// RenameCategory rewrites the category label on every member service and
// returns how many services were touched.
func (s *CatalogService) RenameCategory(ctx context.Context, from, to string) (int, error) {
	if strings.TrimSpace(to) == "" {
		return 0, validationErrorf("category name is required")
	}

	renamed := 0
	err := s.store.UpdateServices(func(services []models.Service) ([]models.Service, error) {
		for i := range services {
			if services[i].Category == from {
				services[i].Category = to
				renamed++
			}
		}
		return services, nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("from", from).Str("to", to).Int("services", renamed).Msg("category renamed")
	return renamed, nil
}

// DeleteCategory removes every service in the category and returns how many
// were deleted.
func (s *CatalogService) DeleteCategory(ctx context.Context, category string) (int, error) {
	deleted := 0
	err := s.store.UpdateServices(func(services []models.Service) ([]models.Service, error) {
		kept := services[:0]
		for _, svc := range services {
			if svc.Category == category {
				deleted++
				continue
			}
			kept = append(kept, svc)
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("category", category).Int("services", deleted).Msg("category deleted")
	return deleted, nil
}
