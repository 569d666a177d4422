package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"webstudio/internal/domain"
	"webstudio/internal/models"
	"webstudio/internal/store"

	"github.com/rs/zerolog"
)

// PartnerCatalogService manages partner listings. The availability flag is
// enforced here, not only in the UI: an unavailable listing cannot be
// ordered through the link endpoint.
type PartnerCatalogService struct {
	store  domain.RecordStore
	logger *zerolog.Logger
}

func NewPartnerCatalogService(recordStore domain.RecordStore, logger *zerolog.Logger) *PartnerCatalogService {
	return &PartnerCatalogService{store: recordStore, logger: logger}
}

func (s *PartnerCatalogService) List(ctx context.Context) ([]models.PartnerService, error) {
	return s.store.LoadPartnerServices()
}

func (s *PartnerCatalogService) Get(ctx context.Context, id string) (*models.PartnerService, error) {
	listings, err := s.store.LoadPartnerServices()
	if err != nil {
		return nil, err
	}
	for i := range listings {
		if listings[i].ID == id {
			return &listings[i], nil
		}
	}
	return nil, store.ErrNotFound
}

// GroupedByPartner returns display groups for the partners page.
func (s *PartnerCatalogService) GroupedByPartner(ctx context.Context) ([]models.PartnerGroup, error) {
	listings, err := s.store.LoadPartnerServices()
	if err != nil {
		return nil, err
	}
	return GroupPartnerServicesByPartnerName(listings), nil
}

// OrderLink returns the outbound link of an available listing. Unavailable
// listings are refused so availability is not a UI-only promise.
func (s *PartnerCatalogService) OrderLink(ctx context.Context, id string) (string, error) {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !listing.IsAvailable {
		return "", validationErrorf("partner service %q is not available", listing.Name)
	}
	return listing.Link, nil
}

// Create stamps the id and timestamps and appends the listing. Ids are
// millisecond timestamps like order ids; same-millisecond collisions are a
// documented property of the format.
func (s *PartnerCatalogService) Create(ctx context.Context, listing *models.PartnerService) error {
	if strings.TrimSpace(listing.Name) == "" {
		return validationErrorf("partner service name is required")
	}
	if strings.TrimSpace(listing.PartnerName) == "" {
		return validationErrorf("partner name is required")
	}

	now := time.Now().UTC()
	return s.store.UpdatePartnerServices(func(listings []models.PartnerService) ([]models.PartnerService, error) {
		listing.ID = strconv.FormatInt(now.UnixMilli(), 10)
		listing.CreatedAt = now
		listing.UpdatedAt = now
		return append(listings, *listing), nil
	})
}

// Update replaces the editable fields; id and createdAt survive.
func (s *PartnerCatalogService) Update(ctx context.Context, id string, updated models.PartnerService) (*models.PartnerService, error) {
	if strings.TrimSpace(updated.Name) == "" {
		return nil, validationErrorf("partner service name is required")
	}

	var result models.PartnerService
	err := s.store.UpdatePartnerServices(func(listings []models.PartnerService) ([]models.PartnerService, error) {
		for i := range listings {
			if listings[i].ID == id {
				updated.ID = id
				updated.CreatedAt = listings[i].CreatedAt
				updated.UpdatedAt = time.Now().UTC()
				listings[i] = updated
				result = listings[i]
				return listings, nil
			}
		}
		return nil, store.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *PartnerCatalogService) Delete(ctx context.Context, id string) error {
	return s.store.UpdatePartnerServices(func(listings []models.PartnerService) ([]models.PartnerService, error) {
		for i := range listings {
			if listings[i].ID == id {
				return append(listings[:i], listings[i+1:]...), nil
			}
		}
		return nil, store.ErrNotFound
	})
}
