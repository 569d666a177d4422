package service

import (
	"context"

	"webstudio/internal/domain"
	"webstudio/internal/models"
	"webstudio/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutService drives the feature configurator. Session state lives in
// the session repository, not in the client, so a quote survives page
// reloads and the submitted total can be recomputed server-side.
type CheckoutService struct {
	sessions domain.SessionRepository
	pricing  *Pricing
	catalog  *CatalogService
	logger   *zerolog.Logger
}

func NewCheckoutService(sessions domain.SessionRepository, pricing *Pricing, catalog *CatalogService, logger *zerolog.Logger) *CheckoutService {
	return &CheckoutService{sessions: sessions, pricing: pricing, catalog: catalog, logger: logger}
}

// Quote pairs a session with its current total.
type Quote struct {
	Session *models.CheckoutSession `json:"session"`
	Total   int                     `json:"total"`
}

// Start opens a configurator session for a service with the default add-on
// selection. The service must exist; the configurator is not reachable for
// deleted services.
func (s *CheckoutService) Start(ctx context.Context, serviceID int) (*Quote, error) {
	if _, err := s.catalog.FindService(ctx, serviceID); err != nil {
		return nil, err
	}

	session := &models.CheckoutSession{
		SessionID: uuid.NewString(),
		ServiceID: serviceID,
		Selected:  s.pricing.DefaultSelection(),
	}
	if err := s.sessions.SetSession(ctx, session); err != nil {
		return nil, err
	}

	return &Quote{Session: session, Total: s.pricing.Total(serviceID, session.Selected)}, nil
}

// Toggle flips one add-on and returns the recomputed quote.
func (s *CheckoutService) Toggle(ctx context.Context, sessionID, label string, on bool) (*Quote, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Selected == nil {
		session.Selected = make(map[string]bool)
	}
	if err := s.pricing.Toggle(session.Selected, label, on); err != nil {
		return nil, err
	}
	if err := s.sessions.SetSession(ctx, session); err != nil {
		return nil, err
	}

	return &Quote{Session: session, Total: s.pricing.Total(session.ServiceID, session.Selected)}, nil
}

// CurrentQuote returns the session and its total without changing anything.
func (s *CheckoutService) CurrentQuote(ctx context.Context, sessionID string) (*Quote, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Quote{Session: session, Total: s.pricing.Total(session.ServiceID, session.Selected)}, nil
}

// Finish drops the session once the order has been submitted.
func (s *CheckoutService) Finish(ctx context.Context, sessionID string) error {
	return s.sessions.ClearSession(ctx, sessionID)
}

func (s *CheckoutService) getSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, store.ErrNotFound
	}
	return session, nil
}
