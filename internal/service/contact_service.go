package service

import (
	"context"
	"strings"
	"time"

	"webstudio/internal/domain"
	"webstudio/internal/events"
	"webstudio/internal/models"

	"github.com/rs/zerolog"
)

// ContactService records inquiries. Contacts are append-only: never edited,
// never deleted. A submission that carries a service reference also creates
// exactly one pending order as a side effect.
type ContactService struct {
	store    domain.RecordStore
	orders   *OrderService
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewContactService(recordStore domain.RecordStore, orders *OrderService, eventBus domain.EventPublisher, logger *zerolog.Logger) *ContactService {
	return &ContactService{store: recordStore, orders: orders, eventBus: eventBus, logger: logger}
}

// ContactInput is a raw form submission. Service and TotalPrice are present
// only for checkout-flow submissions.
type ContactInput struct {
	Name       string
	Email      string
	Phone      string
	Message    string
	Service    *int
	TotalPrice *string
}

// Submit appends the inquiry and, when a service reference is present,
// creates the order. Order creation failure is logged but does not fail the
// contact: the inquiry is already durable at that point.
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*models.Contact, *models.Order, error) {
	contact := models.Contact{
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		Phone:      strings.TrimSpace(input.Phone),
		Message:    input.Message,
		Service:    input.Service,
		TotalPrice: input.TotalPrice,
		Date:       time.Now().UTC(),
	}
	if contact.Name == "" {
		contact.Name = models.DefaultContactName
	}
	if contact.Email == "" {
		contact.Email = models.DefaultContactEmail
	}
	if contact.Phone == "" {
		contact.Phone = models.DefaultContactPhone
	}

	if err := s.store.AppendContact(contact); err != nil {
		return nil, nil, err
	}

	if s.eventBus != nil {
		payload := events.ContactEventPayload{
			Name:    contact.Name,
			Email:   contact.Email,
			Phone:   contact.Phone,
			Message: contact.Message,
			Service: contact.Service,
		}
		if err := s.eventBus.PublishJSON(events.EventContactReceived, payload); err != nil {
			s.logger.Error().Err(err).Msg("publish contact event error")
		}
	}

	var order *models.Order
	if contact.Service != nil {
		rawPrice := ""
		if contact.TotalPrice != nil {
			rawPrice = *contact.TotalPrice
		}

		created, err := s.orders.CreateOrder(ctx, CreateOrderInput{
			CustomerName:  contact.Name,
			CustomerEmail: contact.Email,
			CustomerPhone: contact.Phone,
			ServiceID:     *contact.Service,
			Message:       contact.Message,
			RawTotalPrice: rawPrice,
		})
		if err != nil {
			s.logger.Error().Err(err).Int("service_id", *contact.Service).Msg("order creation from contact failed")
		} else {
			order = created
		}
	}

	return &contact, order, nil
}

// List returns the full inquiry log.
func (s *ContactService) List(ctx context.Context) ([]models.Contact, error) {
	return s.store.LoadContacts()
}
