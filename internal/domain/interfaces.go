package domain

import (
	"context"
	"time"

	"webstudio/internal/models"
)

// RecordStore is the durable whole-collection load/save abstraction.
// Callers never cache a collection across requests; every mutation is a
// load-mutate-save cycle performed by the store under its own lock.
type RecordStore interface {
	LoadServices() ([]models.Service, error)
	SaveServices(records []models.Service) error
	UpdateServices(fn func([]models.Service) ([]models.Service, error)) error

	LoadPartnerServices() ([]models.PartnerService, error)
	SavePartnerServices(records []models.PartnerService) error
	UpdatePartnerServices(fn func([]models.PartnerService) ([]models.PartnerService, error)) error

	LoadOrders() ([]models.Order, error)
	SaveOrders(records []models.Order) error
	UpdateOrders(fn func([]models.Order) ([]models.Order, error)) error

	LoadContacts() ([]models.Contact, error)
	AppendContact(contact models.Contact) error
}

// SessionRepository keeps checkout configurator state between requests.
type SessionRepository interface {
	GetSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
	SetSession(ctx context.Context, session *models.CheckoutSession) error
	ClearSession(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier delivers order notifications to managers.
type Notifier interface {
	NotifyOrderCreated(order models.Order) error
	NotifyOrderStatus(order models.Order) error
}

// SheetsWriter mirrors the order collection into an external ledger.
type SheetsWriter interface {
	ReplaceOrdersSheet(ctx context.Context, orders []models.Order) error
	AppendOrder(ctx context.Context, order models.Order) error
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

// SyncWorker schedules ledger synchronization tasks.
type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, order *models.Order, status models.OrderStatus) error
}
