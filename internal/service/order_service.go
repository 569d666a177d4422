package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"webstudio/internal/domain"
	"webstudio/internal/events"
	"webstudio/internal/metrics"
	"webstudio/internal/models"
	"webstudio/internal/store"

	"github.com/rs/zerolog"
)

// priceDigits matches the first run of digit groups in a display price,
// tolerating thousands-separator whitespace ("от 180 000 ₽").
var priceDigits = regexp.MustCompile(`[0-9]+(?:[\s\p{Zs}]*[0-9]+)*`)

// OrderService owns the order lifecycle: creation, status transitions,
// deletion and customer lookups. Status transitions are validated against
// the closed table in models before anything is written.
type OrderService struct {
	store    domain.RecordStore
	catalog  *CatalogService
	eventBus domain.EventPublisher
	notifier domain.Notifier
	syncer   domain.SyncWorker
	logger   *zerolog.Logger
}

func NewOrderService(recordStore domain.RecordStore, catalog *CatalogService, eventBus domain.EventPublisher, notifier domain.Notifier, syncer domain.SyncWorker, logger *zerolog.Logger) *OrderService {
	return &OrderService{
		store:    recordStore,
		catalog:  catalog,
		eventBus: eventBus,
		notifier: notifier,
		syncer:   syncer,
		logger:   logger,
	}
}

// CreateOrderInput carries the checkout submission. RawTotalPrice is the
// display string from the configurator ("180 000 ₽"); it is parsed here and
// nowhere else.
type CreateOrderInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ServiceID     int
	Message       string
	RawTotalPrice string
}

// CreateOrder snapshots the service name, extracts the integer total and
// persists a pending order. A dangling service reference never fails the
// order; the name falls back to the placeholder.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	serviceName := models.PlaceholderServiceName
	if svc, err := s.catalog.FindService(ctx, input.ServiceID); err == nil {
		serviceName = svc.Name
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	order := models.Order{
		ID:            strconv.FormatInt(now.UnixMilli(), 10),
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		ServiceID:     input.ServiceID,
		ServiceName:   serviceName,
		TotalPrice:    ExtractTotalPrice(input.RawTotalPrice),
		Status:        models.StatusPending,
		Message:       input.Message,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.store.UpdateOrders(func(orders []models.Order) ([]models.Order, error) {
		return append(orders, order), nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncOrdersCreated()
	s.publishEvent(events.EventOrderCreated, order, models.OrderStatus(""), "customer")
	s.notifyCreated(order)
	s.enqueueSync(ctx, "upsert", &order, "")

	s.logger.Info().Str("order_id", order.ID).Str("service", order.ServiceName).Int("total", order.TotalPrice).Msg("order created")
	return &order, nil
}

// SetStatus applies one transition from the state machine. Unknown statuses
// and unreachable transitions fail with a validation error and leave the
// order untouched.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, newStatus models.OrderStatus) (*models.Order, error) {
	if !newStatus.Valid() {
		return nil, validationErrorf("unknown status %q", string(newStatus))
	}

	var updated models.Order
	var prevStatus models.OrderStatus
	err := s.store.UpdateOrders(func(orders []models.Order) ([]models.Order, error) {
		for i := range orders {
			if orders[i].ID != orderID {
				continue
			}
			if !orders[i].Status.CanTransition(newStatus) {
				return nil, validationErrorf("cannot transition order from %s to %s", orders[i].Status, newStatus)
			}
			updated = orders[i]
			prevStatus = updated.Status
			updated.Status = newStatus
			updated.UpdatedAt = time.Now().UTC()
			orders[i] = updated
			return orders, nil
		}
		return nil, store.ErrNotFound
	})
	if err != nil {
		return nil, err
	}

	metrics.IncStatusTransition(string(newStatus))
	s.publishEvent(events.EventOrderStatusChanged, updated, prevStatus, "admin")
	s.notifyStatus(updated)
	s.enqueueSync(ctx, "update_status", &updated, newStatus)

	return &updated, nil
}

// DeleteOrder removes the order from the collection.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	var deleted models.Order
	err := s.store.UpdateOrders(func(orders []models.Order) ([]models.Order, error) {
		for i := range orders {
			if orders[i].ID == orderID {
				deleted = orders[i]
				return append(orders[:i], orders[i+1:]...), nil
			}
		}
		return nil, store.ErrNotFound
	})
	if err != nil {
		return err
	}

	s.publishEvent(events.EventOrderDeleted, deleted, "", "admin")
	return nil
}

// GetOrder looks one order up by identifier.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	orders, err := s.store.LoadOrders()
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, store.ErrNotFound
}

// ListOrders returns all orders newest first, the way the admin panel
// displays them.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.LoadOrders()
	if err != nil {
		return nil, err
	}
	return SortByCreatedAtDescending(orders), nil
}

// OrdersForCustomer returns the orders matching the email OR the phone.
func (s *OrderService) OrdersForCustomer(ctx context.Context, email, phone string) ([]models.Order, error) {
	orders, err := s.store.LoadOrders()
	if err != nil {
		return nil, err
	}
	return SortByCreatedAtDescending(FilterByCustomer(orders, email, phone)), nil
}

// StatusCounts returns the per-status totals for the admin dashboard.
func (s *OrderService) StatusCounts(ctx context.Context) (map[models.OrderStatus]int, error) {
	orders, err := s.store.LoadOrders()
	if err != nil {
		return nil, err
	}

	counts := make(map[models.OrderStatus]int, 5)
	for _, status := range []models.OrderStatus{
		models.StatusPending, models.StatusPaid, models.StatusInProgress,
		models.StatusCompleted, models.StatusCancelled,
	} {
		counts[status] = CountByStatus(orders, status)
	}
	return counts, nil
}

// ExtractTotalPrice scans a display price for the first run of digit groups
// and returns it as a non-negative integer; no digits means 0. Only order
// ingestion parses price text, everywhere else prices stay presentation-only.
func ExtractTotalPrice(raw string) int {
	match := priceDigits.FindString(raw)
	if match == "" {
		return 0
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, match)

	total, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return total
}

func (s *OrderService) publishEvent(eventType string, order models.Order, prevStatus models.OrderStatus, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.OrderEventPayload{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		ServiceID:     order.ServiceID,
		ServiceName:   order.ServiceName,
		TotalPrice:    order.TotalPrice,
		Status:        order.Status,
		PrevStatus:    prevStatus,
		ChangedBy:     changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("order_id", order.ID).Msg("publish event error")
	}
}

func (s *OrderService) notifyCreated(order models.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOrderCreated(order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("notify error")
	}
}

func (s *OrderService) notifyStatus(order models.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOrderStatus(order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("notify error")
	}
}

func (s *OrderService) enqueueSync(ctx context.Context, taskType string, order *models.Order, status models.OrderStatus) {
	if s.syncer == nil {
		return
	}
	if err := s.syncer.EnqueueTask(ctx, taskType, order, status); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
