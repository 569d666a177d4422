package events

import (
	"encoding/json"
	"testing"

	"webstudio/internal/models"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventOrderCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	payload := OrderEventPayload{
		OrderID:     "1700000000000",
		ServiceName: "Интернет-магазин",
		TotalPrice:  180000,
		Status:      models.StatusPending,
	}
	if err := bus.PublishJSON(EventOrderCreated, payload); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if received.Type != EventOrderCreated {
		t.Errorf("expected type %s, got %s", EventOrderCreated, received.Type)
	}

	var decoded OrderEventPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.OrderID != payload.OrderID || decoded.TotalPrice != payload.TotalPrice {
		t.Errorf("payload mismatch: %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe(EventOrderStatusChanged, func(_ *Event) error { count1++; return nil })
	bus.Subscribe(EventOrderStatusChanged, func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: EventOrderStatusChanged})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	bus.Publish(&Event{Type: "unknown"})
	if err := bus.PublishJSON("unknown", nil); err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}
}

func TestEventBusNilReceiver(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON(EventOrderDeleted, nil); err != nil {
		t.Errorf("nil bus PublishJSON failed: %v", err)
	}
}
