package models

import "time"

// OrderStatus is a closed set; anything else is rejected at the service layer.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusInProgress OrderStatus = "in_progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// allowedTransitions maps a status to the statuses reachable from it.
// completed and cancelled are terminal.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether s -> target is an allowed transition.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Order is the central transactional record. ServiceName is a snapshot taken
// at creation time; later edits or deletes of the service do not touch it.
// TotalPrice is in whole currency units and never changes after creation.
type Order struct {
	ID            string      `json:"id"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	CustomerPhone string      `json:"customerPhone"`
	ServiceID     int         `json:"serviceId"`
	ServiceName   string      `json:"serviceName"`
	TotalPrice    int         `json:"totalPrice"`
	Status        OrderStatus `json:"status"`
	Message       string      `json:"message"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
