package models

import "time"

// Contact is an append-only inquiry record. Service and TotalPrice are
// pointers because historical records predate both fields; absent means
// the inquiry did not come from the checkout flow.
type Contact struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Message    string    `json:"message"`
	Service    *int      `json:"service,omitempty"`
	TotalPrice *string   `json:"totalPrice,omitempty"`
	Date       time.Time `json:"date"`
}
