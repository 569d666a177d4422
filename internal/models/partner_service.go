package models

import "time"

// PartnerService is a listing that points at a third-party offering.
// PartnerName is an informal grouping key, not a reference to a Partner entity.
type PartnerService struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Icon        string    `json:"icon"`
	PartnerName string    `json:"partnerName"`
	Description string    `json:"description"`
	IsAvailable bool      `json:"isAvailable"`
	ImageURL    string    `json:"imageUrl"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PartnerGroup is a display grouping of listings sharing one partner name.
type PartnerGroup struct {
	PartnerName string           `json:"partnerName"`
	Services    []PartnerService `json:"services"`
	Count       int              `json:"count"`
}
