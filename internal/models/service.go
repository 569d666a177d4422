package models

// Service is a purchasable offering managed through the admin panel.
// Price is a display string ("от 50 000 ₽"), not a structured amount.
type Service struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Features    []string `json:"features"`
}
