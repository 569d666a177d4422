package models

// CheckoutSession holds the state of the feature configurator for one
// visitor: which service they are pricing and which add-ons are ticked.
type CheckoutSession struct {
	SessionID string          `json:"session_id"`
	ServiceID int             `json:"service_id"`
	Selected  map[string]bool `json:"selected"`
}

// IsSelected reports whether the add-on with the given label is ticked.
func (s *CheckoutSession) IsSelected(label string) bool {
	if s.Selected == nil {
		return false
	}
	return s.Selected[label]
}

// FeatureAddon is one line of the configurator checklist. Mandatory add-ons
// cannot be removed and are always counted into the total.
type FeatureAddon struct {
	Label      string `yaml:"label" json:"label"`
	PriceLabel string `yaml:"price_label" json:"priceLabel"`
	Price      int    `yaml:"price" json:"price"`
	Mandatory  bool   `yaml:"mandatory" json:"mandatory"`
	Default    bool   `yaml:"default" json:"default"`
}

// BasePrice is the starting price for one service in the configurator.
type BasePrice struct {
	ServiceID int    `yaml:"service_id" json:"serviceId"`
	Name      string `yaml:"name" json:"name"`
	Price     int    `yaml:"price" json:"price"`
}
