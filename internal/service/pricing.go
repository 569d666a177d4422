package service

import (
	"fmt"

	"webstudio/internal/models"
)

// Pricing computes configurator totals: a base price per service plus the
// flat-rate add-ons the visitor ticked. Mandatory add-ons always count.
type Pricing struct {
	addons []models.FeatureAddon
	bases  map[int]models.BasePrice
}

func NewPricing(addons []models.FeatureAddon, bases []models.BasePrice) (*Pricing, error) {
	byService := make(map[int]models.BasePrice, len(bases))
	for _, base := range bases {
		if _, dup := byService[base.ServiceID]; dup {
			return nil, fmt.Errorf("duplicate base price for service %d", base.ServiceID)
		}
		byService[base.ServiceID] = base
	}

	seen := make(map[string]bool, len(addons))
	for _, addon := range addons {
		if addon.Label == "" {
			return nil, fmt.Errorf("add-on with empty label")
		}
		if seen[addon.Label] {
			return nil, fmt.Errorf("duplicate add-on label %q", addon.Label)
		}
		seen[addon.Label] = true
	}

	return &Pricing{addons: addons, bases: byService}, nil
}

// Addons returns the checklist in its configured order.
func (p *Pricing) Addons() []models.FeatureAddon {
	return append([]models.FeatureAddon(nil), p.addons...)
}

// BasePriceFor returns the starting price for a service, if one is
// configured.
func (p *Pricing) BasePriceFor(serviceID int) (models.BasePrice, bool) {
	base, ok := p.bases[serviceID]
	return base, ok
}

// DefaultSelection returns the initial checklist state: defaults and
// mandatory items ticked.
func (p *Pricing) DefaultSelection() map[string]bool {
	selected := make(map[string]bool, len(p.addons))
	for _, addon := range p.addons {
		if addon.Default || addon.Mandatory {
			selected[addon.Label] = true
		}
	}
	return selected
}

// Total sums the base price and every counted add-on. Unknown labels in the
// selection are ignored; mandatory add-ons count whether ticked or not.
func (p *Pricing) Total(serviceID int, selected map[string]bool) int {
	total := 0
	if base, ok := p.bases[serviceID]; ok {
		total = base.Price
	}
	for _, addon := range p.addons {
		if addon.Mandatory || selected[addon.Label] {
			total += addon.Price
		}
	}
	return total
}

// Toggle validates one checklist change. Removing a mandatory add-on is a
// validation error; unknown labels are too.
func (p *Pricing) Toggle(selected map[string]bool, label string, on bool) error {
	for _, addon := range p.addons {
		if addon.Label != label {
			continue
		}
		if addon.Mandatory && !on {
			return validationErrorf("add-on %q cannot be removed", label)
		}
		selected[label] = on
		return nil
	}
	return validationErrorf("unknown add-on %q", label)
}
