package product

import "time"

// Product is the read side of the catalog that orders snapshot from.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`

	// Option name -> allowed values, e.g. "Fabric" -> ["Cotton", "Silk"].
	CustomizationOptions map[string][]string `json:"customizationOptions"`
	MeasurementFields    []string            `json:"measurementFields"`

	CreatedAt time.Time `json:"createdAt"`
}

func (p *Product) AllowsCustomization(option, value string) bool {
	for _, v := range p.CustomizationOptions[option] {
		if v == value {
			return true
		}
	}
	return false
}

func (p *Product) HasCustomization(option string) bool {
	_, ok := p.CustomizationOptions[option]
	return ok
}

func (p *Product) HasMeasurement(field string) bool {
	for _, f := range p.MeasurementFields {
		if f == field {
			return true
		}
	}
	return false
}
