package enums

import "fmt"

// Product identifies a finished-goods counter.
type Product string

const (
	ProductOil  Product = "oil"
	ProductCake Product = "cake"
)

var validProducts = []Product{
	ProductOil,
	ProductCake,
}

// String implements fmt.Stringer.
func (p Product) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Product.
func (p Product) IsValid() bool {
	for _, candidate := range validProducts {
		if candidate == p {
			return true
		}
	}
	return false
}

// Products returns every finished product in lock-ordering position.
func Products() []Product {
	out := make([]Product, len(validProducts))
	copy(out, validProducts)
	return out
}

// ParseProduct converts raw input into a Product.
func ParseProduct(value string) (Product, error) {
	for _, candidate := range validProducts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product %q", value)
}
