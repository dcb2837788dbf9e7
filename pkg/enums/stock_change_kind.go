package enums

import "fmt"

// StockChangeKind classifies a finished-stock ledger mutation.
type StockChangeKind string

const (
	StockChangeKindProduction   StockChangeKind = "production"
	StockChangeKindSale         StockChangeKind = "sale"
	StockChangeKindAdjustment   StockChangeKind = "adjustment"
	StockChangeKindCancellation StockChangeKind = "cancellation"
)

var validStockChangeKinds = []StockChangeKind{
	StockChangeKindProduction,
	StockChangeKindSale,
	StockChangeKindAdjustment,
	StockChangeKindCancellation,
}

// String implements fmt.Stringer.
func (k StockChangeKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known StockChangeKind.
func (k StockChangeKind) IsValid() bool {
	for _, candidate := range validStockChangeKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseStockChangeKind converts raw input into a StockChangeKind.
func ParseStockChangeKind(value string) (StockChangeKind, error) {
	for _, candidate := range validStockChangeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock change kind %q", value)
}
