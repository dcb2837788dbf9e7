package enums

import "fmt"

// BuyerType categorizes the counterparty on a sale.
type BuyerType string

const (
	BuyerTypeRetailer   BuyerType = "retailer"
	BuyerTypeWholesaler BuyerType = "wholesaler"
	BuyerTypeFactory    BuyerType = "factory"
	BuyerTypeOther      BuyerType = "other"
)

var validBuyerTypes = []BuyerType{
	BuyerTypeRetailer,
	BuyerTypeWholesaler,
	BuyerTypeFactory,
	BuyerTypeOther,
}

// String implements fmt.Stringer.
func (b BuyerType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BuyerType.
func (b BuyerType) IsValid() bool {
	for _, candidate := range validBuyerTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBuyerType converts raw input into a BuyerType.
func ParseBuyerType(value string) (BuyerType, error) {
	for _, candidate := range validBuyerTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid buyer type %q", value)
}
