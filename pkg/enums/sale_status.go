package enums

// SaleStatus tracks the lifecycle of a dispatch record.
type SaleStatus string

const (
	SaleStatusConfirmed SaleStatus = "confirmed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusConfirmed || s == SaleStatusCancelled
}
