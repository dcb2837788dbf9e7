package enums

// Shift names a production shift.
type Shift string

const (
	ShiftDay   Shift = "Day"
	ShiftNight Shift = "Night"
)

// String implements fmt.Stringer.
func (s Shift) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Shift.
func (s Shift) IsValid() bool {
	return s == ShiftDay || s == ShiftNight
}
