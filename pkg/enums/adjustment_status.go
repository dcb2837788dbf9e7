package enums

// AdjustmentStatus tracks the request/approve/reject state machine.
// PENDING is the only non-terminal state.
type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "PENDING"
	AdjustmentStatusApproved AdjustmentStatus = "APPROVED"
	AdjustmentStatusRejected AdjustmentStatus = "REJECTED"
)

// String implements fmt.Stringer.
func (s AdjustmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AdjustmentStatus.
func (s AdjustmentStatus) IsValid() bool {
	switch s {
	case AdjustmentStatusPending, AdjustmentStatusApproved, AdjustmentStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s AdjustmentStatus) IsTerminal() bool {
	return s == AdjustmentStatusApproved || s == AdjustmentStatusRejected
}
