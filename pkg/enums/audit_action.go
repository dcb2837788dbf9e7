package enums

// AuditAction names a state-changing operation recorded in the audit trail.
type AuditAction string

const (
	AuditActionLogin             AuditAction = "LOGIN"
	AuditActionLogout            AuditAction = "LOGOUT"
	AuditActionCreateUser        AuditAction = "CREATE_USER"
	AuditActionDisableUser       AuditAction = "DISABLE_USER"
	AuditActionResetPassword     AuditAction = "RESET_PASSWORD"
	AuditActionPasswordChange    AuditAction = "PASSWORD_CHANGE"
	AuditActionEntryCreate       AuditAction = "ENTRY_CREATE"
	AuditActionEntryVoid         AuditAction = "ENTRY_VOID"
	AuditActionSaleCreate        AuditAction = "SALE_CREATE"
	AuditActionSaleCancel        AuditAction = "SALE_CANCEL"
	AuditActionAdjustmentRequest AuditAction = "ADJUSTMENT_REQUEST"
	AuditActionAdjustmentAction  AuditAction = "ADJUSTMENT_ACTION"
	AuditActionDataExport        AuditAction = "DATA_EXPORT"
)

var validAuditActions = []AuditAction{
	AuditActionLogin,
	AuditActionLogout,
	AuditActionCreateUser,
	AuditActionDisableUser,
	AuditActionResetPassword,
	AuditActionPasswordChange,
	AuditActionEntryCreate,
	AuditActionEntryVoid,
	AuditActionSaleCreate,
	AuditActionSaleCancel,
	AuditActionAdjustmentRequest,
	AuditActionAdjustmentAction,
	AuditActionDataExport,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}
