package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

// User represents a facility operator identity. There is exactly one
// Owner; Supervisors are created by the Owner and never deleted.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	LoginID      string         `gorm:"column:login_id;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	Phone        *string        `gorm:"column:phone"`
	EmployeeCode *string        `gorm:"column:employee_code"`
	Email        *string        `gorm:"column:email"`
	Disabled     bool           `gorm:"column:disabled;not null;default:false"`
	FirstLogin   bool           `gorm:"column:first_login;not null;default:false"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
