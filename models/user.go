package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// User covers both roles. Employee-only fields (ManagerID, Available,
// HourlyRate) are meaningful only when Role == RoleEmployee; "a manager's
// employees" is always the relation query on ManagerID, never a stored list.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Role      Role      `gorm:"not null;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Employee fields
	ManagerID  *uuid.UUID `gorm:"type:uuid;index" json:"manager_id,omitempty"`
	Available  bool       `gorm:"default:true" json:"available"`
	HourlyRate float64    `gorm:"default:0" json:"hourly_rate,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsManager() bool  { return u.Role == RoleManager }
func (u *User) IsEmployee() bool { return u.Role == RoleEmployee }
