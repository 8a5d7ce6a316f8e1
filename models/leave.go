package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest is filed by an employee and decided by their manager.
type LeaveRequest struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"employee_id"`
	DecidedByID *uuid.UUID  `gorm:"type:uuid" json:"decided_by_id,omitempty"`
	StartDate   time.Time   `gorm:"not null" json:"start_date"`
	EndDate     time.Time   `gorm:"not null" json:"end_date"`
	Reason      string      `json:"reason"`
	Status      LeaveStatus `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	DecidedAt   *time.Time  `json:"decided_at,omitempty"`
}

func (l *LeaveRequest) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected:
		return true
	}
	return false
}
