package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "pending"
	AssignmentAccepted AssignmentStatus = "accepted"
	AssignmentDeclined AssignmentStatus = "declined"
	AssignmentExpired  AssignmentStatus = "expired"
)

// TaskAssignment links a task to an employee and tracks the response. The
// employee may change their answer again after responding (accept after a
// decline and vice versa), unlike a Request which is decided exactly once.
type TaskAssignment struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_task_employee" json:"task_id"`
	EmployeeID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_task_employee" json:"employee_id"`
	Status      AssignmentStatus `gorm:"not null;default:'pending'" json:"status"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (a *TaskAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentDeclined, AssignmentExpired:
		return true
	}
	return false
}
