package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CalendarEntryType string

const (
	CalendarTypeTask  CalendarEntryType = "task"
	CalendarTypeLeave CalendarEntryType = "leave"
)

// CalendarEntry is derived state: task entries exist exactly for accepted
// assignments and mirror the task's current window, leave entries exist for
// approved leave requests. Never edited directly by a user-facing command.
type CalendarEntry struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID uuid.UUID         `gorm:"type:uuid;not null;index" json:"employee_id"`
	TaskID     *uuid.UUID        `gorm:"type:uuid;index" json:"task_id,omitempty"`
	Type       CalendarEntryType `gorm:"not null" json:"type"`
	Start      time.Time         `gorm:"not null" json:"start"`
	End        time.Time         `gorm:"not null" json:"end"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (e *CalendarEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
