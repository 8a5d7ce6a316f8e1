package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is a time-bound job posted by a manager. Identity is immutable, the
// schedule (Start/End) may change after creation; calendar entries derived
// from assignments must follow it.
type Task struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ManagerID         uuid.UUID `gorm:"type:uuid;not null;index" json:"manager_id"`
	Location          string    `gorm:"not null" json:"location"`
	Company           string    `gorm:"not null" json:"company"`
	RequiredEmployees int       `gorm:"not null" json:"required_employees"`
	Start             time.Time `gorm:"not null" json:"start"`
	End               time.Time `gorm:"not null" json:"end"`
	// Until when employees may respond; enforcement is an external
	// scheduler's job, this engine only stores the deadline.
	ResponseDeadline *time.Time `json:"response_deadline,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsGroupTask reports whether the task gets a group chat on acceptance.
func (t *Task) IsGroupTask() bool { return t.RequiredEmployees > 1 }
