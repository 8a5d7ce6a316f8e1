package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Request is an onboarding invitation from a manager to an employee. One
// request per (manager, employee) pair ever; a decided request is never
// reopened, a new pair would need a new request (which the uniqueness rule
// then blocks on purpose).
type Request struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ManagerID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_request_manager_employee" json:"manager_id"`
	EmployeeID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_request_manager_employee" json:"employee_id"`
	Status     RequestStatus `gorm:"not null;default:'pending'" json:"status"`
	Message    string        `gorm:"size:500" json:"message"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Request) Terminal() bool { return r.Status != RequestPending }

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}
