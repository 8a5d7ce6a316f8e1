package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewplan/models"
	"crewplan/utils"
)

// LeaveService handles leave requests: an employee files one, their manager
// decides. Approval derives a leave-type calendar entry for the window, the
// same derived-state rule that governs task acceptance.
type LeaveService struct {
	DB       *gorm.DB
	Calendar *CalendarService
	Log      *logrus.Logger
}

func NewLeaveService(db *gorm.DB, calendar *CalendarService, log *logrus.Logger) *LeaveService {
	return &LeaveService{DB: db, Calendar: calendar, Log: log}
}

type LeaveInput struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

func (s *LeaveService) Create(identity Identity, input LeaveInput) (*models.LeaveRequest, error) {
	if err := identity.RequireEmployee(); err != nil {
		return nil, err
	}
	if !input.StartDate.Before(input.EndDate) {
		return nil, utils.Invalid("Start date must be before end date")
	}

	leave := models.LeaveRequest{
		EmployeeID: identity.UserID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Reason:     input.Reason,
		Status:     models.LeavePending,
	}
	if err := s.DB.Create(&leave).Error; err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{"leave": leave.ID, "employee": leave.EmployeeID}).Info("leave request created")
	return &leave, nil
}

// Decide approves or rejects a pending leave request. Only the employee's own
// manager may decide; approval records the decider and derives the calendar
// entry inside the same transaction.
func (s *LeaveService) Decide(identity Identity, leaveID uuid.UUID, status models.LeaveStatus) (*models.LeaveRequest, error) {
	if status != models.LeaveApproved && status != models.LeaveRejected {
		return nil, utils.Invalid("Status must be approved or rejected")
	}
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}

	var leave models.LeaveRequest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&leave, "id = ?", leaveID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Leave request not found")
			}
			return err
		}
		if leave.Status != models.LeavePending {
			return utils.Conflict("Leave request already decided")
		}

		var employee models.User
		if err := tx.First(&employee, "id = ?", leave.EmployeeID).Error; err != nil {
			return err
		}
		if employee.ManagerID == nil || *employee.ManagerID != identity.UserID {
			return utils.Forbidden("Not permitted")
		}

		now := time.Now()
		leave.Status = status
		leave.DecidedByID = &identity.UserID
		leave.DecidedAt = &now
		if err := tx.Save(&leave).Error; err != nil {
			return err
		}

		if status == models.LeaveApproved {
			return s.Calendar.UpsertLeaveEntry(tx, &leave)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{"leave": leave.ID, "status": leave.Status}).Info("leave request decided")
	return &leave, nil
}

// ListForEmployee returns the employee's own leave requests.
func (s *LeaveService) ListForEmployee(identity Identity, employeeID uuid.UUID) ([]models.LeaveRequest, error) {
	if err := identity.RequireOwner(employeeID); err != nil {
		return nil, err
	}
	var leaves []models.LeaveRequest
	err := s.DB.Where("employee_id = ?", employeeID).Order("created_at desc").Find(&leaves).Error
	return leaves, err
}

// ListForManager returns leave requests filed by the manager's employees.
func (s *LeaveService) ListForManager(identity Identity, managerID uuid.UUID) ([]models.LeaveRequest, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	if err := identity.RequireOwner(managerID); err != nil {
		return nil, err
	}
	var leaves []models.LeaveRequest
	err := s.DB.
		Joins("JOIN users ON users.id = leave_requests.employee_id").
		Where("users.manager_id = ?", managerID).
		Order("leave_requests.created_at desc").
		Find(&leaves).Error
	return leaves, err
}
