package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewplan/models"
	"crewplan/utils"
)

// RequestService governs employee onboarding: a manager invites, the employee
// decides exactly once, approval links the employee to the manager.
type RequestService struct {
	DB        *gorm.DB
	Publisher Publisher
	Log       *logrus.Logger
}

func NewRequestService(db *gorm.DB, publisher Publisher, log *logrus.Logger) *RequestService {
	return &RequestService{DB: db, Publisher: publisher, Log: log}
}

// Create persists a pending request from the calling manager to the employee.
// Conflict when the employee already has a manager or when any request for
// the pair exists, regardless of its status.
func (s *RequestService) Create(identity Identity, employeeID uuid.UUID, message string) (*models.Request, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}

	var request models.Request
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var employee models.User
		if err := tx.First(&employee, "id = ? AND role = ?", employeeID, models.RoleEmployee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Employee not found")
			}
			return err
		}
		if employee.ManagerID != nil {
			return utils.Conflict("Employee already assigned to a manager")
		}

		var count int64
		if err := tx.Model(&models.Request{}).
			Where("manager_id = ? AND employee_id = ?", identity.UserID, employeeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return utils.Conflict("Request to this employee already exists")
		}

		request = models.Request{
			ManagerID:  identity.UserID,
			EmployeeID: employeeID,
			Status:     models.RequestPending,
			Message:    message,
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"request":  request.ID,
		"manager":  request.ManagerID,
		"employee": request.EmployeeID,
	}).Info("request created")

	s.Publisher.Publish(Event{
		Kind:       EventRequestCreated,
		Payload:    request,
		Recipients: recipients(request.ManagerID, request.EmployeeID),
	})
	return &request, nil
}

// Decide moves a pending request to approved or rejected. Only the named
// employee may decide. Approval re-checks the employee's link so a request
// approved after the employee joined a different manager fails with Conflict
// instead of silently re-linking.
func (s *RequestService) Decide(identity Identity, requestID uuid.UUID, status models.RequestStatus) (*models.Request, error) {
	if status != models.RequestApproved && status != models.RequestRejected {
		return nil, utils.Invalid("Status must be approved or rejected")
	}

	var request models.Request
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Request not found")
			}
			return err
		}
		if err := identity.RequireOwner(request.EmployeeID); err != nil {
			return err
		}
		if request.Terminal() {
			return utils.Conflict("Request already decided")
		}

		if status == models.RequestApproved {
			var employee models.User
			if err := lockForUpdate(tx).First(&employee, "id = ?", request.EmployeeID).Error; err != nil {
				return err
			}
			if employee.ManagerID != nil && *employee.ManagerID != request.ManagerID {
				return utils.Conflict("Employee already assigned to another manager")
			}
			employee.ManagerID = &request.ManagerID
			if err := tx.Save(&employee).Error; err != nil {
				return err
			}
		}

		request.Status = status
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"request": request.ID,
		"status":  request.Status,
	}).Info("request decided")

	s.Publisher.Publish(Event{
		Kind:       EventRequestUpdated,
		Payload:    request,
		Recipients: recipients(request.ManagerID, request.EmployeeID),
	})
	return &request, nil
}

// ListForManager returns the manager's own outgoing requests.
func (s *RequestService) ListForManager(identity Identity, managerID uuid.UUID) ([]models.Request, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	if err := identity.RequireOwner(managerID); err != nil {
		return nil, err
	}
	var requests []models.Request
	err := s.DB.Where("manager_id = ?", managerID).Order("created_at desc").Find(&requests).Error
	return requests, err
}

// ListForEmployee returns the employee's own incoming requests.
func (s *RequestService) ListForEmployee(identity Identity, employeeID uuid.UUID) ([]models.Request, error) {
	if err := identity.RequireOwner(employeeID); err != nil {
		return nil, err
	}
	var requests []models.Request
	err := s.DB.Where("employee_id = ?", employeeID).Order("created_at desc").Find(&requests).Error
	return requests, err
}

// Get returns a single request, visible to either party.
func (s *RequestService) Get(identity Identity, requestID uuid.UUID) (*models.Request, error) {
	var request models.Request
	if err := s.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Request not found")
		}
		return nil, err
	}
	if identity.UserID != request.ManagerID && identity.UserID != request.EmployeeID {
		return nil, utils.Forbidden("Not permitted")
	}
	return &request, nil
}
