package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewplan/models"
	"crewplan/utils"
)

// UserService exposes the relation queries around the single source of truth
// for the manager/employee link, employee.ManagerID, plus the direct
// manager-initiated add/remove path (the only way ManagerID changes besides
// an approved onboarding request).
type UserService struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewUserService(db *gorm.DB, log *logrus.Logger) *UserService {
	return &UserService{DB: db, Log: log}
}

func (s *UserService) Get(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// EmployeesOf lists a manager's employees via the ManagerID relation.
func (s *UserService) EmployeesOf(identity Identity, managerID uuid.UUID) ([]models.User, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	if err := identity.RequireOwner(managerID); err != nil {
		return nil, err
	}
	var employees []models.User
	err := s.DB.Where("manager_id = ? AND role = ?", managerID, models.RoleEmployee).
		Order("name").Find(&employees).Error
	return employees, err
}

// ListAvailableEmployees returns unlinked employees a manager could invite.
func (s *UserService) ListAvailableEmployees(identity Identity) ([]models.User, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	var employees []models.User
	err := s.DB.Where("role = ? AND manager_id IS NULL AND available = ?", models.RoleEmployee, true).
		Order("name").Find(&employees).Error
	return employees, err
}

// AddEmployee links an unassigned employee directly to the calling manager.
func (s *UserService) AddEmployee(identity Identity, employeeID uuid.UUID) error {
	if err := identity.RequireManager(); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var employee models.User
		if err := lockForUpdate(tx).First(&employee, "id = ? AND role = ?", employeeID, models.RoleEmployee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Employee not found")
			}
			return err
		}
		if employee.ManagerID != nil {
			return utils.Conflict("Employee already assigned to a manager")
		}
		employee.ManagerID = &identity.UserID
		return tx.Save(&employee).Error
	})
}

// RemoveEmployee unlinks one of the calling manager's employees.
func (s *UserService) RemoveEmployee(identity Identity, employeeID uuid.UUID) error {
	if err := identity.RequireManager(); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var employee models.User
		if err := lockForUpdate(tx).First(&employee, "id = ? AND role = ?", employeeID, models.RoleEmployee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Employee not found")
			}
			return err
		}
		if employee.ManagerID == nil || *employee.ManagerID != identity.UserID {
			return utils.Forbidden("Not permitted")
		}
		employee.ManagerID = nil
		return tx.Save(&employee).Error
	})
}

// SetAvailability lets an employee flip their own availability flag.
func (s *UserService) SetAvailability(identity Identity, available bool) (*models.User, error) {
	if err := identity.RequireEmployee(); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.DB.First(&user, "id = ?", identity.UserID).Error; err != nil {
		return nil, err
	}
	user.Available = available
	if err := s.DB.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
