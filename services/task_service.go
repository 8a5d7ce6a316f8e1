package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crewplan/models"
	"crewplan/utils"
)

// TaskService manages the jobs themselves. Managers only, and only their own
// tasks. A reschedule drags every derived calendar entry along; a delete
// removes derived state first in explicit order (no ORM cascades here).
type TaskService struct {
	DB       *gorm.DB
	Calendar *CalendarService
	Log      *logrus.Logger
}

func NewTaskService(db *gorm.DB, calendar *CalendarService, log *logrus.Logger) *TaskService {
	return &TaskService{DB: db, Calendar: calendar, Log: log}
}

type TaskInput struct {
	Location          string
	Company           string
	RequiredEmployees int
	Start             time.Time
	End               time.Time
	ResponseDeadline  *time.Time
}

func (in TaskInput) validate() error {
	if strings.TrimSpace(in.Company) == "" {
		return utils.Invalid("Company must not be empty")
	}
	if strings.TrimSpace(in.Location) == "" {
		return utils.Invalid("Location must not be empty")
	}
	if in.RequiredEmployees < 1 {
		return utils.Invalid("At least one employee is required")
	}
	if !in.Start.Before(in.End) {
		return utils.Invalid("Start must be before end")
	}
	return nil
}

func (s *TaskService) Create(identity Identity, input TaskInput) (*models.Task, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	task := models.Task{
		ManagerID:         identity.UserID,
		Location:          input.Location,
		Company:           input.Company,
		RequiredEmployees: input.RequiredEmployees,
		Start:             input.Start,
		End:               input.End,
		ResponseDeadline:  input.ResponseDeadline,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{"task": task.ID, "manager": task.ManagerID}).Info("task created")
	return &task, nil
}

func (s *TaskService) Get(identity Identity, taskID uuid.UUID) (*models.Task, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	var task models.Task
	if err := s.DB.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Task not found")
		}
		return nil, err
	}
	if task.ManagerID != identity.UserID {
		return nil, utils.Forbidden("Not permitted")
	}
	return &task, nil
}

func (s *TaskService) ListForManager(identity Identity, managerID uuid.UUID) ([]models.Task, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	if err := identity.RequireOwner(managerID); err != nil {
		return nil, err
	}
	var tasks []models.Task
	err := s.DB.Where("manager_id = ?", managerID).Order("start").Find(&tasks).Error
	return tasks, err
}

// Update rewrites the mutable task fields. When the window changed, every
// calendar entry derived from this task is resynced in the same transaction.
func (s *TaskService) Update(identity Identity, taskID uuid.UUID, input TaskInput) (*models.Task, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var task models.Task
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Task not found")
			}
			return err
		}
		if task.ManagerID != identity.UserID {
			return utils.Forbidden("Not permitted")
		}

		rescheduled := !task.Start.Equal(input.Start) || !task.End.Equal(input.End)

		task.Location = input.Location
		task.Company = input.Company
		task.RequiredEmployees = input.RequiredEmployees
		task.Start = input.Start
		task.End = input.End
		task.ResponseDeadline = input.ResponseDeadline
		if err := tx.Save(&task).Error; err != nil {
			return err
		}

		if rescheduled {
			return s.Calendar.ResyncTask(tx, &task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{"task": task.ID}).Info("task updated")
	return &task, nil
}

// Delete removes the task and everything derived from it, in order: calendar
// entries, assignments, the chat link, then the task row.
func (s *TaskService) Delete(identity Identity, taskID uuid.UUID) error {
	if err := identity.RequireManager(); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := lockForUpdate(tx).First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Task not found")
			}
			return err
		}
		if task.ManagerID != identity.UserID {
			return utils.Forbidden("Not permitted")
		}

		if err := tx.Where("task_id = ?", taskID).Delete(&models.CalendarEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		// Detach the chat from the task; the conversation itself survives
		// so members keep their history.
		if err := tx.Model(&models.Chat{}).Where("task_id = ?", taskID).
			Update("task_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
}
