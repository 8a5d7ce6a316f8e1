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

// AssignmentService is the acceptance state machine between tasks and
// employees, with the compensating side effects: an accepted assignment owns
// exactly one calendar entry mirroring the task window, and on group tasks it
// puts the employee into the task's chat. Every status write notifies the
// employee and the task's manager after commit.
type AssignmentService struct {
	DB        *gorm.DB
	Calendar  *CalendarService
	Chats     *ChatService
	Publisher Publisher
	Log       *logrus.Logger
}

func NewAssignmentService(db *gorm.DB, calendar *CalendarService, chats *ChatService, publisher Publisher, log *logrus.Logger) *AssignmentService {
	return &AssignmentService{DB: db, Calendar: calendar, Chats: chats, Publisher: publisher, Log: log}
}

type CreateAssignmentInput struct {
	TaskID     uuid.UUID
	EmployeeID uuid.UUID
	// Optional initial status; defaults to pending. An assignment created
	// directly as accepted runs the accepted side effects immediately.
	Status models.AssignmentStatus
}

// Create assigns an employee to a task. Only the task's owning manager may do
// this; one assignment per (task, employee) pair.
func (s *AssignmentService) Create(identity Identity, input CreateAssignmentInput) (*models.TaskAssignment, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = models.AssignmentPending
	}
	if !status.Valid() {
		return nil, utils.Invalid("Unknown assignment status")
	}

	var (
		assignment models.TaskAssignment
		task       models.Task
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", input.TaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Task not found")
			}
			return err
		}
		if task.ManagerID != identity.UserID {
			return utils.Forbidden("Not permitted")
		}

		var employee models.User
		if err := tx.First(&employee, "id = ? AND role = ?", input.EmployeeID, models.RoleEmployee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Employee not found")
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.TaskAssignment{}).
			Where("task_id = ? AND employee_id = ?", input.TaskID, input.EmployeeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return utils.Conflict("Employee is already assigned to this task")
		}

		assignment = models.TaskAssignment{
			TaskID:     input.TaskID,
			EmployeeID: input.EmployeeID,
			Status:     status,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		if assignment.Status == models.AssignmentAccepted {
			return s.applyAccepted(tx, &task, &assignment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"assignment": assignment.ID,
		"task":       assignment.TaskID,
		"employee":   assignment.EmployeeID,
		"status":     assignment.Status,
	}).Info("assignment created")

	s.publishChanged(&assignment, task.ManagerID)
	return &assignment, nil
}

// Decide sets the assignment status on behalf of the assigned employee. The
// answer may be rewritten by a later call (accept after decline and back);
// re-accepting is idempotent. Expired arrives through this same path from an
// external scheduler; the engine never fires it on a timer.
func (s *AssignmentService) Decide(identity Identity, assignmentID uuid.UUID, status models.AssignmentStatus) (*models.TaskAssignment, error) {
	if !status.Valid() || status == models.AssignmentPending {
		return nil, utils.Invalid("Status must be accepted, declined or expired")
	}

	var (
		assignment models.TaskAssignment
		task       models.Task
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&assignment, "id = ?", assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Assignment not found")
			}
			return err
		}
		if err := identity.RequireOwner(assignment.EmployeeID); err != nil {
			return err
		}
		if err := tx.First(&task, "id = ?", assignment.TaskID).Error; err != nil {
			return err
		}

		now := time.Now()
		assignment.Status = status
		assignment.RespondedAt = &now
		if err := tx.Save(&assignment).Error; err != nil {
			return err
		}

		if status == models.AssignmentAccepted {
			return s.applyAccepted(tx, &task, &assignment)
		}
		// Away from accepted: retract the calendar entry. Chat membership
		// stays; once in the conversation the employee keeps the history.
		return s.Calendar.RemoveTaskEntry(tx, task.ID, assignment.EmployeeID)
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"assignment": assignment.ID,
		"status":     assignment.Status,
	}).Info("assignment decided")

	s.publishChanged(&assignment, task.ManagerID)
	return &assignment, nil
}

// Delete removes an assignment and its derived calendar entry. Owning manager
// only. Chat membership is untouched.
func (s *AssignmentService) Delete(identity Identity, assignmentID uuid.UUID) error {
	if err := identity.RequireManager(); err != nil {
		return err
	}

	var (
		assignment models.TaskAssignment
		task       models.Task
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&assignment, "id = ?", assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Assignment not found")
			}
			return err
		}
		if err := tx.First(&task, "id = ?", assignment.TaskID).Error; err != nil {
			return err
		}
		if task.ManagerID != identity.UserID {
			return utils.Forbidden("Not permitted")
		}

		if err := s.Calendar.RemoveTaskEntry(tx, task.ID, assignment.EmployeeID); err != nil {
			return err
		}
		return tx.Delete(&assignment).Error
	})
	if err != nil {
		return err
	}

	s.Log.WithFields(logrus.Fields{
		"assignment": assignment.ID,
	}).Info("assignment deleted")

	s.publishChanged(&assignment, task.ManagerID)
	return nil
}

// Get returns one assignment, visible to the employee or the task's manager.
func (s *AssignmentService) Get(identity Identity, assignmentID uuid.UUID) (*models.TaskAssignment, error) {
	var assignment models.TaskAssignment
	if err := s.DB.First(&assignment, "id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Assignment not found")
		}
		return nil, err
	}
	var task models.Task
	if err := s.DB.First(&task, "id = ?", assignment.TaskID).Error; err != nil {
		return nil, err
	}
	if identity.UserID != assignment.EmployeeID && identity.UserID != task.ManagerID {
		return nil, utils.Forbidden("Not permitted")
	}
	return &assignment, nil
}

// ListForTask returns a task's assignments, owning manager only.
func (s *AssignmentService) ListForTask(identity Identity, taskID uuid.UUID) ([]models.TaskAssignment, error) {
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
	var assignments []models.TaskAssignment
	err := s.DB.Where("task_id = ?", taskID).Find(&assignments).Error
	return assignments, err
}

// ListForEmployee returns the employee's own assignments.
func (s *AssignmentService) ListForEmployee(identity Identity, employeeID uuid.UUID) ([]models.TaskAssignment, error) {
	if err := identity.RequireOwner(employeeID); err != nil {
		return nil, err
	}
	var assignments []models.TaskAssignment
	err := s.DB.Where("employee_id = ?", employeeID).Find(&assignments).Error
	return assignments, err
}

// applyAccepted runs the accepted side effects inside the same transaction:
// calendar upsert always, chat membership only for group tasks. A missing
// chat is created and the add retried.
func (s *AssignmentService) applyAccepted(tx *gorm.DB, task *models.Task, assignment *models.TaskAssignment) error {
	if err := s.Calendar.UpsertTaskEntry(tx, task, assignment.EmployeeID); err != nil {
		return err
	}
	if !task.IsGroupTask() {
		return nil
	}

	err := s.Chats.AddTaskMember(tx, task.ID, assignment.EmployeeID)
	if utils.KindOf(err) == utils.KindNotFound {
		if _, err := s.Chats.EnsureTaskGroup(tx, task, task.ManagerID); err != nil {
			return err
		}
		return s.Chats.AddTaskMember(tx, task.ID, assignment.EmployeeID)
	}
	return err
}

func (s *AssignmentService) publishChanged(assignment *models.TaskAssignment, managerID uuid.UUID) {
	s.Publisher.Publish(Event{
		Kind:       EventAssignmentChanged,
		Payload:    assignment,
		Recipients: recipients(assignment.EmployeeID, managerID),
	})
}
