package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewplan/models"
	"crewplan/utils"
)

// CalendarService keeps calendar entries consistent with their sources. Task
// entries are derived from accepted assignments, leave entries from approved
// leave requests; neither is edited directly by a user-facing command.
type CalendarService struct {
	DB *gorm.DB
}

func NewCalendarService(db *gorm.DB) *CalendarService {
	return &CalendarService{DB: db}
}

// UpsertTaskEntry creates or re-points the entry for (task, employee) so its
// window equals the task's current window. Idempotent.
func (s *CalendarService) UpsertTaskEntry(tx *gorm.DB, task *models.Task, employeeID uuid.UUID) error {
	var entry models.CalendarEntry
	err := tx.Where("task_id = ? AND employee_id = ?", task.ID, employeeID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = models.CalendarEntry{
			EmployeeID: employeeID,
			TaskID:     &task.ID,
			Type:       models.CalendarTypeTask,
			Start:      task.Start,
			End:        task.End,
		}
		return tx.Create(&entry).Error
	}
	if err != nil {
		return err
	}

	entry.Start = task.Start
	entry.End = task.End
	entry.Type = models.CalendarTypeTask
	return tx.Save(&entry).Error
}

// RemoveTaskEntry deletes the entry for (task, employee). No-op if absent.
func (s *CalendarService) RemoveTaskEntry(tx *gorm.DB, taskID, employeeID uuid.UUID) error {
	return tx.Where("task_id = ? AND employee_id = ?", taskID, employeeID).
		Delete(&models.CalendarEntry{}).Error
}

// ResyncTask rewrites the window of every entry tied to the task. Who has an
// entry is governed solely by assignment status, never by this call.
func (s *CalendarService) ResyncTask(tx *gorm.DB, task *models.Task) error {
	return tx.Model(&models.CalendarEntry{}).
		Where("task_id = ?", task.ID).
		Updates(map[string]interface{}{"start": task.Start, "end": task.End}).Error
}

// UpsertLeaveEntry derives a leave-type entry from an approved leave request.
func (s *CalendarService) UpsertLeaveEntry(tx *gorm.DB, leave *models.LeaveRequest) error {
	entry := models.CalendarEntry{
		EmployeeID: leave.EmployeeID,
		Type:       models.CalendarTypeLeave,
		Start:      leave.StartDate,
		End:        leave.EndDate,
	}
	return tx.Create(&entry).Error
}

// EntriesForEmployee lists an employee's calendar. Readable by the employee
// themselves or by their current manager.
func (s *CalendarService) EntriesForEmployee(identity Identity, employeeID uuid.UUID) ([]models.CalendarEntry, error) {
	if err := s.requireAccessToEmployee(identity, employeeID); err != nil {
		return nil, err
	}
	var entries []models.CalendarEntry
	err := s.DB.Where("employee_id = ?", employeeID).Order("start").Find(&entries).Error
	return entries, err
}

// EntriesForManager lists entries across all of the manager's employees.
func (s *CalendarService) EntriesForManager(identity Identity, managerID uuid.UUID) ([]models.CalendarEntry, error) {
	if err := identity.RequireManager(); err != nil {
		return nil, err
	}
	if err := identity.RequireOwner(managerID); err != nil {
		return nil, err
	}
	var entries []models.CalendarEntry
	err := s.DB.
		Joins("JOIN users ON users.id = calendar_entries.employee_id").
		Where("users.manager_id = ?", managerID).
		Order("calendar_entries.start").
		Find(&entries).Error
	return entries, err
}

func (s *CalendarService) requireAccessToEmployee(identity Identity, employeeID uuid.UUID) error {
	if identity.UserID == employeeID {
		return nil
	}
	if !identity.IsManager() {
		return utils.Forbidden("Not permitted")
	}
	var employee models.User
	if err := s.DB.First(&employee, "id = ? AND role = ?", employeeID, models.RoleEmployee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Forbidden("Not permitted")
		}
		return err
	}
	if employee.ManagerID == nil || *employee.ManagerID != identity.UserID {
		return utils.Forbidden("Not permitted")
	}
	return nil
}
