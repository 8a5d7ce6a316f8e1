package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Migrate creates/updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Task{},
		&TaskAssignment{},
		&Request{},
		&CalendarEntry{},
		&Chat{},
		&ChatMember{},
		&Message{},
		&LeaveRequest{},
	)
}

// SeedDemoData inserts a demo manager, two employees and a group task so a
// fresh environment has something to click on. Idempotent via FirstOrCreate
// on email.
func SeedDemoData(db *gorm.DB) error {
	manager := User{
		ID:    uuid.New(),
		Name:  "Mona Manager",
		Email: "mona@crewplan.dev",
		Role:  RoleManager,
	}
	if err := db.Where("email = ?", manager.Email).FirstOrCreate(&manager).Error; err != nil {
		return err
	}

	employees := []User{
		{ID: uuid.New(), Name: "Emil Employee", Email: "emil@crewplan.dev", Role: RoleEmployee, Available: true},
		{ID: uuid.New(), Name: "Erika Employee", Email: "erika@crewplan.dev", Role: RoleEmployee, Available: true},
	}
	for i := range employees {
		if err := db.Where("email = ?", employees[i].Email).FirstOrCreate(&employees[i]).Error; err != nil {
			return err
		}
	}

	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	task := Task{
		ID:                uuid.New(),
		ManagerID:         manager.ID,
		Location:          "Hauptlager Ost",
		Company:           "Acme Logistics",
		RequiredEmployees: 2,
		Start:             start,
		End:               start.Add(8 * time.Hour),
	}
	return db.Where("manager_id = ? AND location = ? AND company = ?",
		task.ManagerID, task.Location, task.Company).FirstOrCreate(&task).Error
}
