package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"crewplan/models"
	"crewplan/utils"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// capturePublisher records events synchronously. The optional onPublish hook
// runs at publish time, which lets tests assert the mutation is already
// visible in the store when the event goes out.
type capturePublisher struct {
	mu        sync.Mutex
	events    []Event
	onPublish func(Event)
}

func (p *capturePublisher) Publish(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.onPublish != nil {
		p.onPublish(event)
	}
	p.events = append(p.events, event)
}

func (p *capturePublisher) all() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

func (p *capturePublisher) last(t *testing.T) Event {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.events, "expected at least one published event")
	return p.events[len(p.events)-1]
}

func makeManager(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:  name,
		Email: name + "@test.dev",
		Role:  models.RoleManager,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func makeEmployee(t *testing.T, db *gorm.DB, name string, managerID *uuid.UUID) *models.User {
	t.Helper()
	user := &models.User{
		Name:      name,
		Email:     name + "@test.dev",
		Role:      models.RoleEmployee,
		ManagerID: managerID,
		Available: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func makeTask(t *testing.T, db *gorm.DB, managerID uuid.UUID, requiredEmployees int) *models.Task {
	t.Helper()
	start := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)
	task := &models.Task{
		ManagerID:         managerID,
		Location:          "Dockside Warehouse",
		Company:           "Acme Logistics",
		RequiredEmployees: requiredEmployees,
		Start:             start,
		End:               start.Add(8 * time.Hour),
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func asIdentity(user *models.User) Identity {
	return Identity{UserID: user.ID, Role: user.Role}
}

func requireKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, utils.KindOf(err))
}
