package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crewplan/models"
	"crewplan/utils"
)

func newLeaveFixture(t *testing.T) (*gorm.DB, *LeaveService) {
	t.Helper()
	db := testDB(t)
	return db, NewLeaveService(db, NewCalendarService(db), testLogger())
}

func validLeaveInput() LeaveInput {
	start := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	return LeaveInput{StartDate: start, EndDate: start.Add(5 * 24 * time.Hour), Reason: "vacation"}
}

func TestLeaveCreate(t *testing.T) {
	db, svc := newLeaveFixture(t)
	manager := makeManager(t, db, "mona")
	employee := makeEmployee(t, db, "emil", &manager.ID)

	t.Run("employees only", func(t *testing.T) {
		_, err := svc.Create(asIdentity(manager), validLeaveInput())
		requireKind(t, err, utils.KindForbidden)
	})

	t.Run("date order is enforced", func(t *testing.T) {
		input := validLeaveInput()
		input.EndDate = input.StartDate
		_, err := svc.Create(asIdentity(employee), input)
		requireKind(t, err, utils.KindInvalid)
	})

	t.Run("starts pending", func(t *testing.T) {
		leave, err := svc.Create(asIdentity(employee), validLeaveInput())
		require.NoError(t, err)
		require.Equal(t, models.LeavePending, leave.Status)
		require.Nil(t, leave.DecidedByID)
	})
}

func TestLeaveDecide(t *testing.T) {
	db, svc := newLeaveFixture(t)
	manager := makeManager(t, db, "mona")
	employee := makeEmployee(t, db, "emil", &manager.ID)

	leave, err := svc.Create(asIdentity(employee), validLeaveInput())
	require.NoError(t, err)

	t.Run("only a valid status", func(t *testing.T) {
		_, err := svc.Decide(asIdentity(manager), leave.ID, models.LeavePending)
		requireKind(t, err, utils.KindInvalid)
	})

	t.Run("only the employee's own manager", func(t *testing.T) {
		otto := makeManager(t, db, "otto")
		_, err := svc.Decide(asIdentity(otto), leave.ID, models.LeaveApproved)
		requireKind(t, err, utils.KindForbidden)

		_, err = svc.Decide(asIdentity(employee), leave.ID, models.LeaveApproved)
		requireKind(t, err, utils.KindForbidden)
	})

	t.Run("approval records decider and derives a calendar entry", func(t *testing.T) {
		decided, err := svc.Decide(asIdentity(manager), leave.ID, models.LeaveApproved)
		require.NoError(t, err)
		require.Equal(t, models.LeaveApproved, decided.Status)
		require.NotNil(t, decided.DecidedByID)
		require.Equal(t, manager.ID, *decided.DecidedByID)
		require.NotNil(t, decided.DecidedAt)

		var entry models.CalendarEntry
		require.NoError(t, db.First(&entry, "employee_id = ? AND type = ?", employee.ID, models.CalendarTypeLeave).Error)
		require.True(t, entry.Start.Equal(leave.StartDate))
		require.True(t, entry.End.Equal(leave.EndDate))
		require.Nil(t, entry.TaskID)
	})

	t.Run("decided requests stay decided", func(t *testing.T) {
		_, err := svc.Decide(asIdentity(manager), leave.ID, models.LeaveRejected)
		requireKind(t, err, utils.KindConflict)
	})

	t.Run("rejection derives nothing", func(t *testing.T) {
		second, err := svc.Create(asIdentity(employee), validLeaveInput())
		require.NoError(t, err)
		_, err = svc.Decide(asIdentity(manager), second.ID, models.LeaveRejected)
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&models.CalendarEntry{}).
			Where("employee_id = ? AND type = ?", employee.ID, models.CalendarTypeLeave).Count(&count).Error)
		require.EqualValues(t, 1, count)
	})
}

func TestLeaveLists(t *testing.T) {
	db, svc := newLeaveFixture(t)
	manager := makeManager(t, db, "mona")
	employee := makeEmployee(t, db, "emil", &manager.ID)
	stranger := makeEmployee(t, db, "udo", nil)

	_, err := svc.Create(asIdentity(employee), validLeaveInput())
	require.NoError(t, err)

	t.Run("employee list is owner only", func(t *testing.T) {
		_, err := svc.ListForEmployee(asIdentity(stranger), employee.ID)
		requireKind(t, err, utils.KindForbidden)

		own, err := svc.ListForEmployee(asIdentity(employee), employee.ID)
		require.NoError(t, err)
		require.Len(t, own, 1)
	})

	t.Run("manager sees only own team's requests", func(t *testing.T) {
		otto := makeManager(t, db, "otto")
		_, err := svc.ListForManager(asIdentity(otto), manager.ID)
		requireKind(t, err, utils.KindForbidden)

		team, err := svc.ListForManager(asIdentity(manager), manager.ID)
		require.NoError(t, err)
		require.Len(t, team, 1)

		empty, err := svc.ListForManager(asIdentity(otto), otto.ID)
		require.NoError(t, err)
		require.Empty(t, empty)
	})
}
