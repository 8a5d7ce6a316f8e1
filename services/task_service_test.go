package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crewplan/models"
	"crewplan/utils"
)

func newTaskFixture(t *testing.T) (*gorm.DB, *TaskService) {
	t.Helper()
	db := testDB(t)
	svc := NewTaskService(db, NewCalendarService(db), testLogger())
	return db, svc
}

func validTaskInput() TaskInput {
	start := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)
	return TaskInput{
		Location:          "Hamburg",
		Company:           "Hafen Logistik",
		RequiredEmployees: 2,
		Start:             start,
		End:               start.Add(8 * time.Hour),
	}
}

func TestTaskCreateValidation(t *testing.T) {
	db, svc := newTaskFixture(t)
	manager := makeManager(t, db, "mona")

	cases := map[string]func(*TaskInput){
		"blank company":    func(in *TaskInput) { in.Company = "  " },
		"blank location":   func(in *TaskInput) { in.Location = "" },
		"zero employees":   func(in *TaskInput) { in.RequiredEmployees = 0 },
		"inverted window":  func(in *TaskInput) { in.End = in.Start.Add(-time.Hour) },
		"collapsed window": func(in *TaskInput) { in.End = in.Start },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validTaskInput()
			mutate(&input)
			_, err := svc.Create(asIdentity(manager), input)
			requireKind(t, err, utils.KindInvalid)
		})
	}

	t.Run("employees cannot create tasks", func(t *testing.T) {
		employee := makeEmployee(t, db, "emil", &manager.ID)
		_, err := svc.Create(asIdentity(employee), validTaskInput())
		requireKind(t, err, utils.KindForbidden)
	})

	t.Run("valid input succeeds", func(t *testing.T) {
		task, err := svc.Create(asIdentity(manager), validTaskInput())
		require.NoError(t, err)
		require.Equal(t, manager.ID, task.ManagerID)
		require.True(t, task.IsGroupTask())
	})
}

func TestTaskAccessIsOwnerScoped(t *testing.T) {
	db, svc := newTaskFixture(t)
	mona := makeManager(t, db, "mona")
	otto := makeManager(t, db, "otto")

	task, err := svc.Create(asIdentity(mona), validTaskInput())
	require.NoError(t, err)

	_, err = svc.Get(asIdentity(otto), task.ID)
	requireKind(t, err, utils.KindForbidden)

	_, err = svc.ListForManager(asIdentity(otto), mona.ID)
	requireKind(t, err, utils.KindForbidden)

	own, err := svc.ListForManager(asIdentity(mona), mona.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
}

func TestTaskRescheduleResyncsCalendar(t *testing.T) {
	db, svc := newTaskFixture(t)
	manager := makeManager(t, db, "mona")
	employee := makeEmployee(t, db, "emil", &manager.ID)

	task, err := svc.Create(asIdentity(manager), validTaskInput())
	require.NoError(t, err)

	// an accepted assignment already derived an entry
	calendar := NewCalendarService(db)
	require.NoError(t, calendar.UpsertTaskEntry(db, task, employee.ID))

	input := validTaskInput()
	input.Start = input.Start.Add(24 * time.Hour)
	input.End = input.End.Add(24 * time.Hour)
	updated, err := svc.Update(asIdentity(manager), task.ID, input)
	require.NoError(t, err)

	var entry models.CalendarEntry
	require.NoError(t, db.First(&entry, "task_id = ? AND employee_id = ?", task.ID, employee.ID).Error)
	require.True(t, entry.Start.Equal(updated.Start))
	require.True(t, entry.End.Equal(updated.End))
}

func TestTaskUpdateWithoutRescheduleLeavesEntries(t *testing.T) {
	db, svc := newTaskFixture(t)
	manager := makeManager(t, db, "mona")
	employee := makeEmployee(t, db, "emil", &manager.ID)

	task, err := svc.Create(asIdentity(manager), validTaskInput())
	require.NoError(t, err)
	require.NoError(t, NewCalendarService(db).UpsertTaskEntry(db, task, employee.ID))

	input := validTaskInput()
	input.Location = "Bremen"
	_, err = svc.Update(asIdentity(manager), task.ID, input)
	require.NoError(t, err)

	var entry models.CalendarEntry
	require.NoError(t, db.First(&entry, "task_id = ?", task.ID).Error)
	require.True(t, entry.Start.Equal(task.Start))
	require.True(t, entry.End.Equal(task.End))
}

func TestTaskDeleteRemovesDerivedState(t *testing.T) {
	db, svc := newTaskFixture(t)
	pub := &capturePublisher{}
	chats := NewChatService(db, pub, testLogger())
	assignments := NewAssignmentService(db, NewCalendarService(db), chats, pub, testLogger())

	manager := makeManager(t, db, "mona")
	employee := makeEmployee(t, db, "emil", &manager.ID)

	task, err := svc.Create(asIdentity(manager), validTaskInput())
	require.NoError(t, err)
	assignment, err := assignments.Create(asIdentity(manager), CreateAssignmentInput{TaskID: task.ID, EmployeeID: employee.ID})
	require.NoError(t, err)
	_, err = assignments.Decide(asIdentity(employee), assignment.ID, models.AssignmentAccepted)
	require.NoError(t, err)

	t.Run("foreign manager cannot delete", func(t *testing.T) {
		otto := makeManager(t, db, "otto")
		requireKind(t, svc.Delete(asIdentity(otto), task.ID), utils.KindForbidden)
	})

	require.NoError(t, svc.Delete(asIdentity(manager), task.ID))

	var entries, rows int64
	require.NoError(t, db.Model(&models.CalendarEntry{}).Where("task_id = ?", task.ID).Count(&entries).Error)
	require.Zero(t, entries)
	require.NoError(t, db.Model(&models.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&rows).Error)
	require.Zero(t, rows)

	// the group chat survives, detached from the task
	var chat models.Chat
	require.NoError(t, db.First(&chat, "name = ?", "Hamburg - Hafen Logistik").Error)
	require.Nil(t, chat.TaskID)

	requireKind(t, svc.Delete(asIdentity(manager), task.ID), utils.KindNotFound)
}
