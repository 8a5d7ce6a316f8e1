package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"crewplan/models"
	"crewplan/utils"
)

func TestRequestCreate(t *testing.T) {
	db := testDB(t)
	pub := &capturePublisher{}
	svc := NewRequestService(db, pub, testLogger())

	manager := makeManager(t, db, "mona")
	employee := makeEmployee(t, db, "emil", nil)

	t.Run("employee may not create", func(t *testing.T) {
		_, err := svc.Create(asIdentity(employee), employee.ID, "hi")
		requireKind(t, err, utils.KindForbidden)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.Create(asIdentity(manager), uuid.New(), "join us")
		requireKind(t, err, utils.KindNotFound)
	})

	t.Run("success emits to both parties", func(t *testing.T) {
		request, err := svc.Create(asIdentity(manager), employee.ID, "join us")
		require.NoError(t, err)
		require.Equal(t, models.RequestPending, request.Status)
		require.Equal(t, "join us", request.Message)

		event := pub.last(t)
		require.Equal(t, EventRequestCreated, event.Kind)
		require.ElementsMatch(t, []uuid.UUID{manager.ID, employee.ID}, event.Recipients)
	})

	t.Run("duplicate pair conflicts regardless of status", func(t *testing.T) {
		_, err := svc.Create(asIdentity(manager), employee.ID, "again")
		requireKind(t, err, utils.KindConflict)
	})

	t.Run("already linked employee conflicts", func(t *testing.T) {
		other := makeManager(t, db, "otto")
		linked := makeEmployee(t, db, "lena", &other.ID)
		_, err := svc.Create(asIdentity(manager), linked.ID, "come over")
		requireKind(t, err, utils.KindConflict)
	})
}

func TestRequestDecide(t *testing.T) {
	db := testDB(t)
	pub := &capturePublisher{}
	svc := NewRequestService(db, pub, testLogger())

	manager := makeManager(t, db, "mona")
	employee := makeEmployee(t, db, "emil", nil)

	request, err := svc.Create(asIdentity(manager), employee.ID, "join us")
	require.NoError(t, err)

	t.Run("only the named employee decides", func(t *testing.T) {
		_, err := svc.Decide(asIdentity(manager), request.ID, models.RequestApproved)
		requireKind(t, err, utils.KindForbidden)

		stranger := makeEmployee(t, db, "sven", nil)
		_, err = svc.Decide(asIdentity(stranger), request.ID, models.RequestApproved)
		requireKind(t, err, utils.KindForbidden)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := svc.Decide(asIdentity(employee), uuid.New(), models.RequestApproved)
		requireKind(t, err, utils.KindNotFound)
	})

	t.Run("approval links employee atomically and notifies both", func(t *testing.T) {
		// the event must observe the committed state
		pub.onPublish = func(event Event) {
			var fresh models.User
			require.NoError(t, db.First(&fresh, "id = ?", employee.ID).Error)
			require.NotNil(t, fresh.ManagerID)
		}
		defer func() { pub.onPublish = nil }()

		decided, err := svc.Decide(asIdentity(employee), request.ID, models.RequestApproved)
		require.NoError(t, err)
		require.Equal(t, models.RequestApproved, decided.Status)

		var fresh models.User
		require.NoError(t, db.First(&fresh, "id = ?", employee.ID).Error)
		require.NotNil(t, fresh.ManagerID)
		require.Equal(t, manager.ID, *fresh.ManagerID)

		event := pub.last(t)
		require.Equal(t, EventRequestUpdated, event.Kind)
		require.ElementsMatch(t, []uuid.UUID{manager.ID, employee.ID}, event.Recipients)
	})

	t.Run("terminal request cannot be re-decided", func(t *testing.T) {
		_, err := svc.Decide(asIdentity(employee), request.ID, models.RequestRejected)
		requireKind(t, err, utils.KindConflict)
	})
}

func TestRequestDecideApprovalRechecksLink(t *testing.T) {
	db := testDB(t)
	svc := NewRequestService(db, &capturePublisher{}, testLogger())

	manager := makeManager(t, db, "mona")
	employee := makeEmployee(t, db, "emil", nil)

	request, err := svc.Create(asIdentity(manager), employee.ID, "join us")
	require.NoError(t, err)

	// The employee joined someone else between create and decide.
	rival := makeManager(t, db, "rita")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", employee.ID).
		Update("manager_id", rival.ID).Error)

	_, err = svc.Decide(asIdentity(employee), request.ID, models.RequestApproved)
	requireKind(t, err, utils.KindConflict)

	// Rejection still works: no side effects beyond the status write.
	rejected, err := svc.Decide(asIdentity(employee), request.ID, models.RequestRejected)
	require.NoError(t, err)
	require.Equal(t, models.RequestRejected, rejected.Status)

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", employee.ID).Error)
	require.Equal(t, rival.ID, *fresh.ManagerID)
}

func TestRequestListsAreOwnerOnly(t *testing.T) {
	db := testDB(t)
	svc := NewRequestService(db, &capturePublisher{}, testLogger())

	manager := makeManager(t, db, "mona")
	other := makeManager(t, db, "otto")
	employee := makeEmployee(t, db, "emil", nil)

	_, err := svc.Create(asIdentity(manager), employee.ID, "join us")
	require.NoError(t, err)

	requests, err := svc.ListForManager(asIdentity(manager), manager.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	_, err = svc.ListForManager(asIdentity(other), manager.ID)
	requireKind(t, err, utils.KindForbidden)

	incoming, err := svc.ListForEmployee(asIdentity(employee), employee.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	_, err = svc.ListForEmployee(asIdentity(manager), employee.ID)
	requireKind(t, err, utils.KindForbidden)
}
