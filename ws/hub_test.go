package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestHubRegistry(t *testing.T) {
	hub := NewHub(testLogger())
	user := uuid.New()

	require.Zero(t, hub.ConnectionCount(user))

	first := hub.Register(user, nil)
	second := hub.Register(user, nil)
	require.Equal(t, 2, hub.ConnectionCount(user))

	hub.Unregister(user, first)
	require.Equal(t, 1, hub.ConnectionCount(user))

	// unregistering twice is harmless
	hub.Unregister(user, first)
	require.Equal(t, 1, hub.ConnectionCount(user))

	hub.Unregister(user, second)
	require.Zero(t, hub.ConnectionCount(user))
}

func TestHubDeliverToUnknownUser(t *testing.T) {
	hub := NewHub(testLogger())
	// no connections registered, must not panic
	hub.Deliver(uuid.New(), map[string]string{"kind": "noop"})
}

func TestHubUsersAreIsolated(t *testing.T) {
	hub := NewHub(testLogger())
	alice := uuid.New()
	bob := uuid.New()

	client := hub.Register(alice, nil)
	require.Equal(t, 1, hub.ConnectionCount(alice))
	require.Zero(t, hub.ConnectionCount(bob))

	hub.Unregister(bob, client)
	require.Equal(t, 1, hub.ConnectionCount(alice))
}
