package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"crewplan/services"
	"crewplan/ws"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestPublishNeverBlocks(t *testing.T) {
	d := NewDispatcher(ws.NewHub(testLogger()), nil, testLogger())

	// no Start loop running; fill the queue past capacity
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < queueSize+10; i++ {
			d.Publish(services.Event{Kind: services.EventAssignmentChanged})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	require.Len(t, d.queue, queueSize)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	d := NewDispatcher(ws.NewHub(testLogger()), nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(stopped)
	}()

	d.Publish(services.Event{
		Kind:       services.EventRequestCreated,
		Recipients: []uuid.UUID{uuid.New()},
	})
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}
}
