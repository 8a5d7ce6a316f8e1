package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"crewplan/services"
	"crewplan/ws"
)

const (
	queueSize       = 1024
	deliveryTimeout = 3 * time.Second
)

// Dispatcher implements services.Publisher. Publish only enqueues, so the
// triggering command returns at commit speed; a background loop does the
// actual per-recipient delivery with its own timeout. With redis configured,
// events go to the per-user channels and reach every instance's hub through
// the bridge; without it, delivery is straight into the local hub.
type Dispatcher struct {
	hub   *ws.Hub
	rdb   *redis.Client
	log   *logrus.Logger
	queue chan services.Event
}

func NewDispatcher(hub *ws.Hub, rdb *redis.Client, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		hub:   hub,
		rdb:   rdb,
		log:   log,
		queue: make(chan services.Event, queueSize),
	}
}

// Publish enqueues without ever blocking the caller. On overflow the event is
// dropped and logged; the committed state is the source of truth, the live
// channel is best-effort.
func (d *Dispatcher) Publish(event services.Event) {
	select {
	case d.queue <- event:
	default:
		d.log.WithField("kind", event.Kind).Warn("event queue full, dropping event")
	}
}

// Start drains the queue until the context is done.
func (d *Dispatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.deliver(ctx, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event services.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		d.log.WithError(err).WithField("kind", event.Kind).Error("event marshal failed")
		return
	}

	for _, userID := range event.Recipients {
		if d.rdb != nil {
			pubCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
			err := d.rdb.Publish(pubCtx, "events:"+userID.String(), payload).Err()
			cancel()
			if err != nil {
				d.log.WithError(err).WithFields(logrus.Fields{
					"kind": event.Kind,
					"user": userID,
				}).Warn("redis publish failed, falling back to local hub")
				sentry.CaptureException(err)
				d.hub.Deliver(userID, json.RawMessage(payload))
			}
			continue
		}
		d.hub.Deliver(userID, json.RawMessage(payload))
	}
}
