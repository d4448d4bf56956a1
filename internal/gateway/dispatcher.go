package gateway

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/events"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/models"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/observability"
)

// Broadcaster delivers an event to live subscribers.
type Broadcaster interface {
	BroadcastRoom(roomID int64, event models.Event)
	SendToUser(userID int64, event models.Event)
}

// Dispatcher bridges committed state changes to push delivery. Producers
// enqueue without blocking; one consumer goroutine broadcasts to the hub and
// feeds durable kinds to the platform exchange. Delivery failures can never
// roll back the already-committed persistence.
type Dispatcher struct {
	broadcaster Broadcaster
	publisher   events.Publisher
	service     string
	environment string
	ch          chan models.Event
	log         zerolog.Logger
}

// NewDispatcher constructs a Dispatcher with the given buffer size.
func NewDispatcher(b Broadcaster, pub events.Publisher, service, environment string, buffer int, log zerolog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		broadcaster: b,
		publisher:   pub,
		service:     service,
		environment: environment,
		ch:          make(chan models.Event, buffer),
		log:         log.With().Str("component", "gateway").Logger(),
	}
}

// Enqueue hands an event to the dispatcher without blocking. When the buffer
// is full the event is dropped and counted; subscribers catch up on their
// next fetch.
func (d *Dispatcher) Enqueue(event models.Event) {
	select {
	case d.ch <- event:
	default:
		observability.IncEventDropped(string(event.Type))
		d.log.Warn().Str("type", string(event.Type)).Int64("room_id", event.RoomID).Msg("event buffer full, dropped")
	}
}

// Run consumes events until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.ch:
			d.dispatch(ctx, event)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event models.Event) {
	if event.TargetUserID != 0 {
		d.broadcaster.SendToUser(event.TargetUserID, event)
	} else {
		d.broadcaster.BroadcastRoom(event.RoomID, event)
	}
	observability.IncWSEvent(strings.ToLower(string(event.Type)))

	if event.Ephemeral() || d.publisher == nil {
		return
	}
	envelope := events.NewEnvelope(d.service, d.environment, event)
	_ = d.publisher.Publish(ctx, routingKey(event), envelope)
}

func routingKey(event models.Event) string {
	return "chat_events." + strings.ToLower(string(event.Type))
}
