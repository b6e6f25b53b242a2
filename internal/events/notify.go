package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes emitted events to the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, ev Event) error {
	n.Logger.Info().
		Str("topic", ev.Topic).
		Str("aggregate_id", ev.AggregateID).
		Int64("event_id", ev.ID).
		RawJSON("payload", ev.Payload).
		Msg("domain_event")
	return nil
}
