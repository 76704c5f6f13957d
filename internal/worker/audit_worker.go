package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/flightdeck/flight-auth/internal/events"
	"github.com/flightdeck/flight-auth/internal/observability"
)

// StartAuditWorker subscribes the session audit trail to lifecycle events.
// Handlers run synchronously on publish; they only log and bump counters.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}

	log := func(msg string) events.EventHandler {
		return func(_ context.Context, event events.Event) error {
			logger.Info(msg,
				zap.String("event_id", event.ID),
				zap.String("subject", event.Subject),
				zap.Any("payload", event.Payload),
			)
			return nil
		}
	}

	dispatcher.Subscribe(events.EventSessionIssued, log("session issued"))
	dispatcher.Subscribe(events.EventSessionRefreshed, log("session refreshed"))
	dispatcher.Subscribe(events.EventSessionRevoked, log("session revoked"))
	dispatcher.Subscribe(events.EventTokenRejected, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.TokenRejectedPayload); ok {
			metrics.RecordAuthDecision(payload.Reason)
		}
		logger.Warn("token rejected",
			zap.String("event_id", event.ID),
			zap.Any("payload", event.Payload),
		)
		return nil
	})
}
