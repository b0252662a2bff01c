package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clinrec/internal/platform/kafka/consumer"
	"clinrec/internal/recommendation"
)

var (
	eventsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinrec_worker_events_appended_total",
		Help: "Number of events durably appended to the log",
	})
	eventsMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinrec_worker_events_malformed_total",
		Help: "Number of deliveries skipped because the payload did not parse",
	})
)

// Handler processes recommendation events from the queue and appends them to
// the log. The offset is committed by the consumer only after Append returns,
// so every acknowledged event is on disk.
type Handler struct {
	writer *Writer
	logger *slog.Logger
}

// NewHandler creates an event log handler.
func NewHandler(writer *Writer, logger *slog.Logger) *Handler {
	return &Handler{writer: writer, logger: logger}
}

// Handle appends one delivered event. Malformed payloads are logged and
// committed: redelivering them can never succeed. Write failures are returned
// so the delivery is retried.
func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	var event recommendation.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		eventsMalformed.Inc()
		h.logger.ErrorContext(ctx, "malformed event payload, skipping",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	if err := h.writer.Append(event.Timestamp, event.RecommendationID, event.PatientID, event.Recommendation); err != nil {
		return fmt.Errorf("append event %s: %w", event.RecommendationID, err)
	}

	eventsAppended.Inc()
	h.logger.InfoContext(ctx, "event appended",
		"recommendation_id", event.RecommendationID,
		"patient_id", event.PatientID,
	)
	return nil
}
