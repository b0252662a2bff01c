package eventlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var heartbeatTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "clinrec_worker_heartbeat_timestamp_seconds",
	Help: "Unix time of the worker's last liveness beat",
})

// heartbeatInterval is how often the worker signals liveness, independent of
// message flow.
const heartbeatInterval = 10 * time.Second

// Heartbeat emits a periodic liveness signal until ctx is cancelled. It
// shares no state with the consumer loop beyond the exported gauge.
func Heartbeat(ctx context.Context, logger *slog.Logger) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	heartbeatTimestamp.SetToCurrentTime()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			heartbeatTimestamp.SetToCurrentTime()
			logger.Info("worker is alive")
		}
	}
}
