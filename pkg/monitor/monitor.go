package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"speed-monitor/pkg/models"
)

// Prober performs one live network measurement. An empty serverID lets the
// probe pick the best available server.
type Prober interface {
	Run(ctx context.Context, serverID string) (*models.SpeedTestResult, error)
}

// Sink durably stores completed results.
type Sink interface {
	WriteResult(ctx context.Context, result *models.SpeedTestResult) error
	Close()
}

// Archive keeps a relational copy of results. Optional.
type Archive interface {
	InsertResult(ctx context.Context, record *models.SpeedTestRecord) error
}

// Monitor drives the measurement loop: one cycle immediately on start, then
// one cycle per interval until the context is cancelled. Cycles are strictly
// serialized; a cycle that outlives the interval delays the next tick rather
// than stacking ticks behind it.
type Monitor struct {
	probe    Prober
	sink     Sink
	archive  Archive
	interval time.Duration
	serverID string
	logger   *slog.Logger
}

func New(probe Prober, sink Sink, archive Archive, interval time.Duration, serverID string, logger *slog.Logger) *Monitor {
	return &Monitor{
		probe:    probe,
		sink:     sink,
		archive:  archive,
		interval: interval,
		serverID: serverID,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. The sink is closed on the way out,
// including when the cancellation arrives mid-cycle.
func (m *Monitor) Run(ctx context.Context) {
	defer m.sink.Close()

	m.logger.Info("Starting speed monitor", "intervalMinutes", m.interval.Minutes())

	m.RunCycle(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Speed monitor stopped")
			return
		case <-ticker.C:
			m.RunCycle(ctx)
		}
	}
}

// RunCycle executes one measurement-and-persist attempt. Probe and sink
// failures end the cycle; they never propagate to the caller.
func (m *Monitor) RunCycle(ctx context.Context) {
	cycleID := uuid.NewString()

	m.logger.Info("Running scheduled speed test", "cycle", cycleID)

	result, err := m.probe.Run(ctx, m.serverID)
	if err != nil {
		m.logger.Error("Speed test failed", "cycle", cycleID, "error", err)
		return
	}

	if err := m.sink.WriteResult(ctx, result); err != nil {
		m.logger.Error("Failed to store speed test result", "cycle", cycleID, "error", err)
		return
	}

	if m.archive != nil {
		if err := m.archive.InsertResult(ctx, models.RecordFromResult(result, cycleID)); err != nil {
			// The point is already in the sink; an archive miss is not
			// worth dropping the cycle over.
			m.logger.Error("Failed to archive speed test result", "cycle", cycleID, "error", err)
		}
	}

	m.logger.Info("Speed test completed",
		"cycle", cycleID,
		"downloadMbps", result.DownloadSpeed,
		"uploadMbps", result.UploadSpeed,
		"pingMs", result.Ping)
}
