package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"chat-relay/observability"

	"github.com/shirou/gopsutil/process"
)

// statsSource decouples the sampler from the hub and registry.
type statsSource interface {
	Stats() (channels, connections int)
}

type onlineSource interface {
	Len() int
}

// StatsWorker samples process health (RSS, CPU) and live connection gauges
// into the monitoring manager on a fixed interval.
type StatsWorker struct {
	log        *slog.Logger
	hub        statsSource
	registry   onlineSource
	monitoring *observability.Manager
	interval   time.Duration
}

func NewStatsWorker(log *slog.Logger, hub statsSource, registry onlineSource,
	monitoring *observability.Manager, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, hub: hub, registry: registry, monitoring: monitoring, interval: interval}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var rssMb, cpuPercent float64
			if mem, err := p.MemoryInfo(); err == nil {
				rssMb = float64(mem.RSS) / 1024 / 1024
			} else {
				w.log.Debug("failed to read process memory", "error", err)
			}
			if cpu, err := p.CPUPercent(); err == nil {
				cpuPercent = cpu
			}

			channels, connections := w.hub.Stats()
			w.monitoring.Sample(w.registry.Len(), channels, connections, rssMb, cpuPercent)
		}
	}
}
