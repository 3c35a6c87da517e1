package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"presence-lab/contract"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HealthWorker)(nil)

// HealthWorker periodically logs the process's own CPU, memory, and OS
// status together with the live session count. It is observability only:
// nothing in the presence path depends on it.
type HealthWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	interval time.Duration
}

func NewHealthWorker(log *slog.Logger, registry contract.IRegistry, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, registry: registry, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Info("Presence node health",
				"pid", os.Getpid(),
				"status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"active_sessions", w.registry.Len())
		}
	}
}

// selfStats retrieves technical metrics (memory, CPU, and OS status) for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
