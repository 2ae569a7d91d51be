package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"

	"bboard/contract"
	"bboard/observability"
)

var _ contract.Worker = (*HealthWorker)(nil)

// HealthWorker periodically logs process self-stats together with the board
// counters. It is observability only: nothing reads its output at runtime.
type HealthWorker struct {
	log      *slog.Logger
	stats    *observability.Stats
	sessions interface{ SessionCount() int }
	interval time.Duration
}

func NewHealthWorker(log *slog.Logger, stats *observability.Stats,
	sessions interface{ SessionCount() int }, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, stats: stats, sessions: sessions, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu := selfStats(p)
			snap := w.stats.Snapshot()
			w.log.Info("Health",
				"sessions", w.sessions.SessionCount(),
				"connections_total", snap.ConnectionsTotal,
				"messages_posted", snap.MessagesPosted,
				"broadcast_lines", snap.BroadcastLines,
				"dropped_lines", snap.DroppedLines,
				"goroutines", runtime.NumGoroutine(),
				"rss_mb", rss/(1024*1024),
				"cpu_percent", cpu)
		}
	}
}

func selfStats(p *process.Process) (rss uint64, cpu float64) {
	if mem, err := p.MemoryInfo(); err == nil {
		rss = mem.RSS
	}
	if pct, err := p.CPUPercent(); err == nil {
		cpu = pct
	}
	return rss, cpu
}
