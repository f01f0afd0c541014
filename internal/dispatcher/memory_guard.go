package dispatcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// memoryGuard delays scanner launches while system memory usage is above a
// threshold. The scanner is the memory-heavy part of a run; launching it
// onto an already loaded system turns one slow scan into several failed
// ones.
type memoryGuard struct {
	threshold float64
	interval  time.Duration
	maxWaits  int
	logger    zerolog.Logger
}

func newMemoryGuard(threshold float64, logger zerolog.Logger) *memoryGuard {
	return &memoryGuard{
		threshold: threshold,
		interval:  5 * time.Second,
		maxWaits:  6,
		logger:    logger,
	}
}

// wait blocks until memory pressure clears, the wait attempts run out, or
// the context ends. Pressure readings are advisory and never fail a scan.
func (g *memoryGuard) wait(ctx context.Context) {
	if g.threshold <= 0 {
		return
	}

	for attempt := 0; attempt < g.maxWaits; attempt++ {
		vmStat, err := mem.VirtualMemory()
		if err != nil {
			g.logger.Debug().Err(err).Msg("Failed to read system memory stats")
			return
		}
		if vmStat.UsedPercent/100.0 <= g.threshold {
			return
		}

		g.logger.Warn().
			Float64("used_percent", vmStat.UsedPercent).
			Float64("threshold_percent", g.threshold*100).
			Uint64("used_mb", vmStat.Used/1024/1024).
			Uint64("total_mb", vmStat.Total/1024/1024).
			Msg("System memory above threshold, delaying next scan")

		select {
		case <-ctx.Done():
			return
		case <-time.After(g.interval):
		}
	}

	g.logger.Warn().Msg("Memory pressure did not clear, proceeding with scan anyway")
}
