// Package observability reports the health of a running platform: process
// metrics, state sizes and a human readable dump of the state.
package observability

import (
	"flockr/services"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// CountsProvider is implemented by services.Platform.
type CountsProvider interface {
	Counts() (services.Counts, error)
}

// Stats aggregates process metrics and platform counts for /debug/stats.
type Stats struct {
	PID               int32   `json:"pid"`
	Status            string  `json:"status"`
	RAMBytes          uint64  `json:"ram_bytes"`
	CPUPercent        float64 `json:"cpu_percent"`
	Goroutines        int     `json:"goroutines"`
	NumGC             uint32  `json:"num_gc"`
	UptimeSeconds     int64   `json:"uptime_seconds"`
	Users             int     `json:"users"`
	Channels          int     `json:"channels"`
	Sessions          int     `json:"sessions"`
	Messages          int     `json:"messages"`
	PendingDeliveries int     `json:"pending_deliveries"`
}

type Collector struct {
	process *process.Process
	counts  CountsProvider
	started time.Time
	log     *slog.Logger
}

func NewCollector(counts CountsProvider, log *slog.Logger) (*Collector, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{process: p, counts: counts, started: time.Now(), log: log}, nil
}

// Collect samples the process and the platform. Process metrics the OS
// refuses to give are left at zero.
func (c *Collector) Collect() (Stats, error) {
	counts, err := c.counts.Counts()
	if err != nil {
		return Stats{}, err
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := Stats{
		PID:               c.process.Pid,
		Goroutines:        runtime.NumGoroutine(),
		NumGC:             mem.NumGC,
		UptimeSeconds:     int64(time.Since(c.started).Seconds()),
		Users:             counts.Users,
		Channels:          counts.Channels,
		Sessions:          counts.Sessions,
		Messages:          counts.Messages,
		PendingDeliveries: counts.PendingDeliveries,
	}
	if memInfo, err := c.process.MemoryInfo(); err == nil {
		stats.RAMBytes = memInfo.RSS
	} else {
		c.log.Debug("Failed to collect memory info", "err", err)
	}
	if cpu, err := c.process.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	} else {
		c.log.Debug("Failed to collect cpu usage", "err", err)
	}
	if status, err := c.process.Status(); err == nil {
		stats.Status = status
	}
	return stats, nil
}
