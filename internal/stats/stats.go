// Package stats collects process, host and gateway figures for the botstats command
// and the status endpoint.
package stats

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// startTime is the process start reference for uptime.
var startTime = time.Now()

// Uptime returns how long the process has been running.
func Uptime() time.Duration { return time.Since(startTime) }

// FormatUptime renders d as "N days, N hours, N minutes, N seconds".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int64(d / (24 * time.Hour))
	hours := int64(d % (24 * time.Hour) / time.Hour)
	minutes := int64(d % time.Hour / time.Minute)
	seconds := int64(d % time.Minute / time.Second)
	return fmt.Sprintf("%d days, %d hours, %d minutes, %d seconds", days, hours, minutes, seconds)
}

// FormatBytes renders a byte count in binary units.
func FormatBytes(n uint64) string {
	return humanize.IBytes(n)
}

// ProcessMemory is a snapshot of this process's memory use.
type ProcessMemory struct {
	RSS       uint64 // resident set size, or runtime Sys where the OS does not expose it
	HeapAlloc uint64
	HeapSys   uint64
	Sys       uint64
}

// ReadProcessMemory samples runtime and OS memory figures.
func ReadProcessMemory() ProcessMemory {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	pm := ProcessMemory{
		HeapAlloc: ms.HeapAlloc,
		HeapSys:   ms.HeapSys,
		Sys:       ms.Sys,
		RSS:       ms.Sys,
	}
	if rss, ok := processRSS(); ok {
		pm.RSS = rss
	}
	return pm
}

// Host describes the machine the bot runs on.
type Host struct {
	OS       string
	Arch     string
	Hostname string
	CPUs     int
	TotalMem uint64 // 0 when unavailable
	FreeMem  uint64
}

// UsedMem returns TotalMem minus FreeMem.
func (h Host) UsedMem() uint64 {
	if h.FreeMem > h.TotalMem {
		return 0
	}
	return h.TotalMem - h.FreeMem
}

// UsagePercent returns used memory as a rounded percentage of total.
func (h Host) UsagePercent() int {
	if h.TotalMem == 0 {
		return 0
	}
	return int(float64(h.UsedMem())/float64(h.TotalMem)*100 + 0.5)
}

// ReadHost samples host information.
func ReadHost() Host {
	h := Host{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
		CPUs: runtime.NumCPU(),
	}
	h.Hostname, _ = os.Hostname()
	if total, free, ok := hostMemory(); ok {
		h.TotalMem = total
		h.FreeMem = free
	}
	return h
}

// Gateway holds chat platform connection figures.
type Gateway struct {
	Guilds   int
	Members  int
	Channels int
	Latency  time.Duration // websocket heartbeat round trip
}

// GatewaySource reports live gateway figures.
type GatewaySource interface {
	GatewayStats() Gateway
}
