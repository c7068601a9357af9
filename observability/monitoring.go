// Package observability aggregates pipeline counters and process health
// for the healthz endpoint and the periodic health worker.
package observability

import (
	"os"
	"runtime"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"
)

// Stats is one snapshot of the pipeline, serialized on /healthz.
type Stats struct {
	MessagesLogged       uint64  `json:"messages_logged"`
	EscalationsTriggered uint64  `json:"escalations_triggered"`
	EscalationsCompleted uint64  `json:"escalations_completed"`
	EscalationsFailed    uint64  `json:"escalations_failed"`
	EventsDropped        uint64  `json:"events_dropped"`
	RejectedWrites       uint64  `json:"rejected_writes"`
	AllocMemMb           uint64  `json:"alloc_mem_mb"`
	NumGC                uint32  `json:"num_gc"`
	NumGoroutine         int     `json:"num_goroutine"`
	CPUPercent           float64 `json:"cpu_percent"`
	RSSBytes             uint64  `json:"rss_bytes"`
}

// Monitor holds atomic counters incremented from hot paths. Reading a
// snapshot never blocks a writer.
type Monitor struct {
	messagesLogged       uint64
	escalationsTriggered uint64
	escalationsCompleted uint64
	escalationsFailed    uint64
	eventsDropped        uint64
	rejectedWrites       uint64
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) IncrMessagesLogged() {
	atomic.AddUint64(&m.messagesLogged, 1)
}

func (m *Monitor) IncrEscalationsTriggered() {
	atomic.AddUint64(&m.escalationsTriggered, 1)
}

func (m *Monitor) IncrEscalationsCompleted() {
	atomic.AddUint64(&m.escalationsCompleted, 1)
}

func (m *Monitor) IncrEscalationsFailed() {
	atomic.AddUint64(&m.escalationsFailed, 1)
}

func (m *Monitor) IncrEventsDropped() {
	atomic.AddUint64(&m.eventsDropped, 1)
}

func (m *Monitor) IncrRejectedWrites() {
	atomic.AddUint64(&m.rejectedWrites, 1)
}

// Snapshot combines the pipeline counters with process-level metrics.
// gopsutil failures are ignored: a health probe must not fail because
// the OS refused a stat call.
func (m *Monitor) Snapshot() Stats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := Stats{
		MessagesLogged:       atomic.LoadUint64(&m.messagesLogged),
		EscalationsTriggered: atomic.LoadUint64(&m.escalationsTriggered),
		EscalationsCompleted: atomic.LoadUint64(&m.escalationsCompleted),
		EscalationsFailed:    atomic.LoadUint64(&m.escalationsFailed),
		EventsDropped:        atomic.LoadUint64(&m.eventsDropped),
		RejectedWrites:       atomic.LoadUint64(&m.rejectedWrites),
		AllocMemMb:           ms.Alloc / 1024 / 1024,
		NumGC:                ms.NumGC,
		NumGoroutine:         runtime.NumGoroutine(),
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if cpu, err := p.CPUPercent(); err == nil {
			stats.CPUPercent = cpu
		}
		if mem, err := p.MemoryInfo(); err == nil {
			stats.RSSBytes = mem.RSS
		}
	}
	return stats
}
