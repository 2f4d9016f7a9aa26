// Package observability aggregates runtime telemetry for the /stats
// endpoint. Counters are atomics incremented on the hot path; system
// stats are sampled by a background worker.
package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// Stats is the snapshot served to operators.
type Stats struct {
	OnlineUsers      int     `json:"online_users"`
	Channels         int     `json:"channels"`
	Connections      int     `json:"connections"`
	ConnectionsTotal uint64  `json:"connections_total"`
	MessagesRelayed  uint64  `json:"messages_relayed"`
	ReadReceipts     uint64  `json:"read_receipts"`
	TypingRelayed    uint64  `json:"typing_relayed"`
	EventsDropped    uint64  `json:"events_dropped"`
	AuthRejected     uint64  `json:"auth_rejected"`
	AllocMemMb       uint64  `json:"alloc_mem_mb"`
	NumGC            uint32  `json:"num_gc"`
	ProcessRssMb     float64 `json:"process_rss_mb"`
	ProcessCPU       float64 `json:"process_cpu_percent"`
}

type Manager struct {
	log *slog.Logger

	mu      sync.RWMutex
	sampled Stats

	connectionsTotal atomic.Uint64
	messagesRelayed  atomic.Uint64
	readReceipts     atomic.Uint64
	typingRelayed    atomic.Uint64
	eventsDropped    atomic.Uint64
	authRejected     atomic.Uint64
}

func NewManager(log *slog.Logger) *Manager {
	return &Manager{log: log}
}

func (m *Manager) IncrConnections()  { m.connectionsTotal.Add(1) }
func (m *Manager) IncrMessages()     { m.messagesRelayed.Add(1) }
func (m *Manager) IncrReadReceipts() { m.readReceipts.Add(1) }
func (m *Manager) IncrTyping()       { m.typingRelayed.Add(1) }
func (m *Manager) IncrDropped()      { m.eventsDropped.Add(1) }
func (m *Manager) IncrAuthRejected() { m.authRejected.Add(1) }

// Sample stores the gauges collected by the stats worker.
func (m *Manager) Sample(onlineUsers, channels, connections int, rssMb, cpuPercent float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sampled.OnlineUsers = onlineUsers
	m.sampled.Channels = channels
	m.sampled.Connections = connections
	m.sampled.ProcessRssMb = rssMb
	m.sampled.ProcessCPU = cpuPercent
}

// Latest merges the sampled gauges with the live counters and Go runtime
// memory stats.
func (m *Manager) Latest() Stats {
	m.mu.RLock()
	stats := m.sampled
	m.mu.RUnlock()

	stats.ConnectionsTotal = m.connectionsTotal.Load()
	stats.MessagesRelayed = m.messagesRelayed.Load()
	stats.ReadReceipts = m.readReceipts.Load()
	stats.TypingRelayed = m.typingRelayed.Load()
	stats.EventsDropped = m.eventsDropped.Load()
	stats.AuthRejected = m.authRejected.Load()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats.AllocMemMb = mem.Alloc / 1024 / 1024
	stats.NumGC = mem.NumGC

	return stats
}
