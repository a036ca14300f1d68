package cache

import "sync"

// Manager owns a set of named partitions, each with its own TTL and
// capacity. Partitions are created on first use and shared after that.
type Manager struct {
	mu         sync.Mutex
	partitions map[string]*Partition
}

// NewManager creates an empty partition manager.
func NewManager() *Manager {
	return &Manager{
		partitions: make(map[string]*Partition),
	}
}

// Partition returns the named partition, creating it with the given options
// on first request. Options are ignored when the partition already exists.
func (m *Manager) Partition(name string, opts ...PartitionOption) *Partition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.partitions[name]; ok {
		return p
	}
	p := NewPartition(opts...)
	m.partitions[name] = p
	return p
}

// ClearAll empties every partition.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.partitions {
		p.Clear()
	}
}

// Stats returns entry counts keyed by partition name.
func (m *Manager) Stats() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make(map[string]int, len(m.partitions))
	for name, p := range m.partitions {
		stats[name] = p.Size()
	}
	return stats
}
