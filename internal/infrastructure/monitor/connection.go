package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is the storage sink as seen by the monitor.
type Pinger interface {
	Driver() string
	Ping(ctx context.Context) error
}

type Monitor struct {
	sink   Pinger
	counts map[string]func() int

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New builds a monitor that pings sink every interval. counts maps a record
// kind to a function returning its in-memory size.
func New(sink Pinger, counts map[string]func() int, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		sink:     sink,
		counts:   counts,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the last sink ping succeeded.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.status
	out.Records = make(map[string]int, len(m.status.Records))
	for k, v := range m.status.Records {
		out.Records[k] = v
	}
	return out
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs one check synchronously.
func (m *Monitor) Refresh() {
	status := Status{
		Records:   make(map[string]int, len(m.counts)),
		LastCheck: time.Now(),
	}
	if m.sink != nil {
		status.Driver = m.sink.Driver()
		if err := m.checkSink(); err != nil {
			status.Error = err.Error()
			m.logger.Warn("storage sink unreachable", zap.String("driver", status.Driver), zap.Error(err))
		} else {
			status.Storage = true
		}
	}
	for kind, count := range m.counts {
		status.Records[kind] = count()
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkSink() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.sink.Ping(ctx)
}
