package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// Table is one in-memory table that can be written to and read from the sink.
type Table interface {
	Name() string
	Save(ctx context.Context) (int, error)
	Load(ctx context.Context) (int, error)
}

// SnapshotObserver receives the duration and result of every save and load.
type SnapshotObserver interface {
	ObserveSnapshot(table, operation string, took time.Duration, err error)
}

// SchedulerConfig controls when tables are written.
type SchedulerConfig struct {
	Interval     time.Duration
	FlushOnWrite bool
	Timeout      time.Duration
}

// SnapshotScheduler writes tables after mutations and periodically retries
// tables whose last write failed or was deferred.
type SnapshotScheduler struct {
	tables   map[string]Table
	saveMu   map[string]*sync.Mutex
	monitor  ConnectionHealth
	observer SnapshotObserver
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      SchedulerConfig

	mu    sync.Mutex
	dirty map[string]bool
}

func NewSnapshotScheduler(
	tables []Table,
	monitor ConnectionHealth,
	observer SnapshotObserver,
	logger *zap.Logger,
	cfg SchedulerConfig,
) *SnapshotScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SnapshotScheduler{
		tables:   make(map[string]Table, len(tables)),
		saveMu:   make(map[string]*sync.Mutex, len(tables)),
		monitor:  monitor,
		observer: observer,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(),
		dirty:    make(map[string]bool),
	}
	for _, t := range tables {
		s.tables[t.Name()] = t
		s.saveMu[t.Name()] = &sync.Mutex{}
	}

	schedule := fmt.Sprintf("@every %s", cfg.Interval)
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		logger.Error("snapshot schedule rejected", zap.String("schedule", schedule), zap.Error(err))
	}

	return s
}

// Start launches the cron scheduler.
func (s *SnapshotScheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("snapshot scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Bool("flush_on_write", s.cfg.FlushOnWrite),
	)
}

// Stop halts the scheduler and writes every table one last time.
func (s *SnapshotScheduler) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	err := s.FlushAll(ctx)
	s.logger.Info("snapshot scheduler stopped")
	return err
}

// Flush marks table dirty and, in write-through mode, saves it now. A failed
// save leaves the table dirty for the next tick.
func (s *SnapshotScheduler) Flush(ctx context.Context, table string) error {
	if _, ok := s.tables[table]; !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	s.markDirty(table)
	if !s.cfg.FlushOnWrite {
		return nil
	}
	return s.save(ctx, table)
}

// FlushDirty saves every dirty table.
func (s *SnapshotScheduler) FlushDirty(ctx context.Context) error {
	var result error
	for _, name := range s.Dirty() {
		result = errors.Join(result, s.save(ctx, name))
	}
	return result
}

// FlushAll saves every table regardless of its dirty flag.
func (s *SnapshotScheduler) FlushAll(ctx context.Context) error {
	var result error
	for _, name := range s.names() {
		result = errors.Join(result, s.save(ctx, name))
	}
	return result
}

// LoadAll replaces every in-memory table with the sink contents.
func (s *SnapshotScheduler) LoadAll(ctx context.Context) error {
	for _, name := range s.names() {
		started := time.Now()
		n, err := s.tables[name].Load(ctx)
		s.observe(name, "load", started, err)
		if err != nil {
			return err
		}
		s.logger.Info("table loaded", zap.String("table", name), zap.Int("records", n))
	}
	return nil
}

// Dirty returns the tables with unsaved changes, sorted by name.
func (s *SnapshotScheduler) Dirty() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirty))
	for name := range s.dirty {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *SnapshotScheduler) tick() {
	if s.monitor != nil && !s.monitor.IsOnline() {
		s.logger.Debug("skipping periodic snapshot (sink offline)")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if err := s.FlushDirty(ctx); err != nil {
		s.logger.Error("periodic snapshot failed", zap.Error(err))
	}
}

// save serialises writes per table so an older snapshot never lands after a
// newer one. The dirty flag is cleared before reading the store; a mutation
// racing the save sets it again.
func (s *SnapshotScheduler) save(ctx context.Context, name string) error {
	mu := s.saveMu[name]
	mu.Lock()
	defer mu.Unlock()

	s.clearDirty(name)
	started := time.Now()
	_, err := s.tables[name].Save(ctx)
	s.observe(name, "save", started, err)
	if err != nil {
		s.markDirty(name)
		return err
	}
	return nil
}

func (s *SnapshotScheduler) observe(table, op string, started time.Time, err error) {
	if s.observer != nil {
		s.observer.ObserveSnapshot(table, op, time.Since(started), err)
	}
}

func (s *SnapshotScheduler) markDirty(name string) {
	s.mu.Lock()
	s.dirty[name] = true
	s.mu.Unlock()
}

func (s *SnapshotScheduler) clearDirty(name string) {
	s.mu.Lock()
	delete(s.dirty, name)
	s.mu.Unlock()
}

func (s *SnapshotScheduler) names() []string {
	out := make([]string, 0, len(s.tables))
	for name := range s.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var _ usecase.SnapshotPort = (*SnapshotScheduler)(nil)
