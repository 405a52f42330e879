package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	name string

	mu      sync.Mutex
	saves   int
	loads   int
	saveErr error
}

func (f *fakeTable) Name() string { return f.name }

func (f *fakeTable) Save(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saves++
	return 1, nil
}

func (f *fakeTable) Load(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return 0, nil
}

func (f *fakeTable) setErr(err error) {
	f.mu.Lock()
	f.saveErr = err
	f.mu.Unlock()
}

func (f *fakeTable) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type staticHealth bool

func (h staticHealth) IsOnline() bool { return bool(h) }

type recordedSnapshot struct {
	table, op string
	failed    bool
}

type snapshotLog struct {
	mu      sync.Mutex
	entries []recordedSnapshot
}

func (l *snapshotLog) ObserveSnapshot(table, op string, _ time.Duration, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, recordedSnapshot{table, op, err != nil})
}

func TestScheduler_FlushOnWrite(t *testing.T) {
	orders := &fakeTable{name: "orders"}
	influences := &fakeTable{name: "influences"}
	log := &snapshotLog{}
	s := NewSnapshotScheduler([]Table{orders, influences}, nil, log, nil,
		SchedulerConfig{Interval: time.Hour, FlushOnWrite: true})

	require.NoError(t, s.Flush(context.Background(), "orders"))
	assert.Equal(t, 1, orders.saveCount())
	assert.Zero(t, influences.saveCount())
	assert.Empty(t, s.Dirty())
	assert.Equal(t, []recordedSnapshot{{"orders", "save", false}}, log.entries)

	assert.Error(t, s.Flush(context.Background(), "invoices"))
}

func TestScheduler_DeferredWritesWaitForTick(t *testing.T) {
	orders := &fakeTable{name: "orders"}
	s := NewSnapshotScheduler([]Table{orders}, nil, nil, nil,
		SchedulerConfig{Interval: time.Hour, FlushOnWrite: false})

	require.NoError(t, s.Flush(context.Background(), "orders"))
	require.NoError(t, s.Flush(context.Background(), "orders"))
	assert.Zero(t, orders.saveCount())
	assert.Equal(t, []string{"orders"}, s.Dirty())

	require.NoError(t, s.FlushDirty(context.Background()))
	assert.Equal(t, 1, orders.saveCount())
	assert.Empty(t, s.Dirty())
}

func TestScheduler_FailedSaveStaysDirty(t *testing.T) {
	orders := &fakeTable{name: "orders"}
	orders.setErr(errors.New("sink down"))
	log := &snapshotLog{}
	s := NewSnapshotScheduler([]Table{orders}, nil, log, nil,
		SchedulerConfig{Interval: time.Hour, FlushOnWrite: true})

	require.Error(t, s.Flush(context.Background(), "orders"))
	assert.Equal(t, []string{"orders"}, s.Dirty())
	assert.True(t, log.entries[0].failed)

	orders.setErr(nil)
	require.NoError(t, s.FlushDirty(context.Background()))
	assert.Empty(t, s.Dirty())
	assert.Equal(t, 1, orders.saveCount())
}

func TestScheduler_PeriodicTickRetriesDirtyTables(t *testing.T) {
	orders := &fakeTable{name: "orders"}
	orders.setErr(errors.New("sink down"))
	s := NewSnapshotScheduler([]Table{orders}, staticHealth(true), nil, nil,
		SchedulerConfig{Interval: time.Second, FlushOnWrite: true})

	require.Error(t, s.Flush(context.Background(), "orders"))
	orders.setErr(nil)

	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()

	require.Eventually(t, func() bool { return len(s.Dirty()) == 0 }, 5*time.Second, 50*time.Millisecond)
	assert.GreaterOrEqual(t, orders.saveCount(), 1)
}

func TestScheduler_TickSkippedWhileOffline(t *testing.T) {
	orders := &fakeTable{name: "orders"}
	s := NewSnapshotScheduler([]Table{orders}, staticHealth(false), nil, nil,
		SchedulerConfig{Interval: time.Hour})

	require.NoError(t, s.Flush(context.Background(), "orders"))
	s.tick()
	assert.Zero(t, orders.saveCount())
	assert.Equal(t, []string{"orders"}, s.Dirty())
}

func TestScheduler_StopFlushesEverything(t *testing.T) {
	orders := &fakeTable{name: "orders"}
	influences := &fakeTable{name: "influences"}
	s := NewSnapshotScheduler([]Table{orders, influences}, nil, nil, nil,
		SchedulerConfig{Interval: time.Hour})
	s.Start()

	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 1, orders.saveCount())
	assert.Equal(t, 1, influences.saveCount())
}

func TestScheduler_LoadAll(t *testing.T) {
	orders := &fakeTable{name: "orders"}
	influences := &fakeTable{name: "influences"}
	log := &snapshotLog{}
	s := NewSnapshotScheduler([]Table{orders, influences}, nil, log, nil, SchedulerConfig{})

	require.NoError(t, s.LoadAll(context.Background()))
	assert.Equal(t, 1, orders.loads)
	assert.Equal(t, 1, influences.loads)
	assert.Equal(t, []recordedSnapshot{{"influences", "load", false}, {"orders", "load", false}}, log.entries)
}
