package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct{ err error }

func (f *fakeSink) Driver() string { return "fake" }

func (f *fakeSink) Ping(context.Context) error { return f.err }

func TestMonitor_Refresh(t *testing.T) {
	sink := &fakeSink{}
	m := New(sink, map[string]func() int{"order": func() int { return 4 }}, time.Hour, nil)

	assert.False(t, m.IsOnline())
	m.Refresh()
	assert.True(t, m.IsOnline())
	status := m.GetStatus()
	assert.Equal(t, "fake", status.Driver)
	assert.Equal(t, 4, status.Records["order"])
	assert.Empty(t, status.Error)

	sink.err = errors.New("connection refused")
	m.Refresh()
	assert.False(t, m.IsOnline())
	assert.Equal(t, "connection refused", m.GetStatus().Error)
}

func TestMonitor_StartStop(t *testing.T) {
	m := New(&fakeSink{}, nil, 10*time.Millisecond, nil)
	m.Start()
	require.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
}
