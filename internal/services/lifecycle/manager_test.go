package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_RunsHooksInReverseOnce(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	m.Register("sink", func(context.Context) error { order = append(order, "sink"); return nil })
	m.Register("scheduler", func(context.Context) error { order = append(order, "scheduler"); return nil })
	m.Register("http", func(context.Context) error { order = append(order, "http"); return nil })
	m.Register("ignored", nil)

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "scheduler", "sink"}, order)
}

func TestShutdown_ContinuesPastFailures(t *testing.T) {
	m := New(time.Second, nil)
	ran := false
	m.Register("first", func(context.Context) error { ran = true; return nil })
	m.Register("broken", func(context.Context) error { return errors.New("flush failed") })

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: flush failed")
	assert.True(t, ran)
}

func TestShutdown_HooksSeeDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, m.Shutdown(context.Background()))
}
