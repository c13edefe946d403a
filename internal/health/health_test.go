package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManagerReport(t *testing.T) {
	m := NewManager(time.Hour)
	redisDown := errors.New("dial tcp: connection refused")
	m.Register(FuncProbe{ProbeName: "db", IsCritical: true, Fn: func(ctx context.Context) error { return nil }})
	m.Register(FuncProbe{ProbeName: "redis", Fn: func(ctx context.Context) error { return redisDown }})

	r := m.Report()
	require.False(t, r.Healthy, "pending critical probe")

	m.Heartbeat(context.Background())
	r = m.Report()
	require.True(t, r.Healthy)
	require.Len(t, r.Probes, 2)
	require.Equal(t, "db", r.Probes[0].Name)
	require.True(t, r.Probes[0].Healthy)
	require.Equal(t, "redis", r.Probes[1].Name)
	require.False(t, r.Probes[1].Healthy)
	require.Contains(t, r.Probes[1].Error, "refused")
}

func TestCriticalFailure(t *testing.T) {
	m := NewManager(0)
	m.Register(FuncProbe{ProbeName: "catalog", IsCritical: true, Fn: func(ctx context.Context) error { return errors.New("no snapshot") }})
	m.Heartbeat(context.Background())
	require.False(t, m.Report().Healthy)
}

func TestProbeTimeout(t *testing.T) {
	m := NewManager(time.Hour)
	m.timeout = 10 * time.Millisecond
	m.Register(FuncProbe{ProbeName: "slow", IsCritical: true, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	m.Heartbeat(context.Background())
	r := m.Report()
	require.False(t, r.Healthy)
	require.Contains(t, r.Probes[0].Error, "deadline")
}
