package assign

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"medzone/internal/geo"
	"medzone/internal/record"
	"medzone/internal/zone"

	"github.com/stretchr/testify/require"
)

var (
	centro = zone.Zone{ID: 1, Name: "Centro", Type: zone.TypeCircle, Center: geo.Point{Lat: -34.6037, Lng: -58.3816}, RadiusKm: 3, IsActive: true}
	norte  = zone.Zone{ID: 2, Name: "Norte", Type: zone.TypePolygon, IsActive: true, Coordinates: []geo.Point{
		{Lat: -34.50, Lng: -58.50}, {Lat: -34.50, Lng: -58.40}, {Lat: -34.56, Lng: -58.40}, {Lat: -34.56, Lng: -58.50},
	}}
)

type zones []zone.Zone

func (z zones) ListActiveZones(ctx context.Context) ([]zone.Zone, error) { return z, nil }

type records []record.Record

func (r records) ListLocatableRecords(ctx context.Context, f record.Filter) ([]record.Record, error) {
	return r, nil
}

type memSink struct {
	mu      sync.Mutex
	commits [][]Update
	err     error
	block   bool
}

func (s *memSink) CommitAssignments(ctx context.Context, updates []Update) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits = append(s.commits, append([]Update(nil), updates...))
	return nil
}

func pt(lat, lng float64) *geo.Point { return &geo.Point{Lat: lat, Lng: lng} }

// 100 条记录，按下标轮流落在 Centro、Norte 与区域之外
func fixture() records {
	out := make(records, 0, 100)
	for i := 0; i < 100; i++ {
		r := record.Record{ID: fmt.Sprintf("doc-%03d", i)}
		switch i % 3 {
		case 0:
			r.Point = pt(-34.6037+float64(i)*0.0001, -58.3816)
		case 1:
			r.Point = pt(-34.53, -58.45+float64(i)*0.0001)
		default:
			r.Point = pt(-35.5, -60.0)
		}
		out = append(out, r)
	}
	return out
}

func TestRunAssignsAndCommits(t *testing.T) {
	sink := &memSink{}
	o := &Orchestrator{Zones: zones{centro, norte}, Records: fixture(), Sink: sink, Workers: 4}
	res, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)
	require.Equal(t, 67, res.AssignedCount)
	require.Equal(t, 33, res.UnassignedCount)
	require.Empty(t, res.Errors)

	require.Len(t, sink.commits, 1)
	ups := sink.commits[0]
	require.Len(t, ups, 100)
	require.Equal(t, "doc-000", ups[0].RecordID)
	require.Equal(t, &record.ZoneRef{ID: 1, Name: "Centro"}, ups[0].Zone)
	require.Equal(t, &record.ZoneRef{ID: 2, Name: "Norte"}, ups[1].Zone)
	require.Nil(t, ups[2].Zone)
}

func TestRunIsIdempotent(t *testing.T) {
	sink := &memSink{}
	o := &Orchestrator{Zones: zones{centro, norte}, Records: fixture(), Sink: sink, Workers: 8}
	a, err := o.Run(context.Background())
	require.NoError(t, err)
	b, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, a.AssignedCount, b.AssignedCount)
	require.Equal(t, a.UnassignedCount, b.UnassignedCount)
	require.Empty(t, b.Errors)
	require.NotEqual(t, a.RunID, b.RunID)
	require.Equal(t, sink.commits[0], sink.commits[1])
}

func TestAssignZonesFaultIsolation(t *testing.T) {
	recs := fixture()[:99]
	recs = append(recs[:50:50], append(records{{ID: "broken", Point: pt(200, math.NaN())}}, recs[50:]...)...)
	require.Len(t, recs, 100)

	o := &Orchestrator{Workers: 3}
	res, err := o.AssignZones(context.Background(), recs, zone.NewSnapshot([]zone.Zone{centro, norte}))
	require.NoError(t, err)
	require.Equal(t, 99, res.AssignedCount+res.UnassignedCount)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "broken", res.Errors[0].RecordID)
	require.Len(t, res.Updates, 99)
	for _, u := range res.Updates {
		require.NotEqual(t, "broken", u.RecordID)
	}
}

func TestAssignZonesSkipsUnlocatable(t *testing.T) {
	recs := records{
		{ID: "", Point: pt(-34.6037, -58.3816)},
		{ID: "sin-coords", Address: "Thames 1500"},
		{ID: "ok", Point: pt(-34.6037, -58.3816)},
	}
	o := &Orchestrator{}
	res, err := o.AssignZones(context.Background(), recs, zone.NewSnapshot([]zone.Zone{centro}))
	require.NoError(t, err)
	require.Equal(t, 1, res.AssignedCount)
	require.Equal(t, 2, res.UnassignedCount)
	require.Empty(t, res.Errors)
	require.Equal(t, []Update{{RecordID: "ok", Zone: &record.ZoneRef{ID: 1, Name: "Centro"}}}, res.Updates)
}

func TestAssignZonesWithoutCatalog(t *testing.T) {
	o := &Orchestrator{}
	res, err := o.AssignZones(context.Background(), fixture()[:3], nil)
	require.ErrorIs(t, err, zone.ErrNoCatalog)
	require.Nil(t, res)

	// 已加载的空目录是合法输入：每条可定位记录都生成清除变更
	res, err = o.AssignZones(context.Background(), fixture()[:3], zone.NewSnapshot(nil))
	require.NoError(t, err)
	require.Equal(t, 3, res.UnassignedCount)
	require.Len(t, res.Updates, 3)
	for _, u := range res.Updates {
		require.Nil(t, u.Zone)
	}
}

func TestRunCommitFailure(t *testing.T) {
	txErr := errors.New("tx aborted")
	o := &Orchestrator{Zones: zones{centro}, Records: fixture(), Sink: &memSink{err: txErr}}
	res, err := o.Run(context.Background())
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrCommit)
	require.ErrorIs(t, err, txErr)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunCommitTimeout(t *testing.T) {
	o := &Orchestrator{Zones: zones{centro}, Records: fixture(), Sink: &memSink{block: true}, CommitTimeout: 20 * time.Millisecond}
	start := time.Now()
	res, err := o.Run(context.Background())
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrCommit)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestAssignZonesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := &Orchestrator{}
	_, err := o.AssignZones(ctx, fixture(), zone.NewSnapshot([]zone.Zone{centro}))
	require.ErrorIs(t, err, context.Canceled)
}

type gateSink struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gateSink) CommitAssignments(ctx context.Context, updates []Update) error {
	close(g.entered)
	<-g.release
	return nil
}

func TestRunRejectsConcurrentBatch(t *testing.T) {
	sink := &gateSink{entered: make(chan struct{}), release: make(chan struct{})}
	o := &Orchestrator{Zones: zones{centro}, Records: fixture(), Sink: sink}
	done := make(chan error, 1)
	go func() {
		_, err := o.Run(context.Background())
		done <- err
	}()
	<-sink.entered
	_, err := o.Run(context.Background())
	require.ErrorIs(t, err, ErrBusy)
	close(sink.release)
	require.NoError(t, <-done)
}
