// 包 assign：批量区域分配（逐条容错分类 + 单次原子提交）
package assign

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"medzone/internal/geo"
	"medzone/internal/logger"
	"medzone/internal/metrics"
	"medzone/internal/record"
	"medzone/internal/zone"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrCommit 提交阶段失败；整批作废，与逐条错误区分
	ErrCommit = errors.New("assignment commit failed")
	// ErrBusy 同一编排器上已有运行中的批次
	ErrBusy = errors.New("assignment batch already running")
)

const (
	DefaultWorkers       = 8
	DefaultCommitTimeout = 30 * time.Second
)

// RecordSource 记录集合来源
type RecordSource interface {
	ListLocatableRecords(ctx context.Context, f record.Filter) ([]record.Record, error)
}

// CommitSink 原子提交：要么全部生效，要么全部不生效
type CommitSink interface {
	CommitAssignments(ctx context.Context, updates []Update) error
}

// Update 单条待提交变更；Zone 为空表示清除分配
type Update struct {
	RecordID string
	Zone     *record.ZoneRef
}

// RecordError 单条记录的分类错误
type RecordError struct {
	RecordID string `json:"record_id"`
	Message  string `json:"error"`
}

// Result 一次批量分配的汇总
type Result struct {
	RunID           string        `json:"run_id"`
	AssignedCount   int           `json:"assigned_count"`
	UnassignedCount int           `json:"unassigned_count"`
	Errors          []RecordError `json:"errors"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration_ns"`
	Updates         []Update      `json:"-"`
}

type outcome int

const (
	outcomeUnassigned outcome = iota
	outcomeAssigned
	outcomeError
)

type slot struct {
	outcome outcome
	update  *Update
	err     string
}

// 文档注释：批量分配编排器
// 背景：夜间任务与管理端手动触发共用；区域目录在一次运行开始时读取一次并在整个运行期间固定。
// 约束：Workers<=0 取缺省并发，CommitTimeout<=0 取 30s；同一编排器同时只允许一个批次（否则 ErrBusy）；内部不重试，重试由调用方重新发起整次运行。
type Orchestrator struct {
	Zones         zone.Provider
	Records       RecordSource
	Sink          CommitSink
	Workers       int
	CommitTimeout time.Duration

	running atomic.Bool
}

// 文档注释：执行一次完整批量分配（RunZoneAssignmentBatch）
// 返回：提交成功时返回汇总；目录或记录读取失败返回原始错误；提交失败返回包装 ErrCommit 的错误且不返回汇总。
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.running.Store(false)
	start := time.Now()
	runID := uuid.NewString()
	l := logger.L().With("run_id", runID)

	snap, err := zone.Load(ctx, o.Zones)
	if err != nil {
		metrics.BatchRunsTotal.WithLabelValues("failed").Inc()
		l.Error("batch_zones_error", "err", err)
		return nil, errors.Wrap(err, "load zones")
	}
	recs, err := o.Records.ListLocatableRecords(ctx, record.Filter{})
	if err != nil {
		metrics.BatchRunsTotal.WithLabelValues("failed").Inc()
		l.Error("batch_records_error", "err", err)
		return nil, errors.Wrap(err, "list records")
	}
	l.Info("batch_start", "zones", snap.Len(), "records", len(recs), "rejected_zones", len(snap.Rejected))

	res, err := o.AssignZones(ctx, recs, snap)
	if err != nil {
		metrics.BatchRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	res.RunID = runID
	res.StartedAt = start

	timeout := o.CommitTimeout
	if timeout <= 0 {
		timeout = DefaultCommitTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := o.Sink.CommitAssignments(cctx, res.Updates); err != nil {
		metrics.BatchRunsTotal.WithLabelValues("failed").Inc()
		l.Error("batch_commit_error", "updates", len(res.Updates), "err", err)
		// 两者都留在错误链上：调用方可用 errors.Is 区分超时与事务被拒
		return nil, fmt.Errorf("%w: %d updates: %w", ErrCommit, len(res.Updates), err)
	}

	res.Duration = time.Since(start)
	metrics.BatchDurationMs.Observe(float64(res.Duration.Milliseconds()))
	metrics.BatchRecordsTotal.WithLabelValues("assigned").Add(float64(res.AssignedCount))
	metrics.BatchRecordsTotal.WithLabelValues("unassigned").Add(float64(res.UnassignedCount))
	metrics.BatchRecordsTotal.WithLabelValues("error").Add(float64(len(res.Errors)))
	status := "ok"
	if len(res.Errors) > 0 {
		status = "partial"
	}
	metrics.BatchRunsTotal.WithLabelValues(status).Inc()
	l.Info("batch_commit_ok", "assigned", res.AssignedCount, "unassigned", res.UnassignedCount, "errors", len(res.Errors), "dur_ms", res.Duration.Milliseconds())
	return res, nil
}

// 文档注释：对给定记录集合分类并生成待提交变更（不提交）
// 背景：记录之间互相独立，使用有界并发池；结果按下标落位，保证输出顺序与输入一致。
// 约束：缺少 ID 或坐标计为未分配且不报错；坐标非法或分类过程 panic 计入 Errors，不计入两个计数器，也不生成变更。
// snap 为空返回 ErrNoCatalog；只有已加载但为空的目录才会清除全部分配。
func (o *Orchestrator) AssignZones(ctx context.Context, records []record.Record, snap *zone.Snapshot) (*Result, error) {
	if snap == nil {
		return nil, zone.ErrNoCatalog
	}
	zones := snap.ListActiveZones()
	slots := make([]slot, len(records))

	workers := o.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			slots[i] = classifyOne(records[i], zones)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Errors: []RecordError{}, Updates: make([]Update, 0, len(records))}
	for i, s := range slots {
		switch s.outcome {
		case outcomeAssigned:
			res.AssignedCount++
		case outcomeUnassigned:
			res.UnassignedCount++
		case outcomeError:
			res.Errors = append(res.Errors, RecordError{RecordID: records[i].ID, Message: s.err})
			logger.L().Warn("batch_record_error", "record_id", records[i].ID, "err", s.err)
			continue
		}
		if s.update != nil {
			res.Updates = append(res.Updates, *s.update)
		}
	}
	return res, nil
}

func classifyOne(r record.Record, zones []zone.Zone) (s slot) {
	defer func() {
		if v := recover(); v != nil {
			s = slot{outcome: outcomeError, err: fmt.Sprintf("panic: %v", v)}
		}
	}()
	if r.ID == "" || r.Point == nil {
		return slot{outcome: outcomeUnassigned}
	}
	if err := geo.ValidatePoint(*r.Point); err != nil {
		return slot{outcome: outcomeError, err: err.Error()}
	}
	z, ok := zone.ClassifyPoint(r.Point, zones)
	if !ok {
		return slot{outcome: outcomeUnassigned, update: &Update{RecordID: r.ID}}
	}
	return slot{outcome: outcomeAssigned, update: &Update{RecordID: r.ID, Zone: &record.ZoneRef{ID: z.ID, Name: z.Name}}}
}
