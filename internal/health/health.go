// 包 health：依赖探针注册与心跳，汇总为 /healthz 的服务健康状态
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"medzone/internal/logger"
	"medzone/internal/metrics"
)

// 文档注释：探针接口（统一契约）
// 背景：数据库、Redis、区域目录等依赖抽象为同构探针，由管理器周期性检查。
// 约束：Check 需在 ctx 超时内返回；Critical 为真的探针失败时整体判定为不健康。
type Probe interface {
	Name() string
	Critical() bool
	Check(ctx context.Context) error
}

// Status 单个探针的最近一次结果
type Status struct {
	Name     string    `json:"name"`
	Healthy  bool      `json:"healthy"`
	Critical bool      `json:"critical"`
	Error    string    `json:"error,omitempty"`
	Last     time.Time `json:"last"`
}

// Report /healthz 响应体
type Report struct {
	Healthy bool     `json:"healthy"`
	Probes  []Status `json:"probes"`
}

// 文档注释：探针管理器
// 背景：负责注册、心跳与状态汇总；心跳结果缓存，/healthz 只读缓存而不实时探测。
// 约束：心跳周期默认 10s，单次探测超时 2s；线程安全读写。
type Manager struct {
	mu         sync.RWMutex
	ps         map[string]Probe
	st         map[string]Status
	hbInterval time.Duration
	timeout    time.Duration
}

func NewManager(interval time.Duration) *Manager {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Manager{ps: map[string]Probe{}, st: map[string]Status{}, hbInterval: interval, timeout: 2 * time.Second}
}

// Register 注册探针；初始状态为未知（不健康），首次心跳后更新
func (m *Manager) Register(p Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ps[p.Name()] = p
	m.st[p.Name()] = Status{Name: p.Name(), Critical: p.Critical(), Error: "pending"}
	logger.L().Info("probe_registered", "name", p.Name(), "critical", p.Critical())
}

// Start 立即执行一次心跳，然后周期执行；ctx 取消时停止
func (m *Manager) Start(ctx context.Context) {
	m.Heartbeat(ctx)
	t := time.NewTicker(m.hbInterval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Heartbeat(ctx)
			}
		}
	}()
}

// Heartbeat 逐个执行探针；探测期间不持有锁
func (m *Manager) Heartbeat(ctx context.Context) {
	m.mu.RLock()
	ps := make([]Probe, 0, len(m.ps))
	for _, p := range m.ps {
		ps = append(ps, p)
	}
	m.mu.RUnlock()

	for _, p := range ps {
		cctx, cancel := context.WithTimeout(ctx, m.timeout)
		err := p.Check(cctx)
		cancel()
		s := Status{Name: p.Name(), Critical: p.Critical(), Healthy: err == nil, Last: time.Now()}
		if err != nil {
			s.Error = err.Error()
			logger.L().Warn("probe_heartbeat_fail", "name", p.Name(), "err", err)
			metrics.ProbeTotal.WithLabelValues(p.Name(), "fail").Inc()
		} else {
			logger.L().Debug("probe_heartbeat_ok", "name", p.Name())
			metrics.ProbeTotal.WithLabelValues(p.Name(), "ok").Inc()
		}
		m.mu.Lock()
		m.st[p.Name()] = s
		m.mu.Unlock()
	}
}

// Report 汇总当前状态，按名称排序
func (m *Manager) Report() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := Report{Healthy: true, Probes: make([]Status, 0, len(m.st))}
	for _, s := range m.st {
		if s.Critical && !s.Healthy {
			r.Healthy = false
		}
		r.Probes = append(r.Probes, s)
	}
	sort.Slice(r.Probes, func(i, j int) bool { return r.Probes[i].Name < r.Probes[j].Name })
	return r
}

// 文档注释：函数式探针适配器
// 背景：多数依赖只需一个 Ping 调用，避免为每个依赖定义类型。
type FuncProbe struct {
	ProbeName  string
	IsCritical bool
	Fn         func(ctx context.Context) error
}

func (f FuncProbe) Name() string                    { return f.ProbeName }
func (f FuncProbe) Critical() bool                  { return f.IsCritical }
func (f FuncProbe) Check(ctx context.Context) error { return f.Fn(ctx) }
