package zone

import (
	"context"
	"sync/atomic"
	"time"

	"medzone/internal/logger"
	"medzone/internal/metrics"
)

// 文档注释：快照持有器
// 背景：通过原子指针无锁切换目录快照（热重载），读路径不阻塞；调用方每次操作只 Load 一次并在操作内复用。
// 约束：未加载时 Load 返回 nil，上层需转换为 ErrNoCatalog。
type Holder struct{ v atomic.Pointer[Snapshot] }

func (h *Holder) Load() *Snapshot { return h.v.Load() }

func (h *Holder) Set(s *Snapshot) { h.v.Store(s) }

// Reload 从 Provider 重建快照并切换；失败时保留旧快照
func (h *Holder) Reload(ctx context.Context, p Provider) (*Snapshot, error) {
	s, err := Load(ctx, p)
	if err != nil {
		logger.L().Error("zone_reload_error", "err", err)
		return nil, err
	}
	for _, r := range s.Rejected {
		logger.L().Warn("zone_rejected", "id", r.Zone.ID, "name", r.Zone.Name, "err", r.Err)
	}
	h.Set(s)
	metrics.CatalogZones.Set(float64(s.Len()))
	logger.L().Info("zone_reload_ok", "zones", s.Len(), "rejected", len(s.Rejected), "version", s.Version)
	return s, nil
}

// 文档注释：周期刷新
// 背景：外部管理端改动区域后无需重启服务；在 ctx 取消时停止。
func (h *Holder) StartRefresh(ctx context.Context, p Provider, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				_, _ = h.Reload(ctx, p)
			}
		}
	}()
}
