package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/metrics"
)

// snapshot 是某一次加载得到的只读数据，正在进行的搜索会一直使用它直到结束
type snapshot struct {
	catalog    *catalog.Catalog
	regions    map[string]*domain.Region
	regionList []*domain.Region
	loadedAt   time.Time
}

func (h *Handler) snapshot() *snapshot {
	return h.current.Load()
}

// ReloadCatalog 从数据库中重新构建目录并整体替换当前快照
func (h *Handler) ReloadCatalog() error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	start := time.Now()

	cat := catalog.New(h.store)
	dropped, err := cat.Load()
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("reload catalog: %w", err)
	}

	regions, err := cat.LoadRegions()
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("reload catalog: %w", err)
	}

	snap := &snapshot{
		catalog:    cat,
		regions:    make(map[string]*domain.Region, len(regions)),
		regionList: regions,
		loadedAt:   time.Now(),
	}
	for _, region := range regions {
		snap.regions[region.ID] = region
	}
	h.current.Store(snap)

	metrics.CatalogReloads.WithLabelValues("ok").Inc()
	metrics.CatalogDroppedLinks.Set(float64(dropped))

	tours, attractions := cat.Len()
	slog.Info("目录已加载", "regions", len(regions), "tours", tours, "attractions", attractions, "dropped", dropped, "duration", time.Since(start))

	return nil
}

// HandleCatalogEvent 处理其他实例广播的目录事件，自己发出的事件在写入时已经重新加载过了
func (h *Handler) HandleCatalogEvent(evt domain.CatalogEvent) error {
	if evt.Origin == h.InstanceID {
		return nil
	}

	slog.Info("收到目录事件", "type", evt.Type, "entityID", evt.EntityID, "origin", evt.Origin)
	return h.ReloadCatalog()
}

// SetEventsState 记录目录事件监听的状态，监听恢复时重新加载一次，补上中断期间错过的变更
func (h *Handler) SetEventsState(up bool) {
	wasDown := h.eventsDown.Swap(!up)
	if !up || !wasDown {
		return
	}

	slog.Info("目录事件监听已恢复，重新加载目录")
	if err := h.ReloadCatalog(); err != nil {
		slog.Error("重新加载目录失败", "error", err)
	}
}

// catalogChanged 在写操作成功之后调用：先重新加载本实例，再通知其他实例
// 数据库已经写入成功，所以这里的失败只记录日志，不影响响应
func (h *Handler) catalogChanged(eventType domain.CatalogEventType, entityID string) {
	if err := h.ReloadCatalog(); err != nil {
		slog.Error("重新加载目录失败", "type", eventType, "entityID", entityID, "error", err)
	}

	if h.publisher == nil {
		return
	}

	evt := domain.CatalogEvent{
		Type:     eventType,
		EntityID: entityID,
		Origin:   h.InstanceID,
	}
	if err := h.publisher.Publish(evt); err != nil {
		slog.Error("广播目录事件失败", "type", eventType, "entityID", entityID, "error", err)
	}
}

func (h *Handler) ReloadCatalogHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.ReloadCatalog(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if h.publisher != nil {
		evt := domain.CatalogEvent{
			Type:   domain.CatalogEventReloadRequested,
			Origin: h.InstanceID,
		}
		if err := h.publisher.Publish(evt); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	snap := h.snapshot()
	tours, attractions := snap.catalog.Len()
	h.successResponse(w, r, "重新加载目录成功", map[string]any{
		"regions":     len(snap.regions),
		"tours":       tours,
		"attractions": attractions,
	})
}
