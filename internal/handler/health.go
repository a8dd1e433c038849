package handler

import (
	"net/http"
	"time"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot()
	if snap == nil {
		h.errorResponse(w, r, "目录尚未加载")
		return
	}

	// 监听中断期间其他实例的写入不会被感知，让负载均衡先摘掉这个实例
	if h.eventsDown.Load() {
		h.writeJSON(w, r, http.StatusServiceUnavailable, Response{
			Success: false,
			Message: "目录事件监听已中断",
			Data:    nil,
		})
		return
	}

	tours, attractions := snap.catalog.Len()
	h.successResponse(w, r, "服务正常", map[string]any{
		"regions":     len(snap.regions),
		"tours":       tours,
		"attractions": attractions,
		"loadedAt":    snap.loadedAt.Format(time.RFC3339),
	})
}
