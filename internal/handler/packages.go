package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/optimizer"
)

type packageLimits struct {
	MaxDays   *int32   `json:"maxDays" validate:"omitempty,gte=0"`
	MaxBudget *float64 `json:"maxBudget" validate:"omitempty,gte=0"`
}

func (l packageLimits) toLimits() optimizer.Limits {
	return optimizer.Limits{
		MaxDays:   l.MaxDays,
		MaxBudget: l.MaxBudget,
	}
}

// generatePackage 执行搜索并处理各种失败情况，返回 false 时响应已经写好
func (h *Handler) generatePackage(w http.ResponseWriter, r *http.Request, region *domain.Region, limits optimizer.Limits) (*domain.Package, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Optimizer.SearchTimeout)*time.Second)
	defer cancel()

	pkg, err := optimizer.New(h.snapshot().catalog).GeneratePackage(ctx, region.ID, limits)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			metrics.PackagesGenerated.WithLabelValues("canceled").Inc()
			slog.Warn("搜索超时", "regionID", region.ID, "error", err)
			h.errorResponse(w, r, "搜索超时，请设置更严格的天数或预算限制")
		case errors.Is(err, context.Canceled):
			// 客户端已经断开
			metrics.PackagesGenerated.WithLabelValues("canceled").Inc()
			slog.Info("搜索被取消", "regionID", region.ID)
		default:
			metrics.PackagesGenerated.WithLabelValues("error").Inc()
			h.internalServerError(w, r, err)
		}
		return nil, false
	}

	metrics.ObserveSearch(pkg)
	slog.Info("生成套餐", "regionID", region.ID, "tours", len(pkg.Tours), "totalValue", pkg.TotalValue, "nodes", pkg.Stats.Nodes, "elapsed", pkg.Stats.Elapsed)

	return pkg, true
}

func (h *Handler) GeneratePackage(w http.ResponseWriter, r *http.Request) {
	region := r.Context().Value(RegionCtx).(*domain.Region)

	var req packageLimits

	// 允许不带请求体，表示没有任何限制
	if err := h.readJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	pkg, ok := h.generatePackage(w, r, region, req.toLimits())
	if !ok {
		return
	}

	h.successResponse(w, r, "生成套餐成功", pkg)
}

func (h *Handler) SharePackage(w http.ResponseWriter, r *http.Request) {
	region := r.Context().Value(RegionCtx).(*domain.Region)

	var req struct {
		To string `json:"to" validate:"required,email"`
		packageLimits
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	pkg, ok := h.generatePackage(w, r, region, req.toLimits())
	if !ok {
		return
	}

	// 准备邮件
	mailMessage := domain.MailMessage{
		Type: "tour_package",
		To:   req.To,
		Data: newTourPackageMailData(region, pkg),
	}

	// 发送邮件到消息队列中
	if err := h.mailer.PublishMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "套餐已通过邮件发送", pkg)
}

func newTourPackageMailData(region *domain.Region, pkg *domain.Package) domain.TourPackageMailData {
	data := domain.TourPackageMailData{
		RegionName:  region.Name,
		Tours:       make([]domain.TourPackageMailTour, 0, len(pkg.Tours)),
		Attractions: make([]string, 0, len(pkg.Attractions)),
		TotalDays:   pkg.TotalDays,
		TotalCost:   pkg.TotalCost,
		TotalValue:  pkg.TotalValue,
	}
	for _, t := range pkg.Tours {
		data.Tours = append(data.Tours, domain.TourPackageMailTour{
			Name:         t.Name,
			DurationDays: t.DurationDays,
			Cost:         t.Cost,
		})
	}
	for _, a := range pkg.Attractions {
		data.Attractions = append(data.Attractions, a.Name)
	}
	return data
}
