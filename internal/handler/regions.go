package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

func (h *Handler) GetAllRegions(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "获取所有地区成功", h.snapshot().regionList)
}

func (h *Handler) GetRegion(w http.ResponseWriter, r *http.Request) {
	region := r.Context().Value(RegionCtx).(*domain.Region)
	h.successResponse(w, r, "获取地区成功", region)
}

// GetRegionTours 返回地区内的所有线路，顺序与生成套餐时的搜索顺序一致
func (h *Handler) GetRegionTours(w http.ResponseWriter, r *http.Request) {
	region := r.Context().Value(RegionCtx).(*domain.Region)
	cat := h.snapshot().catalog

	tours := cat.ToursInRegion(region.ID)
	details := make([]tourDetail, 0, len(tours))
	for _, t := range tours {
		details = append(details, tourDetail{
			Tour:        t,
			Attractions: cat.AttractionsOf(t.ID),
			Value:       cat.TourValue(t.ID),
		})
	}

	h.successResponse(w, r, "获取地区线路成功", details)
}

func (h *Handler) CreateRegion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"id" validate:"required,alphanum,max=32"`
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	region := &domain.Region{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := h.repository.CreateRegion(region); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "regions_pkey":
				h.errorResponse(w, r, "地区ID已存在")
			case "regions_name_key":
				h.errorResponse(w, r, "地区名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.catalogChanged(domain.CatalogEventRegionCreated, region.ID)

	h.successResponse(w, r, "创建地区成功", region)
}
