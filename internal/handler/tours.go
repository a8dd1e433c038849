package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

type tourDetail struct {
	*domain.Tour
	Attractions []*domain.Attraction `json:"attractions"`
	Value       int64                `json:"value"`
}

func (h *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	tour := r.Context().Value(TourCtx).(*domain.Tour)
	cat := h.snapshot().catalog

	h.successResponse(w, r, "获取线路成功", tourDetail{
		Tour:        tour,
		Attractions: cat.AttractionsOf(tour.ID),
		Value:       cat.TourValue(tour.ID),
	})
}

func (h *Handler) CreateTour(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RegionID      string  `json:"regionID" validate:"required"`
		Name          string  `json:"name" validate:"required"`
		Description   string  `json:"description"`
		DurationDays  int32   `json:"durationDays" validate:"gte=0"`
		Cost          float64 `json:"cost" validate:"gte=0"`
		AttractionIDs []int64 `json:"attractionIDs" validate:"dive,gt=0"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	snap := h.snapshot()
	if _, ok := snap.regions[req.RegionID]; !ok {
		h.errorResponse(w, r, "地区不存在")
		return
	}
	for _, id := range req.AttractionIDs {
		if _, ok := snap.catalog.Attraction(id); !ok {
			h.errorResponse(w, r, fmt.Sprintf("景点 %d 不存在", id))
			return
		}
	}

	tour := &domain.Tour{
		RegionID:     req.RegionID,
		Name:         req.Name,
		Description:  req.Description,
		DurationDays: req.DurationDays,
		Cost:         req.Cost,
	}

	if err := h.repository.CreateTour(tour, req.AttractionIDs); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "tours_region_id_fkey":
				h.errorResponse(w, r, "地区不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.catalogChanged(domain.CatalogEventTourCreated, strconv.FormatInt(tour.ID, 10))

	h.successResponse(w, r, "创建线路成功", tour)
}

func (h *Handler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	tour := r.Context().Value(TourCtx).(*domain.Tour)

	if err := h.repository.DeleteTour(tour.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "线路不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.catalogChanged(domain.CatalogEventTourDeleted, strconv.FormatInt(tour.ID, 10))

	h.successResponse(w, r, "删除线路成功", nil)
}

func (h *Handler) LinkTourAttraction(w http.ResponseWriter, r *http.Request) {
	tour := r.Context().Value(TourCtx).(*domain.Tour)

	var req struct {
		AttractionID int64 `json:"attractionID" validate:"required,gt=0"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, ok := h.snapshot().catalog.Attraction(req.AttractionID); !ok {
		h.errorResponse(w, r, "景点不存在")
		return
	}

	link := &domain.TourAttraction{
		TourID:       tour.ID,
		AttractionID: req.AttractionID,
	}

	if err := h.repository.CreateTourAttraction(link); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "tour_attractions_pkey":
				h.errorResponse(w, r, "线路已包含该景点")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.catalogChanged(domain.CatalogEventLinkCreated, fmt.Sprintf("%d:%d", link.TourID, link.AttractionID))

	h.successResponse(w, r, "添加景点成功", link)
}

func (h *Handler) UnlinkTourAttraction(w http.ResponseWriter, r *http.Request) {
	tour := r.Context().Value(TourCtx).(*domain.Tour)

	attractionID, err := strconv.ParseInt(chi.URLParam(r, "attractionID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "景点ID无效")
		return
	}

	link := &domain.TourAttraction{
		TourID:       tour.ID,
		AttractionID: attractionID,
	}

	if err := h.repository.DeleteTourAttraction(link); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "线路不包含该景点")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.catalogChanged(domain.CatalogEventLinkDeleted, fmt.Sprintf("%d:%d", link.TourID, link.AttractionID))

	h.successResponse(w, r, "移除景点成功", nil)
}
