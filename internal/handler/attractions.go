package handler

import (
	"net/http"
	"strconv"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

func (h *Handler) GetAttraction(w http.ResponseWriter, r *http.Request) {
	attraction := r.Context().Value(AttractionCtx).(*domain.Attraction)

	h.successResponse(w, r, "获取景点成功", struct {
		*domain.Attraction
		Tours []*domain.Tour `json:"tours"`
	}{
		Attraction: attraction,
		Tours:      h.snapshot().catalog.ToursOf(attraction.ID),
	})
}

func (h *Handler) CreateAttraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name" validate:"required"`
		Description   string `json:"description"`
		CulturalValue *int32 `json:"culturalValue" validate:"required,gte=0"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	attraction := &domain.Attraction{
		Name:          req.Name,
		Description:   req.Description,
		CulturalValue: *req.CulturalValue,
	}

	if err := h.repository.CreateAttraction(attraction); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.catalogChanged(domain.CatalogEventAttractionCreated, strconv.FormatInt(attraction.ID, 10))

	h.successResponse(w, r, "创建景点成功", attraction)
}
