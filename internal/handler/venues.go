package handler

import (
	"net/http"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Name                    string `json:"name" validate:"required,max=64"`
		Priority                int32  `json:"priority" validate:"required,min=1"`
		AvailabilityDeadlineDay int32  `json:"availabilityDeadlineDay" validate:"required,min=1,max=28"`
		TipPoolEnabled          bool   `json:"tipPoolEnabled"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	venue := &domain.Venue{
		Name:                    req.Name,
		Priority:                req.Priority,
		AvailabilityDeadlineDay: req.AvailabilityDeadlineDay,
		TipPoolEnabled:          req.TipPoolEnabled,
	}

	if err := h.repository.CreateVenue(venue); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建门店成功", venue)
}

func (h *Handler) GetAllVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.repository.GetAllVenues()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取门店列表成功", venues)
}

func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venue := r.Context().Value(VenueCtx).(*domain.Venue)
	h.successResponse(w, r, "获取门店信息成功", venue)
}

func (h *Handler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	venue := r.Context().Value(VenueCtx).(*domain.Venue)

	req := struct {
		Name                    *string `json:"name" validate:"omitempty,max=64"`
		Priority                *int32  `json:"priority" validate:"omitempty,min=1"`
		AvailabilityDeadlineDay *int32  `json:"availabilityDeadlineDay" validate:"omitempty,min=1,max=28"`
		TipPoolEnabled          *bool   `json:"tipPoolEnabled"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		venue.Name = *req.Name
	}
	if req.Priority != nil {
		venue.Priority = *req.Priority
	}
	if req.AvailabilityDeadlineDay != nil {
		venue.AvailabilityDeadlineDay = *req.AvailabilityDeadlineDay
	}
	if req.TipPoolEnabled != nil {
		venue.TipPoolEnabled = *req.TipPoolEnabled
	}

	if err := h.repository.UpdateVenue(venue); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新门店信息成功", venue)
}

func (h *Handler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	venue := r.Context().Value(VenueCtx).(*domain.Venue)

	if err := h.repository.DeleteVenue(venue.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除门店成功", nil)
}

// GetVenueShifts 按日期范围查询某门店的班次
func (h *Handler) GetVenueShifts(w http.ResponseWriter, r *http.Request) {
	venue := r.Context().Value(VenueCtx).(*domain.Venue)

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		h.errorResponse(w, r, "必须同时提供 from 和 to 两个日期参数")
		return
	}

	shifts, err := h.repository.GetShiftsByVenueAndDateRange(venue.ID, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取门店班次成功", shifts)
}
