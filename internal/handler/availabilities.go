package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/jtomassoni/scheduler-sub001/internal/repository"
	"github.com/jtomassoni/scheduler-sub001/internal/utils"
)

func (h *Handler) parseYearMonth(r *http.Request) (int32, int32, error) {
	year, err := strconv.ParseInt(chi.URLParam(r, "year"), 10, 32)
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, errors.New("年份格式错误")
	}

	month, err := strconv.ParseInt(chi.URLParam(r, "month"), 10, 32)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("月份格式错误")
	}

	return int32(year), int32(month), nil
}

// SubmitMyAvailability 覆盖保存当月的空闲时间表，锁定之前可以反复提交
func (h *Handler) SubmitMyAvailability(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(MyInfoCtx).(*domain.StaffMember)

	year, month, err := h.parseYearMonth(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	req := struct {
		Windows []struct {
			Day       int32  `json:"day" validate:"required"`
			StartTime string `json:"startTime" validate:"required"`
			EndTime   string `json:"endTime" validate:"required"`
		} `json:"windows" validate:"required,dive"`
		Lock bool `json:"lock"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	av := &domain.Availability{
		StaffID:  member.ID,
		Year:     year,
		Month:    month,
		IsLocked: req.Lock,
		Windows:  make([]domain.AvailabilityWindow, 0, len(req.Windows)),
	}
	for _, win := range req.Windows {
		av.Windows = append(av.Windows, domain.AvailabilityWindow{
			Day:       win.Day,
			StartTime: win.StartTime,
			EndTime:   win.EndTime,
		})
	}

	if err := utils.ValidateAvailabilityWindows(av); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpsertAvailability(av); err != nil {
		if errors.Is(err, repository.ErrAvailabilityLocked) {
			h.errorResponse(w, r, err.Error())
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交空闲时间表成功", av)
}

func (h *Handler) GetMyAvailability(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(MyInfoCtx).(*domain.StaffMember)

	year, month, err := h.parseYearMonth(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	av, err := h.repository.GetStaffMonthAvailability(member.ID, year, month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "该月还没有提交过空闲时间表")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取空闲时间表成功", av)
}

// LockMyAvailability 显式锁定当月的空闲时间表，锁定后不能再修改
func (h *Handler) LockMyAvailability(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(MyInfoCtx).(*domain.StaffMember)

	year, month, err := h.parseYearMonth(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.LockAvailability(member.ID, year, month); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "该月还没有提交过空闲时间表")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "锁定空闲时间表成功", nil)
}
