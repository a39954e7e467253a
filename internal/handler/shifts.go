package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/jtomassoni/scheduler-sub001/internal/engine"
	"github.com/jtomassoni/scheduler-sub001/internal/utils"
)

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	req := struct {
		VenueID            int64  `json:"venueID" validate:"required"`
		Date               string `json:"date" validate:"required"`
		StartTime          string `json:"startTime" validate:"required"`
		EndTime            string `json:"endTime" validate:"required"`
		BartendersRequired int32  `json:"bartendersRequired"`
		BarbacksRequired   int32  `json:"barbacksRequired"`
		LeadsRequired      int32  `json:"leadsRequired"`
		AutoFill           bool   `json:"autoFill"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := &domain.Shift{
		VenueID:            req.VenueID,
		Date:               req.Date,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		BartendersRequired: req.BartendersRequired,
		BarbacksRequired:   req.BarbacksRequired,
		LeadsRequired:      req.LeadsRequired,
	}

	if err := utils.ValidateShiftTimes(shift); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if _, err := h.repository.GetVenueByID(shift.VenueID); err != nil {
		h.errorResponse(w, r, "该门店不存在")
		return
	}

	if err := h.repository.CreateShift(shift); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	data := struct {
		Shift   *domain.Shift       `json:"shift"`
		Summary *engine.FillSummary `json:"summary,omitempty"`
	}{
		Shift: shift,
	}

	// 创建时就可以顺手触发一次自动排班
	if req.AutoFill {
		summary, err := h.autoFillAndNotify(r, shift.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		data.Summary = summary
	}

	h.successResponse(w, r, "创建班次成功", data)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	assignments, err := h.repository.GetShiftAssignments(shift.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	data := struct {
		Shift       *domain.Shift             `json:"shift"`
		Assignments []*domain.ShiftAssignment `json:"assignments"`
	}{
		Shift:       shift,
		Assignments: assignments,
	}

	h.successResponse(w, r, "获取班次信息成功", data)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if err := h.repository.DeleteShift(shift.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除班次成功", nil)
}

// autoFillAndNotify 执行一次自动排班并给新指派的员工发通知
func (h *Handler) autoFillAndNotify(r *http.Request, shiftID int64) (*engine.FillSummary, error) {
	before, err := h.repository.GetShiftAssignments(shiftID)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]bool, len(before))
	for _, sa := range before {
		known[sa.ID] = true
	}

	summary, err := h.autoFiller.AutoFill(r.Context(), shiftID, time.Now())
	if err != nil {
		return nil, err
	}

	if summary.Assigned == 0 {
		return summary, nil
	}

	shift, err := h.repository.GetShiftByID(shiftID)
	if err != nil {
		return nil, err
	}
	venue, err := h.repository.GetVenueByID(shift.VenueID)
	if err != nil {
		return nil, err
	}
	after, err := h.repository.GetShiftAssignments(shiftID)
	if err != nil {
		return nil, err
	}

	for _, sa := range after {
		if known[sa.ID] {
			continue
		}
		member, err := h.repository.GetStaffMemberByID(sa.StaffID)
		if err != nil {
			return nil, err
		}
		h.publishEvent(domain.EventAssignmentCreated, member.Email, domain.AssignmentCreatedEventData{
			FullName:  member.FullName,
			VenueName: venue.Name,
			Date:      shift.Date,
			StartTime: shift.StartTime,
			EndTime:   shift.EndTime,
			SlotKind:  string(sa.SlotKind),
		})
	}

	return summary, nil
}

// AutoFillShift 对单个班次执行一次自动排班，重复调用只会补上新空缺
func (h *Handler) AutoFillShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	summary, err := h.autoFillAndNotify(r, shift.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "自动排班完成", summary)
}

// AutoScheduleRange 对一段日期内的所有班次批量执行自动排班
// 门店按优先级从高到低处理，高优先级门店先挑人
func (h *Handler) AutoScheduleRange(w http.ResponseWriter, r *http.Request) {
	req := struct {
		From string `json:"from" validate:"required"`
		To   string `json:"to" validate:"required"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		h.errorResponse(w, r, fmt.Sprintf("日期 %q 格式错误", req.From))
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		h.errorResponse(w, r, fmt.Sprintf("日期 %q 格式错误", req.To))
		return
	}
	if to.Before(from) {
		h.errorResponse(w, r, "结束日期不能早于开始日期")
		return
	}
	if to.Sub(from) > 62*24*time.Hour {
		h.errorResponse(w, r, "批量排班的日期范围不能超过两个月")
		return
	}

	// GetAllVenues 已按优先级排序
	venues, err := h.repository.GetAllVenues()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	summaries := make([]*engine.FillSummary, 0)
	for _, venue := range venues {
		shifts, err := h.repository.GetShiftsByVenueAndDateRange(venue.ID, req.From, req.To)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		for _, shift := range shifts {
			summary, err := h.autoFillAndNotify(r, shift.ID)
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}
			summaries = append(summaries, summary)
		}
	}

	h.successResponse(w, r, "批量排班完成", summaries)
}

// PublishShiftTips 计算基准分成并发布
// 重新发布会重算金额，但发布标记不会被取消
func (h *Handler) PublishShiftTips(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	sub := r.Context().Value(SubCtxKey).(int64)

	req := struct {
		// 小费池总额，单位为分
		TotalAmount int64 `json:"totalAmount" validate:"min=0"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	venue, err := h.repository.GetVenueByID(shift.VenueID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !venue.TipPoolEnabled {
		h.errorResponse(w, r, "该门店没有启用小费池")
		return
	}

	assignments, err := h.repository.GetShiftAssignments(shift.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	amounts, err := engine.BaselineTipSplit(req.TotalAmount, assignments)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.PublishShiftTips(shift, amounts, sub, time.Now()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	data := struct {
		Shift   *domain.Shift   `json:"shift"`
		Amounts map[int64]int64 `json:"amounts"` // 排班记录 ID -> 分成金额
	}{
		Shift:   shift,
		Amounts: amounts,
	}

	h.successResponse(w, r, "发布小费分成成功", data)
}
