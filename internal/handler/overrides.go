package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/jtomassoni/scheduler-sub001/internal/workflow"
)

// CreateOverride 为某个班次提交一条硬约束豁免申请
// 员工只能为自己申请，管理者可以替任何员工申请
func (h *Handler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	sub := r.Context().Value(SubCtxKey).(int64)
	role := r.Context().Value(RoleCtxKey).(domain.Role)

	req := struct {
		StaffID   int64                `json:"staffID" validate:"required"`
		Violation domain.ViolationType `json:"violation" validate:"required"`
		Reason    string               `json:"reason" validate:"required,max=512"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !req.Violation.Valid() {
		h.errorResponse(w, r, "未知的违规类型")
		return
	}

	if req.StaffID != sub && !role.IsManagerial() {
		h.errorResponse(w, r, "只能为自己申请豁免")
		return
	}

	if _, err := h.repository.GetStaffMemberByID(req.StaffID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "该员工不存在")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	o := &domain.Override{
		ShiftID:   shift.ID,
		StaffID:   req.StaffID,
		Violation: req.Violation,
		Reason:    req.Reason,
		Status:    domain.OverridePending,
		Approvals: make([]domain.OverrideApproval, 0),
	}

	if err := h.repository.CreateOverride(o); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交豁免申请成功", o)
}

func (h *Handler) GetShiftOverrides(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	overrides, err := h.repository.GetOverridesByShiftID(shift.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取豁免列表成功", overrides)
}

func (h *Handler) GetOverride(w http.ResponseWriter, r *http.Request) {
	o := r.Context().Value(OverrideCtx).(*domain.Override)
	h.successResponse(w, r, "获取豁免信息成功", o)
}

// DecideOverride 记录一条审批意见
// 所有要求的审批人都同意后豁免才会被批准，任何一票拒绝立刻进入终态
func (h *Handler) DecideOverride(w http.ResponseWriter, r *http.Request) {
	o := r.Context().Value(OverrideCtx).(*domain.Override)
	sub := r.Context().Value(SubCtxKey).(int64)

	req := struct {
		Approved *bool  `json:"approved" validate:"required"`
		Comment  string `json:"comment" validate:"max=512"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	approver, err := h.repository.GetStaffMemberByID(sub)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := workflow.Decide(o, approver, *req.Approved, req.Comment, h.approverPolicy, time.Now()); err != nil {
		if errors.Is(err, domain.ErrInvalidStateTransition) {
			h.errorResponse(w, r, "该豁免已不在待审批状态")
			return
		}
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.SaveOverrideDecision(o); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 审批出结果后通知被影响的员工
	if o.Status == domain.OverrideApproved || o.Status == domain.OverrideDeclined {
		if member, err := h.repository.GetStaffMemberByID(o.StaffID); err == nil {
			shift, err := h.repository.GetShiftByID(o.ShiftID)
			if err == nil {
				h.publishEvent(domain.EventOverrideResolved, member.Email, domain.OverrideResolvedEventData{
					FullName:  member.FullName,
					Violation: string(o.Violation),
					Status:    string(o.Status),
					Date:      shift.Date,
				})
			}
		}
	}

	h.successResponse(w, r, "审批成功", o)
}
