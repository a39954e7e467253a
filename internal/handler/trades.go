package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/jtomassoni/scheduler-sub001/internal/engine"
	"github.com/jtomassoni/scheduler-sub001/internal/workflow"
)

// ProposeTrade 发起换班：把自己持有的一条排班记录转让给接收人
// 发起时就校验接收人具备接手该槽位的资格，不合格的申请直接拒绝
func (h *Handler) ProposeTrade(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	sub := r.Context().Value(SubCtxKey).(int64)

	req := struct {
		AssignmentID int64  `json:"assignmentID" validate:"required"`
		ReceiverID   int64  `json:"receiverID" validate:"required"`
		Reason       string `json:"reason" validate:"max=512"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.ReceiverID == sub {
		h.errorResponse(w, r, "不能和自己换班")
		return
	}

	sa, err := h.repository.GetAssignmentByID(req.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "该排班记录不存在")
			return
		}
		h.internalServerError(w, r, err)
		return
	}
	if sa.ShiftID != shift.ID {
		h.errorResponse(w, r, "该排班记录不属于这个班次")
		return
	}
	if sa.StaffID != sub {
		h.errorResponse(w, r, "只能转让自己持有的排班记录")
		return
	}

	receiver, err := h.repository.GetStaffMemberByID(req.ReceiverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "接收人不存在")
			return
		}
		h.internalServerError(w, r, err)
		return
	}
	if receiver.Status != domain.StaffActive {
		h.errorResponse(w, r, "接收人不是在职状态")
		return
	}

	in, err := engine.LoadPoolInput(h.repository, shift)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := engine.CheckTradeReceiver(in, sa.SlotKind, receiver.ID, time.Now()); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	t := &domain.ShiftTrade{
		ShiftID:      shift.ID,
		AssignmentID: sa.ID,
		ProposerID:   sub,
		ReceiverID:   receiver.ID,
		Status:       domain.TradeProposed,
		Reason:       req.Reason,
	}

	if err := h.repository.CreateTrade(t); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.notifyTradeUpdate(t, receiver.ID)

	h.successResponse(w, r, "发起换班成功", t)
}

func (h *Handler) GetTrade(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TradeCtx).(*domain.ShiftTrade)
	h.successResponse(w, r, "获取换班信息成功", t)
}

func (h *Handler) AcceptTrade(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TradeCtx).(*domain.ShiftTrade)
	sub := r.Context().Value(SubCtxKey).(int64)

	if err := workflow.Accept(t, sub); err != nil {
		h.tradeWorkflowError(w, r, err)
		return
	}

	if err := h.repository.UpdateTradeStatus(t); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.notifyTradeUpdate(t, t.ProposerID)

	h.successResponse(w, r, "接受换班成功", t)
}

func (h *Handler) DeclineTrade(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TradeCtx).(*domain.ShiftTrade)
	sub := r.Context().Value(SubCtxKey).(int64)

	req := struct {
		Reason string `json:"reason" validate:"max=512"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	actor, err := h.repository.GetStaffMemberByID(sub)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := workflow.Decline(t, actor, req.Reason); err != nil {
		h.tradeWorkflowError(w, r, err)
		return
	}

	if err := h.repository.UpdateTradeStatus(t); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.notifyTradeUpdate(t, t.ProposerID)

	h.successResponse(w, r, "拒绝换班成功", t)
}

func (h *Handler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TradeCtx).(*domain.ShiftTrade)
	sub := r.Context().Value(SubCtxKey).(int64)

	if err := workflow.Cancel(t, sub); err != nil {
		h.tradeWorkflowError(w, r, err)
		return
	}

	if err := h.repository.UpdateTradeStatus(t); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.notifyTradeUpdate(t, t.ReceiverID)

	h.successResponse(w, r, "撤回换班成功", t)
}

// ApproveTrade 管理者批准换班，排班记录的转让和状态落地在同一个事务里完成
// 发起人的排班记录已被并发流程改动时返回失败，换班保持 accepted 等待人工处理
func (h *Handler) ApproveTrade(w http.ResponseWriter, r *http.Request) {
	t := r.Context().Value(TradeCtx).(*domain.ShiftTrade)
	sub := r.Context().Value(SubCtxKey).(int64)

	actor, err := h.repository.GetStaffMemberByID(sub)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := workflow.Approve(t, actor); err != nil {
		h.tradeWorkflowError(w, r, err)
		return
	}

	if err := h.repository.ApproveTradeSwap(t); err != nil {
		if errors.Is(err, domain.ErrStaleTrade) {
			h.errorResponse(w, r, err.Error())
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.notifyTradeUpdate(t, t.ProposerID)
	h.notifyTradeUpdate(t, t.ReceiverID)

	h.successResponse(w, r, "批准换班成功", t)
}

func (h *Handler) tradeWorkflowError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidStateTransition) {
		h.errorResponse(w, r, "换班当前的状态不允许此操作")
		return
	}
	h.errorResponse(w, r, err.Error())
}

// notifyTradeUpdate 给换班的一方发送状态变更通知
func (h *Handler) notifyTradeUpdate(t *domain.ShiftTrade, recipientID int64) {
	recipient, err := h.repository.GetStaffMemberByID(recipientID)
	if err != nil {
		return
	}

	counterpartyID := t.ProposerID
	if recipientID == t.ProposerID {
		counterpartyID = t.ReceiverID
	}
	counterparty, err := h.repository.GetStaffMemberByID(counterpartyID)
	if err != nil {
		return
	}

	shift, err := h.repository.GetShiftByID(t.ShiftID)
	if err != nil {
		return
	}

	h.publishEvent(domain.EventTradeUpdate, recipient.Email, domain.TradeUpdateEventData{
		FullName:     recipient.FullName,
		Counterparty: counterparty.FullName,
		Status:       string(t.Status),
		Date:         shift.Date,
	})
}
