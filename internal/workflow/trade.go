package workflow

import (
	"errors"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

// Accept 接收人同意换班，只推进状态，排班记录此时还不会变动
func Accept(t *domain.ShiftTrade, actorID int64) error {
	if t.Status != domain.TradeProposed {
		return domain.ErrInvalidStateTransition
	}
	if actorID != t.ReceiverID {
		return errors.New("只有接收人可以接受换班")
	}
	t.Status = domain.TradeAccepted
	return nil
}

// Decline 拒绝换班：接收人在 proposed 阶段、管理者在 accepted 阶段都可以拒绝
func Decline(t *domain.ShiftTrade, actor *domain.StaffMember, reason string) error {
	switch t.Status {
	case domain.TradeProposed:
		if actor.ID != t.ReceiverID {
			return errors.New("只有接收人可以拒绝该换班")
		}
	case domain.TradeAccepted:
		if !actor.Role.IsManagerial() {
			return errors.New("双方确认后的换班只能由管理者拒绝")
		}
	default:
		return domain.ErrInvalidStateTransition
	}

	t.Status = domain.TradeDeclined
	if reason != "" {
		t.Reason = reason
	}
	return nil
}

// Cancel 发起人在任何非终态撤回换班
func Cancel(t *domain.ShiftTrade, actorID int64) error {
	if t.Status.Terminal() {
		return domain.ErrInvalidStateTransition
	}
	if actorID != t.ProposerID {
		return errors.New("只有发起人可以撤回换班")
	}
	t.Status = domain.TradeCancelled
	return nil
}

// Approve 只校验状态流转，真正的排班记录交换由 repository 在同一事务里完成
// 事务内还会重新校验发起人仍然持有这条排班记录，输掉竞争时返回 ErrStaleTrade
// 并把换班留在 accepted 状态等待人工处理
func Approve(t *domain.ShiftTrade, actor *domain.StaffMember) error {
	if t.Status != domain.TradeAccepted {
		return domain.ErrInvalidStateTransition
	}
	if !actor.Role.IsManagerial() {
		return errors.New("只有管理者可以批准换班")
	}
	t.Status = domain.TradeApproved
	return nil
}
