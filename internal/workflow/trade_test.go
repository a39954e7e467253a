package workflow

import (
	"testing"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proposedTrade() *domain.ShiftTrade {
	return &domain.ShiftTrade{
		ID:           1,
		ShiftID:      100,
		AssignmentID: 5,
		ProposerID:   10,
		ReceiverID:   11,
		Status:       domain.TradeProposed,
	}
}

func TestAccept(t *testing.T) {
	tr := proposedTrade()

	// 只有接收人可以接受
	assert.Error(t, Accept(tr, tr.ProposerID))
	assert.Equal(t, domain.TradeProposed, tr.Status)

	require.NoError(t, Accept(tr, tr.ReceiverID))
	assert.Equal(t, domain.TradeAccepted, tr.Status)

	// accepted 之后不能再接受
	assert.ErrorIs(t, Accept(tr, tr.ReceiverID), domain.ErrInvalidStateTransition)
}

func TestDeclineByReceiver(t *testing.T) {
	tr := proposedTrade()
	receiver := &domain.StaffMember{ID: 11, Role: domain.RoleBartender}
	outsider := &domain.StaffMember{ID: 12, Role: domain.RoleBartender}

	assert.Error(t, Decline(tr, outsider, ""))

	require.NoError(t, Decline(tr, receiver, "那天有事"))
	assert.Equal(t, domain.TradeDeclined, tr.Status)
	assert.Equal(t, "那天有事", tr.Reason)
}

func TestDeclineAcceptedNeedsManager(t *testing.T) {
	tr := proposedTrade()
	tr.Status = domain.TradeAccepted

	receiver := &domain.StaffMember{ID: 11, Role: domain.RoleBartender}
	mgr := &domain.StaffMember{ID: 20, Role: domain.RoleManager}

	// 双方确认后接收人不能再单方面拒绝
	assert.Error(t, Decline(tr, receiver, ""))

	require.NoError(t, Decline(tr, mgr, "排班另有安排"))
	assert.Equal(t, domain.TradeDeclined, tr.Status)
}

func TestCancel(t *testing.T) {
	tr := proposedTrade()

	assert.Error(t, Cancel(tr, tr.ReceiverID))

	require.NoError(t, Cancel(tr, tr.ProposerID))
	assert.Equal(t, domain.TradeCancelled, tr.Status)

	// 终态之后不能再撤回
	assert.ErrorIs(t, Cancel(tr, tr.ProposerID), domain.ErrInvalidStateTransition)
}

func TestCancelAccepted(t *testing.T) {
	tr := proposedTrade()
	tr.Status = domain.TradeAccepted

	// accepted 还不是终态，发起人仍然可以撤回
	require.NoError(t, Cancel(tr, tr.ProposerID))
	assert.Equal(t, domain.TradeCancelled, tr.Status)
}

func TestApprove(t *testing.T) {
	tr := proposedTrade()
	mgr := &domain.StaffMember{ID: 20, Role: domain.RoleManager}
	staff := &domain.StaffMember{ID: 11, Role: domain.RoleBartender}

	// proposed 阶段不能直接批准
	assert.ErrorIs(t, Approve(tr, mgr), domain.ErrInvalidStateTransition)

	tr.Status = domain.TradeAccepted
	assert.Error(t, Approve(tr, staff))
	assert.Equal(t, domain.TradeAccepted, tr.Status)

	require.NoError(t, Approve(tr, mgr))
	assert.Equal(t, domain.TradeApproved, tr.Status)
}
