package workflow

import (
	"testing"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decisionTime = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

func pendingOverride(violation domain.ViolationType) *domain.Override {
	return &domain.Override{
		ID:        1,
		ShiftID:   100,
		StaffID:   10,
		Violation: violation,
		Status:    domain.OverridePending,
		Approvals: make([]domain.OverrideApproval, 0),
	}
}

func affectedStaff() *domain.StaffMember {
	return &domain.StaffMember{ID: 10, FullName: "张伟", Role: domain.RoleBartender}
}

func manager(id int64) *domain.StaffMember {
	return &domain.StaffMember{ID: id, FullName: "陈静", Role: domain.RoleManager}
}

func TestDecideCutoffNeedsAffectedStaff(t *testing.T) {
	o := pendingOverride(domain.ViolationCutoff)

	// 管理者不在下班时间豁免的审批人集合里
	err := Decide(o, manager(20), true, "", DefaultApproverPolicy(), decisionTime)
	assert.Error(t, err)
	assert.Equal(t, domain.OverridePending, o.Status)

	// 本人同意后直接批准
	require.NoError(t, Decide(o, affectedStaff(), true, "晚点到没问题", DefaultApproverPolicy(), decisionTime))
	assert.Equal(t, domain.OverrideApproved, o.Status)
	require.Len(t, o.Approvals, 1)
	assert.Equal(t, domain.RoleBartender, o.Approvals[0].ApproverRole)
}

func TestDecideManagerViolations(t *testing.T) {
	for _, violation := range []domain.ViolationType{domain.ViolationDoubleBooking, domain.ViolationLeadShortage} {
		o := pendingOverride(violation)

		// 本人不是这类豁免的审批人
		err := Decide(o, affectedStaff(), true, "", DefaultApproverPolicy(), decisionTime)
		assert.Error(t, err, "%s 不应允许本人审批", violation)

		require.NoError(t, Decide(o, manager(20), true, "", DefaultApproverPolicy(), decisionTime))
		assert.Equal(t, domain.OverrideApproved, o.Status)
	}
}

func TestDecideAllApproversRequired(t *testing.T) {
	// 自定义策略：需要本人和一位管理者都同意
	policy := ApproverPolicy{
		domain.ViolationCutoff: {ApproverAffectedStaff, ApproverManager},
	}

	o := pendingOverride(domain.ViolationCutoff)

	require.NoError(t, Decide(o, affectedStaff(), true, "", policy, decisionTime))
	assert.Equal(t, domain.OverridePending, o.Status, "只有本人同意时不应批准")

	require.NoError(t, Decide(o, manager(20), true, "", policy, decisionTime))
	assert.Equal(t, domain.OverrideApproved, o.Status)
}

func TestDecideTwoManagersRequired(t *testing.T) {
	policy := ApproverPolicy{
		domain.ViolationDoubleBooking: {ApproverManager, ApproverManager},
	}

	o := pendingOverride(domain.ViolationDoubleBooking)

	require.NoError(t, Decide(o, manager(20), true, "", policy, decisionTime))
	assert.Equal(t, domain.OverridePending, o.Status, "策略要求两位管理者时一票不够")

	require.NoError(t, Decide(o, manager(21), true, "", policy, decisionTime))
	assert.Equal(t, domain.OverrideApproved, o.Status)
}

func TestDecideSingleDeclineIsTerminal(t *testing.T) {
	policy := ApproverPolicy{
		domain.ViolationCutoff: {ApproverAffectedStaff, ApproverManager},
	}

	o := pendingOverride(domain.ViolationCutoff)

	require.NoError(t, Decide(o, manager(20), false, "人手另有安排", policy, decisionTime))
	assert.Equal(t, domain.OverrideDeclined, o.Status)

	// 终态之后任何审批都被拒绝
	err := Decide(o, affectedStaff(), true, "", policy, decisionTime)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestDecideDuplicateApprover(t *testing.T) {
	policy := ApproverPolicy{
		domain.ViolationDoubleBooking: {ApproverManager, ApproverManager},
	}

	o := pendingOverride(domain.ViolationDoubleBooking)

	require.NoError(t, Decide(o, manager(20), true, "", policy, decisionTime))
	err := Decide(o, manager(20), true, "", policy, decisionTime)
	assert.Error(t, err)
	assert.Equal(t, domain.OverridePending, o.Status)
}

func TestActivate(t *testing.T) {
	o := pendingOverride(domain.ViolationCutoff)
	assert.ErrorIs(t, Activate(o), domain.ErrInvalidStateTransition)

	o.Status = domain.OverrideApproved
	require.NoError(t, Activate(o))
	assert.Equal(t, domain.OverrideActive, o.Status)

	// active 也是终态
	assert.ErrorIs(t, Activate(o), domain.ErrInvalidStateTransition)
}
