package workflow

import (
	"errors"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

type ApproverKind string

const (
	// 被影响的员工本人（比如下班时间豁免必须本人点头）
	ApproverAffectedStaff ApproverKind = "affected_staff"
	// 任意管理岗，策略里出现几次就需要几位不同的管理者
	ApproverManager ApproverKind = "manager"
)

// ApproverPolicy 定义每种违规类型需要哪些审批人全部同意（逻辑与，不是多数票）
type ApproverPolicy map[domain.ViolationType][]ApproverKind

func DefaultApproverPolicy() ApproverPolicy {
	return ApproverPolicy{
		domain.ViolationCutoff:        {ApproverAffectedStaff},
		domain.ViolationDoubleBooking: {ApproverManager},
		domain.ViolationLeadShortage:  {ApproverManager},
	}
}

// CanDecide 判断某个员工是否属于该豁免的审批人集合
func CanDecide(o *domain.Override, staff *domain.StaffMember, policy ApproverPolicy) bool {
	for _, kind := range policy[o.Violation] {
		switch kind {
		case ApproverAffectedStaff:
			if staff.ID == o.StaffID {
				return true
			}
		case ApproverManager:
			if staff.Role.IsManagerial() {
				return true
			}
		}
	}
	return false
}

// Decide 记录一条审批并推导聚合状态
// 任何一票拒绝立刻进入 declined 终态；所有要求的审批人都同意后进入 approved
func Decide(o *domain.Override, approver *domain.StaffMember, approved bool, comment string, policy ApproverPolicy, at time.Time) error {
	if o.Status != domain.OverridePending {
		return domain.ErrInvalidStateTransition
	}
	if !CanDecide(o, approver, policy) {
		return errors.New("没有审批该豁免的权限")
	}
	for _, a := range o.Approvals {
		if a.ApproverID == approver.ID {
			return errors.New("不能重复审批")
		}
	}

	o.Approvals = append(o.Approvals, domain.OverrideApproval{
		OverrideID:   o.ID,
		ApproverID:   approver.ID,
		ApproverRole: approver.Role,
		Approved:     approved,
		Comment:      comment,
		CreatedAt:    at,
	})

	if !approved {
		o.Status = domain.OverrideDeclined
		return nil
	}

	if satisfied(o, policy) {
		o.Status = domain.OverrideApproved
	}

	return nil
}

// 要求的每一类审批人是否都已经同意
func satisfied(o *domain.Override, policy ApproverPolicy) bool {
	staffApproved := false
	managerApprovals := 0

	for _, a := range o.Approvals {
		if !a.Approved {
			return false
		}
		if a.ApproverID == o.StaffID {
			staffApproved = true
		}
		if a.ApproverRole.IsManagerial() {
			managerApprovals++
		}
	}

	for _, kind := range policy[o.Violation] {
		switch kind {
		case ApproverAffectedStaff:
			if !staffApproved {
				return false
			}
		case ApproverManager:
			if managerApprovals <= 0 {
				return false
			}
			managerApprovals--
		}
	}

	return true
}

// Activate 把已批准的豁免标记为正在生效
// declined 和 active 都是终态，之后任何流转都会被拒绝
func Activate(o *domain.Override) error {
	if o.Status != domain.OverrideApproved {
		return domain.ErrInvalidStateTransition
	}
	o.Status = domain.OverrideActive
	return nil
}
