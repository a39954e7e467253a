package domain

import "errors"

var (
	// 在终态（或不允许的状态）上尝试流转时返回
	ErrInvalidStateTransition = errors.New("非法的状态流转")
	// 换班审批时发现发起人已经不再持有这条排班记录
	ErrStaleTrade = errors.New("换班对应的排班记录已失效")
	// (shift_id, staff_id) 唯一约束被触发
	ErrDuplicateAssignment = errors.New("该员工已被指派到此班次")
)
