package domain

import (
	"time"
)

type Role string

const (
	RoleBartender      Role = "调酒师"
	RoleBarback        Role = "吧台助理"
	RoleManager        Role = "门店经理"
	RoleGeneralManager Role = "总经理"
	RoleSuperAdmin     Role = "超级管理员"
)

// 是否属于管理岗（换班审批、排班覆盖审批等都需要管理岗）
func (r Role) IsManagerial() bool {
	return r == RoleManager || r == RoleGeneralManager || r == RoleSuperAdmin
}

type StaffStatus string

const (
	StaffActive   StaffStatus = "在职"
	StaffInactive StaffStatus = "已离职"
	StaffPending  StaffStatus = "待入职"
)

type StaffMember struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	FullName     string      `json:"fullName"`
	Email        string      `json:"email"`
	Role         Role        `json:"role"`
	IsLead       bool        `json:"isLead"` // 能力标记，仅调酒师可以为 true
	HasDayJob    bool        `json:"hasDayJob"`
	DayJobCutoff string      `json:"dayJobCutoff"` // "15:04:05"，HasDayJob 为 false 时为空
	Status       StaffStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	Version      int32       `json:"-"`

	// PreferredVenues 是有序的，顺序即员工自己的偏好顺序；出现在列表中即表示可以在该门店工作
	PreferredVenues []int64 `json:"preferredVenues"`
	// VenueRankings 是门店对员工的显式优先级，数字越小优先级越高
	VenueRankings map[int64]int32 `json:"venueRankings"`
}
