package domain

import "time"

type AvailabilityWindow struct {
	Day       int32  `json:"day"` // 当月第几天
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Availability 是一个员工在某个自然月内的空闲时间表
// 未锁定（未提交）的记录在提交截止日前视作没有数据，而不是视作全天有空
// 截止日过后按现状冻结生效
type Availability struct {
	ID        int64                `json:"id"`
	StaffID   int64                `json:"staffID"`
	Year      int32                `json:"year"`
	Month     int32                `json:"month"`
	Windows   []AvailabilityWindow `json:"windows"`
	IsLocked  bool                 `json:"isLocked"`
	CreatedAt time.Time            `json:"createdAt"`
	Version   int32                `json:"-"`
}
