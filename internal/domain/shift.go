package domain

import "time"

type Shift struct {
	ID                 int64      `json:"id"`
	VenueID            int64      `json:"venueID"`
	Date               string     `json:"date"`      // "2006-01-02"
	StartTime          string     `json:"startTime"` // "15:04:05"
	EndTime            string     `json:"endTime"`
	BartendersRequired int32      `json:"bartendersRequired"`
	BarbacksRequired   int32      `json:"barbacksRequired"`
	LeadsRequired      int32      `json:"leadsRequired"` // 班长占用调酒师名额，因此不能大于 BartendersRequired
	TipsPublished      bool       `json:"tipsPublished"`
	TipsPublishedBy    *int64     `json:"tipsPublishedBy"`
	TipsPublishedAt    *time.Time `json:"tipsPublishedAt"`
	CreatedAt          time.Time  `json:"createdAt"`
	Version            int32      `json:"-"`
}

type SlotKind string

const (
	SlotLead      SlotKind = "lead"
	SlotBartender SlotKind = "bartender"
	SlotBarback   SlotKind = "barback"
)

// 槽位对应的员工角色，班长槽位也由调酒师担任
func (k SlotKind) Role() Role {
	if k == SlotBarback {
		return RoleBarback
	}
	return RoleBartender
}

func (k SlotKind) IsLead() bool {
	return k == SlotLead
}

func (k SlotKind) Valid() bool {
	return k == SlotLead || k == SlotBartender || k == SlotBarback
}

// ShiftAssignment 把一个员工和一个班次绑定起来
// (shift_id, staff_id) 上有唯一约束，同一员工不可能在同一班次出现两条记录
type ShiftAssignment struct {
	ID        int64     `json:"id"`
	ShiftID   int64     `json:"shiftID"`
	StaffID   int64     `json:"staffID"`
	SlotKind  SlotKind  `json:"slotKind"`
	TipAmount *int64    `json:"tipAmount"` // 单位为分，小费发布后才会填入
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
