package domain

import "time"

type Venue struct {
	ID                      int64     `json:"id"`
	Name                    string    `json:"name"`
	Priority                int32     `json:"priority"`
	AvailabilityDeadlineDay int32     `json:"availabilityDeadlineDay"` // 每月几号前必须提交空闲时间
	TipPoolEnabled          bool      `json:"tipPoolEnabled"`
	CreatedAt               time.Time `json:"createdAt"`
	Version                 int32     `json:"-"`
}
