package engine

import (
	"fmt"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

// Candidate 是资格过滤的输出，WaivedOverrideIDs 记录让该候选人得以入池的豁免
type Candidate struct {
	Staff             *domain.StaffMember
	WaivedOverrideIDs []int64
}

// Blocked 记录因软约束被挡在池外、但可以通过豁免放行的候选人
type Blocked struct {
	Staff     *domain.StaffMember
	Violation domain.ViolationType
}

type Pool struct {
	Eligible []*Candidate
	Blocked  []*Blocked
}

// PoolInput 是构建候选池所需的数据快照，由调用方一次性加载
type PoolInput struct {
	Shift              *domain.Shift
	Venue              *domain.Venue
	Staff              []*domain.StaffMember
	MonthAvailability  map[int64]*domain.Availability // staffID -> 班次所在月份的空闲时间表
	SameDayShifts      []*domain.Shift                // 与班次同一天的所有班次（含本班次）
	SameDayAssignments []*domain.ShiftAssignment
	Overrides          []*domain.Override // 本班次相关的豁免
}

const (
	layoutDate  = "2006-01-02"
	layoutClock = "15:04:05"
)

func parseClock(s string) (time.Time, error) {
	t, err := time.Parse(layoutClock, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("时间 %q 格式错误", s)
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(layoutDate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期 %q 格式错误", s)
	}
	return t, nil
}

// 两个同一天内的时间段是否重叠（首尾相接不算重叠）
func clocksOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
