package engine

import (
	"slices"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

// BuildPool 计算某个班次某类槽位的候选池
// 硬约束（角色不匹配、非在职、不在偏好门店、没有可用的空闲时间表）直接排除
// 软约束（下班时间、同日撞班）默认排除但记入 Blocked，存在已批准的豁免时放行
func BuildPool(in *PoolInput, slot domain.SlotKind, asOf time.Time) (*Pool, error) {
	shiftStart, err := parseClock(in.Shift.StartTime)
	if err != nil {
		return nil, err
	}
	shiftEnd, err := parseClock(in.Shift.EndTime)
	if err != nil {
		return nil, err
	}
	shiftDate, err := parseDate(in.Shift.Date)
	if err != nil {
		return nil, err
	}

	shiftsByID := make(map[int64]*domain.Shift, len(in.SameDayShifts))
	for _, s := range in.SameDayShifts {
		shiftsByID[s.ID] = s
	}

	pool := &Pool{
		Eligible: make([]*Candidate, 0),
		Blocked:  make([]*Blocked, 0),
	}

	for _, staff := range in.Staff {
		if staff.Role != slot.Role() {
			continue
		}
		if slot.IsLead() && !staff.IsLead {
			continue
		}
		if staff.Status != domain.StaffActive {
			continue
		}
		if !slices.Contains(staff.PreferredVenues, in.Shift.VenueID) {
			continue
		}

		if !availabilityCovers(in.MonthAvailability[staff.ID], in.Venue, shiftDate, shiftStart, shiftEnd, asOf) {
			continue
		}

		cand := &Candidate{Staff: staff}
		blockedBy := domain.ViolationType("")

		// 同日撞班检查
		if hasOverlappingAssignment(staff.ID, in, shiftsByID, shiftStart, shiftEnd) {
			if id, waived := waivedBy(in.Overrides, staff.ID, domain.ViolationDoubleBooking); waived {
				cand.WaivedOverrideIDs = append(cand.WaivedOverrideIDs, id)
			} else {
				blockedBy = domain.ViolationDoubleBooking
			}
		}

		// 白天有正职的员工，班次开始时间不能早于其下班时间
		if blockedBy == "" && staff.HasDayJob {
			cutoff, err := parseClock(staff.DayJobCutoff)
			if err != nil {
				return nil, err
			}
			if shiftStart.Before(cutoff) {
				if id, waived := waivedBy(in.Overrides, staff.ID, domain.ViolationCutoff); waived {
					cand.WaivedOverrideIDs = append(cand.WaivedOverrideIDs, id)
				} else {
					blockedBy = domain.ViolationCutoff
				}
			}
		}

		if blockedBy != "" {
			pool.Blocked = append(pool.Blocked, &Blocked{Staff: staff, Violation: blockedBy})
			continue
		}

		pool.Eligible = append(pool.Eligible, cand)
	}

	return pool, nil
}

// 空闲时间表是否覆盖整个班次时段
// 未提交（锁定）的表在提交截止日过后视作冻结生效，截止日前则视作没有数据
func availabilityCovers(av *domain.Availability, venue *domain.Venue, shiftDate, shiftStart, shiftEnd time.Time, asOf time.Time) bool {
	if av == nil {
		return false
	}

	if !av.IsLocked {
		deadline := monthDeadline(venue, shiftDate)
		if asOf.Before(deadline) {
			return false
		}
	}

	day := int32(shiftDate.Day())
	for _, w := range av.Windows {
		if w.Day != day {
			continue
		}
		wStart, err := parseClock(w.StartTime)
		if err != nil {
			continue
		}
		wEnd, err := parseClock(w.EndTime)
		if err != nil {
			continue
		}
		if !shiftStart.Before(wStart) && !shiftEnd.After(wEnd) {
			return true
		}
	}

	return false
}

// 某个月份的空闲时间提交截止时刻：上个月的第 AvailabilityDeadlineDay 天结束
func monthDeadline(venue *domain.Venue, shiftDate time.Time) time.Time {
	firstOfMonth := time.Date(shiftDate.Year(), shiftDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := firstOfMonth.AddDate(0, -1, 0)
	return time.Date(prev.Year(), prev.Month(), int(venue.AvailabilityDeadlineDay), 23, 59, 59, 0, time.UTC)
}

func hasOverlappingAssignment(staffID int64, in *PoolInput, shiftsByID map[int64]*domain.Shift, shiftStart, shiftEnd time.Time) bool {
	for _, sa := range in.SameDayAssignments {
		if sa.StaffID != staffID || sa.ShiftID == in.Shift.ID {
			continue
		}
		other, ok := shiftsByID[sa.ShiftID]
		if !ok {
			continue
		}
		otherStart, err := parseClock(other.StartTime)
		if err != nil {
			continue
		}
		otherEnd, err := parseClock(other.EndTime)
		if err != nil {
			continue
		}
		if clocksOverlap(shiftStart, shiftEnd, otherStart, otherEnd) {
			return true
		}
	}
	return false
}

func waivedBy(overrides []*domain.Override, staffID int64, violation domain.ViolationType) (int64, bool) {
	for _, o := range overrides {
		if o.StaffID == staffID && o.Waives(violation) {
			return o.ID, true
		}
	}
	return 0, false
}
