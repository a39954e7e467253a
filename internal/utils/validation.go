package utils

import (
	"fmt"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

func ValidateShiftTimes(shift *domain.Shift) error {
	if _, err := time.Parse("2006-01-02", shift.Date); err != nil {
		return fmt.Errorf("班次日期 %q 格式错误", shift.Date)
	}

	startTime, err := time.Parse("15:04:05", shift.StartTime)
	if err != nil {
		return fmt.Errorf("班次开始时间 %q 格式错误", shift.StartTime)
	}
	endTime, err := time.Parse("15:04:05", shift.EndTime)
	if err != nil {
		return fmt.Errorf("班次结束时间 %q 格式错误", shift.EndTime)
	}
	if !endTime.After(startTime) {
		return fmt.Errorf("班次结束时间必须晚于开始时间")
	}

	if shift.BartendersRequired < 0 || shift.BarbacksRequired < 0 || shift.LeadsRequired < 0 {
		return fmt.Errorf("班次人数要求不能为负数")
	}
	if shift.LeadsRequired > shift.BartendersRequired {
		return fmt.Errorf("班长人数不能超过调酒师人数")
	}

	return nil
}

func ValidateAvailabilityWindows(av *domain.Availability) error {
	if av.Month < 1 || av.Month > 12 {
		return fmt.Errorf("月份 %d 不合法", av.Month)
	}

	daysInMonth := time.Date(int(av.Year), time.Month(av.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()

	for i, w := range av.Windows {
		if w.Day < 1 || int(w.Day) > daysInMonth {
			return fmt.Errorf("第 %d 个时段的日期 %d 超出了当月范围", i+1, w.Day)
		}

		startTime, err := time.Parse("15:04:05", w.StartTime)
		if err != nil {
			return fmt.Errorf("第 %d 个时段的开始时间格式错误", i+1)
		}
		endTime, err := time.Parse("15:04:05", w.EndTime)
		if err != nil {
			return fmt.Errorf("第 %d 个时段的结束时间格式错误", i+1)
		}
		if !endTime.After(startTime) {
			return fmt.Errorf("第 %d 个时段的结束时间必须晚于开始时间", i+1)
		}
	}

	// 同一天内的时段不允许互相重叠
	for i := 0; i < len(av.Windows); i++ {
		iStart, _ := time.Parse("15:04:05", av.Windows[i].StartTime)
		iEnd, _ := time.Parse("15:04:05", av.Windows[i].EndTime)

		for j := i + 1; j < len(av.Windows); j++ {
			if av.Windows[i].Day != av.Windows[j].Day {
				continue
			}
			jStart, _ := time.Parse("15:04:05", av.Windows[j].StartTime)
			jEnd, _ := time.Parse("15:04:05", av.Windows[j].EndTime)

			if iStart.Before(jEnd) && jStart.Before(iEnd) {
				return fmt.Errorf("第 %d 个时段和第 %d 个时段重叠", i+1, j+1)
			}
		}
	}

	return nil
}

// 员工角色与能力标记的组合检查：只有调酒师可以带班长标记
func ValidateStaffRole(member *domain.StaffMember) error {
	switch member.Role {
	case domain.RoleBartender, domain.RoleBarback, domain.RoleManager, domain.RoleGeneralManager, domain.RoleSuperAdmin:
	default:
		return fmt.Errorf("未知的员工角色 %q", member.Role)
	}

	if member.IsLead && member.Role != domain.RoleBartender {
		return fmt.Errorf("只有调酒师可以被标记为班长")
	}

	if member.HasDayJob {
		if _, err := time.Parse("15:04:05", member.DayJobCutoff); err != nil {
			return fmt.Errorf("下班时间 %q 格式错误", member.DayJobCutoff)
		}
	}

	return nil
}
