package utils

import (
	"testing"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
)

func validShift() *domain.Shift {
	return &domain.Shift{
		VenueID:            1,
		Date:               "2025-07-15",
		StartTime:          "18:00:00",
		EndTime:            "23:00:00",
		BartendersRequired: 2,
		BarbacksRequired:   1,
		LeadsRequired:      1,
	}
}

func TestValidateShiftTimes(t *testing.T) {
	assert.NoError(t, ValidateShiftTimes(validShift()))

	shift := validShift()
	shift.Date = "2025/07/15"
	assert.Error(t, ValidateShiftTimes(shift))

	shift = validShift()
	shift.EndTime = "18:00:00"
	assert.Error(t, ValidateShiftTimes(shift))

	shift = validShift()
	shift.BarbacksRequired = -1
	assert.Error(t, ValidateShiftTimes(shift))

	shift = validShift()
	shift.LeadsRequired = 3
	assert.Error(t, ValidateShiftTimes(shift))
}

func TestValidateAvailabilityWindows(t *testing.T) {
	av := &domain.Availability{
		Year:  2025,
		Month: 7,
		Windows: []domain.AvailabilityWindow{
			{Day: 15, StartTime: "16:00:00", EndTime: "20:00:00"},
			{Day: 15, StartTime: "21:00:00", EndTime: "23:00:00"},
		},
	}
	assert.NoError(t, ValidateAvailabilityWindows(av))

	// 二月没有 30 号
	av.Month = 2
	av.Windows = []domain.AvailabilityWindow{{Day: 30, StartTime: "16:00:00", EndTime: "20:00:00"}}
	assert.Error(t, ValidateAvailabilityWindows(av))

	// 同一天的时段不允许重叠
	av.Month = 7
	av.Windows = []domain.AvailabilityWindow{
		{Day: 15, StartTime: "16:00:00", EndTime: "20:00:00"},
		{Day: 15, StartTime: "19:00:00", EndTime: "22:00:00"},
	}
	assert.Error(t, ValidateAvailabilityWindows(av))

	// 不同天允许相同时段
	av.Windows = []domain.AvailabilityWindow{
		{Day: 15, StartTime: "16:00:00", EndTime: "20:00:00"},
		{Day: 16, StartTime: "16:00:00", EndTime: "20:00:00"},
	}
	assert.NoError(t, ValidateAvailabilityWindows(av))
}

func TestValidateStaffRole(t *testing.T) {
	member := &domain.StaffMember{Role: domain.RoleBartender, IsLead: true}
	assert.NoError(t, ValidateStaffRole(member))

	member = &domain.StaffMember{Role: domain.RoleBarback, IsLead: true}
	assert.Error(t, ValidateStaffRole(member))

	member = &domain.StaffMember{Role: "服务员"}
	assert.Error(t, ValidateStaffRole(member))

	member = &domain.StaffMember{Role: domain.RoleBartender, HasDayJob: true, DayJobCutoff: "下午五点"}
	assert.Error(t, ValidateStaffRole(member))

	member = &domain.StaffMember{Role: domain.RoleBartender, HasDayJob: true, DayJobCutoff: "17:00:00"}
	assert.NoError(t, ValidateStaffRole(member))
}
