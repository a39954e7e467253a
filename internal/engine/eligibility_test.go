package engine

import (
	"testing"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVenue() *domain.Venue {
	return &domain.Venue{
		ID:                      1,
		Name:                    "醉月酒吧",
		Priority:                1,
		AvailabilityDeadlineDay: 25,
	}
}

func testShift() *domain.Shift {
	return &domain.Shift{
		ID:                 100,
		VenueID:            1,
		Date:               "2025-07-15",
		StartTime:          "18:00:00",
		EndTime:            "23:00:00",
		BartendersRequired: 2,
		BarbacksRequired:   1,
		LeadsRequired:      1,
	}
}

func testStaff(id int64, name string, role domain.Role) *domain.StaffMember {
	return &domain.StaffMember{
		ID:              id,
		Username:        name,
		FullName:        name,
		Role:            role,
		Status:          domain.StaffActive,
		PreferredVenues: []int64{1},
		VenueRankings:   map[int64]int32{},
	}
}

func fullMonthAvailability(staffID int64) *domain.Availability {
	av := &domain.Availability{
		StaffID:  staffID,
		Year:     2025,
		Month:    7,
		IsLocked: true,
		Windows:  make([]domain.AvailabilityWindow, 0),
	}
	for day := int32(1); day <= 31; day++ {
		av.Windows = append(av.Windows, domain.AvailabilityWindow{
			Day:       day,
			StartTime: "16:00:00",
			EndTime:   "23:59:59",
		})
	}
	return av
}

func testInput(staff ...*domain.StaffMember) *PoolInput {
	avail := make(map[int64]*domain.Availability, len(staff))
	for _, s := range staff {
		avail[s.ID] = fullMonthAvailability(s.ID)
	}
	shift := testShift()
	return &PoolInput{
		Shift:              shift,
		Venue:              testVenue(),
		Staff:              staff,
		MonthAvailability:  avail,
		SameDayShifts:      []*domain.Shift{shift},
		SameDayAssignments: make([]*domain.ShiftAssignment, 0),
		Overrides:          make([]*domain.Override, 0),
	}
}

var testAsOf = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func eligibleIDs(pool *Pool) []int64 {
	ids := make([]int64, 0, len(pool.Eligible))
	for _, c := range pool.Eligible {
		ids = append(ids, c.Staff.ID)
	}
	return ids
}

func TestBuildPoolHardFilters(t *testing.T) {
	bartender := testStaff(1, "张伟", domain.RoleBartender)
	barback := testStaff(2, "李强", domain.RoleBarback)
	inactive := testStaff(3, "王芳", domain.RoleBartender)
	inactive.Status = domain.StaffInactive
	otherVenue := testStaff(4, "刘敏", domain.RoleBartender)
	otherVenue.PreferredVenues = []int64{2}
	manager := testStaff(5, "陈静", domain.RoleManager)

	in := testInput(bartender, barback, inactive, otherVenue, manager)

	pool, err := BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, eligibleIDs(pool))
	assert.Empty(t, pool.Blocked)
}

func TestBuildPoolLeadSlotRequiresLeadFlag(t *testing.T) {
	lead := testStaff(1, "张伟", domain.RoleBartender)
	lead.IsLead = true
	plain := testStaff(2, "李强", domain.RoleBartender)

	in := testInput(lead, plain)

	pool, err := BuildPool(in, domain.SlotLead, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, eligibleIDs(pool))

	// 班长也可以竞争普通调酒师槽位
	pool, err = BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, eligibleIDs(pool))
}

func TestBuildPoolAvailability(t *testing.T) {
	missing := testStaff(1, "张伟", domain.RoleBartender)
	partial := testStaff(2, "李强", domain.RoleBartender)
	covered := testStaff(3, "王芳", domain.RoleBartender)

	in := testInput(partial, covered)
	in.Staff = append(in.Staff, missing)
	delete(in.MonthAvailability, missing.ID)

	// 时段只覆盖了班次的一部分
	in.MonthAvailability[partial.ID].Windows = []domain.AvailabilityWindow{
		{Day: 15, StartTime: "18:00:00", EndTime: "21:00:00"},
	}

	pool, err := BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, eligibleIDs(pool))
}

func TestBuildPoolUnlockedAvailability(t *testing.T) {
	s := testStaff(1, "张伟", domain.RoleBartender)
	in := testInput(s)
	in.MonthAvailability[s.ID].IsLocked = false

	// 截止日（6 月 25 日）之前，未锁定的表视作没有数据
	before := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	pool, err := BuildPool(in, domain.SlotBartender, before)
	require.NoError(t, err)
	assert.Empty(t, pool.Eligible)

	// 截止日之后冻结生效
	after := time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)
	pool, err = BuildPool(in, domain.SlotBartender, after)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, eligibleIDs(pool))
}

func TestBuildPoolCutoff(t *testing.T) {
	s := testStaff(1, "张伟", domain.RoleBartender)
	s.HasDayJob = true
	s.DayJobCutoff = "19:00:00"

	in := testInput(s)

	pool, err := BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)
	require.Len(t, pool.Blocked, 1)
	assert.Equal(t, domain.ViolationCutoff, pool.Blocked[0].Violation)
	assert.Empty(t, pool.Eligible)

	// 已批准的豁免放行，候选人记下豁免 ID
	in.Overrides = []*domain.Override{
		{ID: 7, ShiftID: 100, StaffID: 1, Violation: domain.ViolationCutoff, Status: domain.OverrideApproved},
	}
	pool, err = BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)
	require.Len(t, pool.Eligible, 1)
	assert.Equal(t, []int64{7}, pool.Eligible[0].WaivedOverrideIDs)

	// 下班时间早于班次开始时间则不构成违规
	s.DayJobCutoff = "17:00:00"
	in.Overrides = nil
	pool, err = BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, eligibleIDs(pool))
}

func TestBuildPoolDoubleBooking(t *testing.T) {
	s := testStaff(1, "张伟", domain.RoleBartender)
	in := testInput(s)

	other := &domain.Shift{
		ID:        101,
		VenueID:   1,
		Date:      "2025-07-15",
		StartTime: "20:00:00",
		EndTime:   "23:59:00",
	}
	in.SameDayShifts = append(in.SameDayShifts, other)
	in.SameDayAssignments = append(in.SameDayAssignments, &domain.ShiftAssignment{
		ID: 1, ShiftID: 101, StaffID: 1, SlotKind: domain.SlotBartender,
	})

	pool, err := BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)
	require.Len(t, pool.Blocked, 1)
	assert.Equal(t, domain.ViolationDoubleBooking, pool.Blocked[0].Violation)

	// 不重叠的同日班次不算撞班
	other.StartTime = "23:00:00"
	pool, err = BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, eligibleIDs(pool))

	// 生效中的豁免同样放行
	other.StartTime = "20:00:00"
	in.Overrides = []*domain.Override{
		{ID: 9, ShiftID: 100, StaffID: 1, Violation: domain.ViolationDoubleBooking, Status: domain.OverrideActive},
	}
	pool, err = BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)
	require.Len(t, pool.Eligible, 1)
	assert.Equal(t, []int64{9}, pool.Eligible[0].WaivedOverrideIDs)
}

func TestBuildPoolPendingOverrideDoesNotWaive(t *testing.T) {
	s := testStaff(1, "张伟", domain.RoleBartender)
	s.HasDayJob = true
	s.DayJobCutoff = "20:00:00"

	in := testInput(s)
	in.Overrides = []*domain.Override{
		{ID: 7, ShiftID: 100, StaffID: 1, Violation: domain.ViolationCutoff, Status: domain.OverridePending},
	}

	pool, err := BuildPool(in, domain.SlotBartender, testAsOf)
	require.NoError(t, err)
	assert.Empty(t, pool.Eligible)
	require.Len(t, pool.Blocked, 1)
	assert.Equal(t, domain.ViolationCutoff, pool.Blocked[0].Violation)
}
