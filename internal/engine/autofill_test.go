package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore 用内存数据实现 AssignmentStore
type mockStore struct {
	shift        *domain.Shift
	venue        *domain.Venue
	staff        []*domain.StaffMember
	availability map[int64]*domain.Availability
	shifts       []*domain.Shift
	assignments  []*domain.ShiftAssignment
	overrides    []*domain.Override

	nextAssignmentID int64
	activated        []int64
	duplicateFor     map[int64]bool // 模拟被并发流程抢先的员工
}

func newMockStore(staff ...*domain.StaffMember) *mockStore {
	in := testInput(staff...)
	return &mockStore{
		shift:            in.Shift,
		venue:            in.Venue,
		staff:            in.Staff,
		availability:     in.MonthAvailability,
		shifts:           in.SameDayShifts,
		assignments:      make([]*domain.ShiftAssignment, 0),
		overrides:        make([]*domain.Override, 0),
		nextAssignmentID: 1,
		duplicateFor:     make(map[int64]bool),
	}
}

func (m *mockStore) GetShiftByID(id int64) (*domain.Shift, error) {
	for _, s := range m.shifts {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("班次 %d 不存在", id)
}

func (m *mockStore) GetVenueByID(id int64) (*domain.Venue, error) {
	if id != m.venue.ID {
		return nil, fmt.Errorf("门店 %d 不存在", id)
	}
	return m.venue, nil
}

func (m *mockStore) GetVenueStaff(venueID int64) ([]*domain.StaffMember, error) {
	return m.staff, nil
}

func (m *mockStore) GetMonthAvailability(year int32, month int32) (map[int64]*domain.Availability, error) {
	return m.availability, nil
}

func (m *mockStore) GetShiftsByDate(date string) ([]*domain.Shift, error) {
	return m.shifts, nil
}

func (m *mockStore) GetAssignmentsByDate(date string) ([]*domain.ShiftAssignment, error) {
	return m.assignments, nil
}

func (m *mockStore) GetOverridesByShiftID(shiftID int64) ([]*domain.Override, error) {
	return m.overrides, nil
}

func (m *mockStore) CreateAssignment(sa *domain.ShiftAssignment) error {
	if m.duplicateFor[sa.StaffID] {
		return domain.ErrDuplicateAssignment
	}
	for _, existing := range m.assignments {
		if existing.ShiftID == sa.ShiftID && existing.StaffID == sa.StaffID {
			return domain.ErrDuplicateAssignment
		}
	}

	sa.ID = m.nextAssignmentID
	m.nextAssignmentID++
	sa.CreatedAt = time.Now()
	m.assignments = append(m.assignments, sa)
	return nil
}

func (m *mockStore) ActivateOverride(id int64) error {
	m.activated = append(m.activated, id)
	return nil
}

func (m *mockStore) slotOf(staffID int64) domain.SlotKind {
	for _, sa := range m.assignments {
		if sa.StaffID == staffID && sa.ShiftID == m.shift.ID {
			return sa.SlotKind
		}
	}
	return ""
}

func slotSummary(t *testing.T, summary *FillSummary, slot domain.SlotKind) SlotFill {
	t.Helper()
	for _, fill := range summary.Slots {
		if fill.SlotKind == slot {
			return fill
		}
	}
	t.Fatalf("摘要中没有 %s 槽位", slot)
	return SlotFill{}
}

func TestAutoFillFullShift(t *testing.T) {
	alice := testStaff(1, "张伟", domain.RoleBartender)
	alice.IsLead = true
	bob := testStaff(2, "李强", domain.RoleBartender)
	cara := testStaff(3, "王芳", domain.RoleBarback)

	store := newMockStore(alice, bob, cara)
	filler := NewAutoFiller(store, DefaultRankPolicy())

	summary, err := filler.AutoFill(context.Background(), 100, testAsOf)
	require.NoError(t, err)

	assert.Equal(t, int32(3), summary.Assigned)
	assert.Equal(t, domain.SlotLead, store.slotOf(alice.ID))
	assert.Equal(t, domain.SlotBartender, store.slotOf(bob.ID))
	assert.Equal(t, domain.SlotBarback, store.slotOf(cara.ID))

	for _, fill := range summary.Slots {
		assert.Zero(t, fill.Unfilled, "%s 槽位不应有缺口", fill.SlotKind)
	}
}

func TestAutoFillPartialWithoutBarback(t *testing.T) {
	alice := testStaff(1, "张伟", domain.RoleBartender)
	alice.IsLead = true
	bob := testStaff(2, "李强", domain.RoleBartender)

	store := newMockStore(alice, bob)
	filler := NewAutoFiller(store, DefaultRankPolicy())

	summary, err := filler.AutoFill(context.Background(), 100, testAsOf)
	require.NoError(t, err)

	assert.Equal(t, int32(2), summary.Assigned)

	barback := slotSummary(t, summary, domain.SlotBarback)
	assert.Equal(t, int32(1), barback.Unfilled)
	assert.Equal(t, ReasonNoEligibleCandidates, barback.Reason)
}

func TestAutoFillIdempotent(t *testing.T) {
	alice := testStaff(1, "张伟", domain.RoleBartender)
	alice.IsLead = true
	bob := testStaff(2, "李强", domain.RoleBartender)
	cara := testStaff(3, "王芳", domain.RoleBarback)

	store := newMockStore(alice, bob, cara)
	filler := NewAutoFiller(store, DefaultRankPolicy())

	first, err := filler.AutoFill(context.Background(), 100, testAsOf)
	require.NoError(t, err)
	require.Equal(t, int32(3), first.Assigned)

	// 重复执行不会产生新的排班记录
	second, err := filler.AutoFill(context.Background(), 100, testAsOf)
	require.NoError(t, err)
	assert.Zero(t, second.Assigned)
	assert.Len(t, store.assignments, 3)
}

func TestAutoFillSkipsDuplicateAndTriesNext(t *testing.T) {
	alice := testStaff(1, "张伟", domain.RoleBartender)
	bob := testStaff(2, "李强", domain.RoleBartender)
	store := newMockStore(alice, bob)
	store.shift.LeadsRequired = 0
	store.shift.BartendersRequired = 1
	store.shift.BarbacksRequired = 0

	// 排序靠前的张伟被并发流程抢走，顺延到李强
	store.duplicateFor[alice.ID] = true

	filler := NewAutoFiller(store, DefaultRankPolicy())
	summary, err := filler.AutoFill(context.Background(), 100, testAsOf)
	require.NoError(t, err)

	assert.Equal(t, int32(1), summary.Assigned)
	assert.Equal(t, domain.SlotBartender, store.slotOf(bob.ID))
}

func TestAutoFillActivatesWaivedOverride(t *testing.T) {
	dana := testStaff(1, "赵敏", domain.RoleBartender)
	dana.HasDayJob = true
	dana.DayJobCutoff = "20:00:00"

	store := newMockStore(dana)
	store.shift.LeadsRequired = 0
	store.shift.BartendersRequired = 1
	store.shift.BarbacksRequired = 0

	filler := NewAutoFiller(store, DefaultRankPolicy())

	// 没有豁免时赵敏被下班时间挡住
	summary, err := filler.AutoFill(context.Background(), 100, testAsOf)
	require.NoError(t, err)
	assert.Zero(t, summary.Assigned)

	// 豁免批准后重跑，指派成功且豁免转为生效
	store.overrides = []*domain.Override{
		{ID: 7, ShiftID: 100, StaffID: dana.ID, Violation: domain.ViolationCutoff, Status: domain.OverrideApproved},
	}
	summary, err = filler.AutoFill(context.Background(), 100, testAsOf)
	require.NoError(t, err)
	assert.Equal(t, int32(1), summary.Assigned)
	assert.Equal(t, []int64{7}, store.activated)
}

func TestAutoFillLeadCappedByBartenderCapacity(t *testing.T) {
	lead := testStaff(1, "张伟", domain.RoleBartender)
	lead.IsLead = true
	bob := testStaff(2, "李强", domain.RoleBartender)

	store := newMockStore(lead, bob)
	store.shift.LeadsRequired = 1
	store.shift.BartendersRequired = 1
	store.shift.BarbacksRequired = 0

	// 调酒师名额已被手工指派占满
	require.NoError(t, store.CreateAssignment(&domain.ShiftAssignment{
		ShiftID: 100, StaffID: bob.ID, SlotKind: domain.SlotBartender,
	}))

	filler := NewAutoFiller(store, DefaultRankPolicy())
	summary, err := filler.AutoFill(context.Background(), 100, testAsOf)
	require.NoError(t, err)

	assert.Zero(t, summary.Assigned)
	leadFill := slotSummary(t, summary, domain.SlotLead)
	assert.Equal(t, int32(1), leadFill.Unfilled)
	assert.Equal(t, ReasonBartenderSlotsFull, leadFill.Reason)
}

func TestAutoFillRejectsInvalidRequirements(t *testing.T) {
	store := newMockStore(testStaff(1, "张伟", domain.RoleBartender))
	filler := NewAutoFiller(store, DefaultRankPolicy())

	store.shift.BartendersRequired = -1
	_, err := filler.AutoFill(context.Background(), 100, testAsOf)
	assert.Error(t, err)

	store.shift.BartendersRequired = 1
	store.shift.LeadsRequired = 2
	_, err = filler.AutoFill(context.Background(), 100, testAsOf)
	assert.Error(t, err)
}

func TestAutoFillStopsOnCancelledContext(t *testing.T) {
	alice := testStaff(1, "张伟", domain.RoleBartender)
	alice.IsLead = true

	store := newMockStore(alice)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	filler := NewAutoFiller(store, DefaultRankPolicy())
	_, err := filler.AutoFill(ctx, 100, testAsOf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.assignments)
}

func TestCheckTradeReceiver(t *testing.T) {
	receiver := testStaff(1, "张伟", domain.RoleBartender)
	barback := testStaff(2, "李强", domain.RoleBarback)

	in := testInput(receiver, barback)

	assert.NoError(t, CheckTradeReceiver(in, domain.SlotBartender, receiver.ID, testAsOf))
	// 吧台助理不能接手调酒师槽位
	assert.Error(t, CheckTradeReceiver(in, domain.SlotBartender, barback.ID, testAsOf))
	// 普通调酒师不能接手班长槽位
	assert.Error(t, CheckTradeReceiver(in, domain.SlotLead, receiver.ID, testAsOf))
}
