package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

// AssignmentStore 是自动排班需要的最小存储接口，由 repository 实现
// CreateAssignment 自身就是一个小事务，触发 (shift_id, staff_id) 唯一约束时
// 必须返回 domain.ErrDuplicateAssignment
type AssignmentStore interface {
	GetShiftByID(id int64) (*domain.Shift, error)
	GetVenueByID(id int64) (*domain.Venue, error)
	GetVenueStaff(venueID int64) ([]*domain.StaffMember, error)
	GetMonthAvailability(year int32, month int32) (map[int64]*domain.Availability, error)
	GetShiftsByDate(date string) ([]*domain.Shift, error)
	GetAssignmentsByDate(date string) ([]*domain.ShiftAssignment, error)
	GetOverridesByShiftID(shiftID int64) ([]*domain.Override, error)
	CreateAssignment(sa *domain.ShiftAssignment) error
	ActivateOverride(id int64) error
}

const (
	ReasonNoEligibleCandidates = "没有符合条件的候选人"
	ReasonBartenderSlotsFull   = "调酒师名额已被占满"
)

type SlotFill struct {
	SlotKind domain.SlotKind `json:"slotKind"`
	Required int32           `json:"required"`
	Existing int32           `json:"existing"`
	Assigned int32           `json:"assigned"`
	Unfilled int32           `json:"unfilled"`
	Reason   string          `json:"reason,omitempty"`
}

type FillSummary struct {
	ShiftID  int64      `json:"shiftID"`
	Assigned int32      `json:"assigned"`
	Slots    []SlotFill `json:"slots"`
}

type AutoFiller struct {
	store  AssignmentStore
	policy RankPolicy
}

func NewAutoFiller(store AssignmentStore, policy RankPolicy) *AutoFiller {
	return &AutoFiller{
		store:  store,
		policy: policy,
	}
}

// LoadPoolInput 一次性加载构建候选池所需的快照
func LoadPoolInput(store AssignmentStore, shift *domain.Shift) (*PoolInput, error) {
	venue, err := store.GetVenueByID(shift.VenueID)
	if err != nil {
		return nil, err
	}

	staff, err := store.GetVenueStaff(shift.VenueID)
	if err != nil {
		return nil, err
	}

	date, err := parseDate(shift.Date)
	if err != nil {
		return nil, err
	}

	availability, err := store.GetMonthAvailability(int32(date.Year()), int32(date.Month()))
	if err != nil {
		return nil, err
	}

	sameDayShifts, err := store.GetShiftsByDate(shift.Date)
	if err != nil {
		return nil, err
	}

	sameDayAssignments, err := store.GetAssignmentsByDate(shift.Date)
	if err != nil {
		return nil, err
	}

	overrides, err := store.GetOverridesByShiftID(shift.ID)
	if err != nil {
		return nil, err
	}

	return &PoolInput{
		Shift:              shift,
		Venue:              venue,
		Staff:              staff,
		MonthAvailability:  availability,
		SameDayShifts:      sameDayShifts,
		SameDayAssignments: sameDayAssignments,
		Overrides:          overrides,
	}, nil
}

// AutoFill 按照 班长 -> 调酒师 -> 吧台助理 的固定顺序填满一个班次的空缺槽位
// 候选人严格按排序尝试，唯一约束冲突（被并发抢走）时跳过该候选人继续
// 候选人不足不算失败，调用总是返回一份填充摘要
func (f *AutoFiller) AutoFill(ctx context.Context, shiftID int64, asOf time.Time) (*FillSummary, error) {
	shift, err := f.store.GetShiftByID(shiftID)
	if err != nil {
		return nil, err
	}

	if shift.BartendersRequired < 0 || shift.BarbacksRequired < 0 || shift.LeadsRequired < 0 {
		return nil, fmt.Errorf("班次 %d 的人数要求不能为负数", shift.ID)
	}
	if shift.LeadsRequired > shift.BartendersRequired {
		return nil, fmt.Errorf("班次 %d 的班长人数不能超过调酒师人数", shift.ID)
	}

	in, err := LoadPoolInput(f.store, shift)
	if err != nil {
		return nil, err
	}

	// 统计当前已有的排班情况
	var leadCnt, bartenderCnt, barbackCnt int32
	assignedStaff := make(map[int64]bool)
	for _, sa := range in.SameDayAssignments {
		if sa.ShiftID != shift.ID {
			continue
		}
		assignedStaff[sa.StaffID] = true
		switch sa.SlotKind {
		case domain.SlotLead:
			leadCnt++
		case domain.SlotBartender:
			bartenderCnt++
		case domain.SlotBarback:
			barbackCnt++
		}
	}

	summary := &FillSummary{
		ShiftID: shift.ID,
		Slots:   make([]SlotFill, 0, 3),
	}

	for _, slot := range []domain.SlotKind{domain.SlotLead, domain.SlotBartender, domain.SlotBarback} {
		var required, existing, remaining int32
		capReason := ""

		switch slot {
		case domain.SlotLead:
			required = shift.LeadsRequired
			existing = leadCnt
			remaining = shift.LeadsRequired - leadCnt
			// 班长占用调酒师名额，调酒师名额满了就不能再补班长
			if capacity := shift.BartendersRequired - leadCnt - bartenderCnt; remaining > capacity {
				remaining = capacity
				capReason = ReasonBartenderSlotsFull
			}
		case domain.SlotBartender:
			required = shift.BartendersRequired - shift.LeadsRequired
			existing = bartenderCnt
			remaining = shift.BartendersRequired - leadCnt - bartenderCnt
		case domain.SlotBarback:
			required = shift.BarbacksRequired
			existing = barbackCnt
			remaining = shift.BarbacksRequired - barbackCnt
		}

		fill := SlotFill{
			SlotKind: slot,
			Required: required,
			Existing: existing,
		}

		if remaining < 0 {
			remaining = 0
		}

		if remaining > 0 {
			assigned, err := f.fillSlot(ctx, in, slot, remaining, assignedStaff, asOf)
			if err != nil {
				return nil, err
			}

			fill.Assigned = assigned
			summary.Assigned += assigned
			remaining -= assigned

			switch slot {
			case domain.SlotLead:
				leadCnt += assigned
			case domain.SlotBartender:
				bartenderCnt += assigned
			case domain.SlotBarback:
				barbackCnt += assigned
			}
		}

		if slot == domain.SlotLead {
			// 对外报告的班长缺口始终按 LeadsRequired 口径计算
			if unfilled := shift.LeadsRequired - leadCnt; unfilled > 0 {
				fill.Unfilled = unfilled
				fill.Reason = ReasonNoEligibleCandidates
				if capReason != "" {
					fill.Reason = capReason
				}
			}
		} else if remaining > 0 {
			fill.Unfilled = remaining
			fill.Reason = ReasonNoEligibleCandidates
		}

		summary.Slots = append(summary.Slots, fill)
	}

	return summary, nil
}

func (f *AutoFiller) fillSlot(ctx context.Context, in *PoolInput, slot domain.SlotKind, remaining int32, assignedStaff map[int64]bool, asOf time.Time) (int32, error) {
	pool, err := BuildPool(in, slot, asOf)
	if err != nil {
		return 0, err
	}

	ranked := Rank(pool.Eligible, in.Shift.VenueID, f.policy)

	var assigned int32
	for _, cand := range ranked {
		if remaining <= 0 {
			break
		}
		// 调用方的截止时间只在候选人之间生效，已提交的记录不会回滚
		if err := ctx.Err(); err != nil {
			return assigned, err
		}
		if assignedStaff[cand.Staff.ID] {
			continue
		}

		sa := &domain.ShiftAssignment{
			ShiftID:  in.Shift.ID,
			StaffID:  cand.Staff.ID,
			SlotKind: slot,
		}
		if err := f.store.CreateAssignment(sa); err != nil {
			if errors.Is(err, domain.ErrDuplicateAssignment) {
				// 被并发流程抢先指派，跳过该候选人，不做重试
				continue
			}
			return assigned, err
		}

		// 靠豁免入池的候选人被真正指派后，对应豁免进入 active 状态
		for _, overrideID := range cand.WaivedOverrideIDs {
			if err := f.store.ActivateOverride(overrideID); err != nil {
				return assigned, err
			}
		}

		assignedStaff[cand.Staff.ID] = true
		in.SameDayAssignments = append(in.SameDayAssignments, sa)
		assigned++
		remaining--
	}

	return assigned, nil
}

// CheckTradeReceiver 校验换班接收人是否具备接手该槽位的资格
// 硬性符合或者持有已批准/生效的豁免都算通过
func CheckTradeReceiver(in *PoolInput, slot domain.SlotKind, receiverID int64, asOf time.Time) error {
	pool, err := BuildPool(in, slot, asOf)
	if err != nil {
		return err
	}

	for _, cand := range pool.Eligible {
		if cand.Staff.ID == receiverID {
			return nil
		}
	}

	return errors.New("接收人不符合接手该班次的资格")
}
