package engine

import (
	"testing"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assignmentAt(id int64, createdAt time.Time) *domain.ShiftAssignment {
	return &domain.ShiftAssignment{
		ID:        id,
		ShiftID:   100,
		StaffID:   id,
		SlotKind:  domain.SlotBartender,
		CreatedAt: createdAt,
	}
}

func TestBaselineTipSplitEven(t *testing.T) {
	base := time.Date(2025, 7, 15, 23, 0, 0, 0, time.UTC)
	assignments := []*domain.ShiftAssignment{
		assignmentAt(1, base),
		assignmentAt(2, base.Add(time.Minute)),
		assignmentAt(3, base.Add(2*time.Minute)),
	}

	amounts, err := BaselineTipSplit(30000, assignments)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 10000, 2: 10000, 3: 10000}, amounts)
}

func TestBaselineTipSplitRemainderToEarliest(t *testing.T) {
	base := time.Date(2025, 7, 15, 23, 0, 0, 0, time.UTC)
	// 故意打乱输入顺序，零头必须按创建时间分给最早的记录
	assignments := []*domain.ShiftAssignment{
		assignmentAt(3, base.Add(2*time.Minute)),
		assignmentAt(1, base),
		assignmentAt(2, base.Add(time.Minute)),
	}

	amounts, err := BaselineTipSplit(100, assignments)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 34, 2: 33, 3: 33}, amounts)

	var total int64
	for _, amount := range amounts {
		total += amount
	}
	assert.Equal(t, int64(100), total)
}

func TestBaselineTipSplitCreatedAtTieBreakByID(t *testing.T) {
	at := time.Date(2025, 7, 15, 23, 0, 0, 0, time.UTC)
	assignments := []*domain.ShiftAssignment{
		assignmentAt(2, at),
		assignmentAt(1, at),
	}

	amounts, err := BaselineTipSplit(101, assignments)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 51, 2: 50}, amounts)
}

func TestBaselineTipSplitZeroTotal(t *testing.T) {
	amounts, err := BaselineTipSplit(0, []*domain.ShiftAssignment{assignmentAt(1, time.Now())})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 0}, amounts)
}

func TestBaselineTipSplitErrors(t *testing.T) {
	_, err := BaselineTipSplit(-1, []*domain.ShiftAssignment{assignmentAt(1, time.Now())})
	assert.Error(t, err)

	_, err = BaselineTipSplit(100, nil)
	assert.Error(t, err)
}
