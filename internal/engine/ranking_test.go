package engine

import (
	"testing"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
)

func candidate(id int64, name string, isLead bool, rankings map[int64]int32) *Candidate {
	s := testStaff(id, name, domain.RoleBartender)
	s.IsLead = isLead
	if rankings != nil {
		s.VenueRankings = rankings
	}
	return &Candidate{Staff: s}
}

func rankedIDs(candidates []*Candidate) []int64 {
	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Staff.ID)
	}
	return ids
}

func TestRankExplicitRankingsFirst(t *testing.T) {
	candidates := []*Candidate{
		candidate(1, "张伟", false, nil),
		candidate(2, "李强", false, map[int64]int32{1: 2}),
		candidate(3, "王芳", true, map[int64]int32{1: 1}),
	}

	ranked := Rank(candidates, 1, DefaultRankPolicy())
	assert.Equal(t, []int64{3, 2, 1}, rankedIDs(ranked))
}

func TestRankUnrankedLeadsFirstThenName(t *testing.T) {
	candidates := []*Candidate{
		candidate(1, "王芳", false, nil),
		candidate(2, "李强", false, nil),
		candidate(3, "张伟", true, nil),
	}

	ranked := Rank(candidates, 1, DefaultRankPolicy())
	// 班长优先，其余按姓名升序
	assert.Equal(t, []int64{3, 2, 1}, rankedIDs(ranked))
}

func TestRankPolicyDisabled(t *testing.T) {
	candidates := []*Candidate{
		candidate(2, "李强", false, nil),
		candidate(1, "王芳", true, nil),
	}

	ranked := Rank(candidates, 1, RankPolicy{})
	// 策略关闭后只按员工 ID 兜底
	assert.Equal(t, []int64{1, 2}, rankedIDs(ranked))
}

func TestRankTieBreakByID(t *testing.T) {
	candidates := []*Candidate{
		candidate(5, "张伟", false, map[int64]int32{1: 3}),
		candidate(2, "张伟", false, map[int64]int32{1: 3}),
	}

	ranked := Rank(candidates, 1, DefaultRankPolicy())
	assert.Equal(t, []int64{2, 5}, rankedIDs(ranked))
}

func TestRankOtherVenueRankingIgnored(t *testing.T) {
	candidates := []*Candidate{
		candidate(1, "张伟", false, map[int64]int32{2: 1}),
		candidate(2, "李强", false, nil),
	}

	ranked := Rank(candidates, 1, DefaultRankPolicy())
	// 别的门店给的优先级在本门店不生效，按姓名排序
	assert.Equal(t, []int64{1, 2}, rankedIDs(ranked))
}

func TestRankDoesNotMutateInput(t *testing.T) {
	candidates := []*Candidate{
		candidate(2, "李强", false, nil),
		candidate(1, "王芳", false, nil),
	}

	_ = Rank(candidates, 1, DefaultRankPolicy())
	assert.Equal(t, []int64{2, 1}, rankedIDs(candidates))
}
