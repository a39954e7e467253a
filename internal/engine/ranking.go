package engine

import (
	"sort"
)

// RankPolicy 决定没有显式优先级的候选人之间如何排序
// 默认先班长后普通、再按姓名升序，这是门店惯用的口径，但允许按门店调整
type RankPolicy struct {
	LeadsFirst bool
	ByName     bool
}

func DefaultRankPolicy() RankPolicy {
	return RankPolicy{
		LeadsFirst: true,
		ByName:     true,
	}
}

// Rank 对候选池做全序排序：
// 有显式优先级的在前（数字越小越靠前），没有的按策略排在后面
// 最终用员工 ID 兜底，保证同一快照下排序完全确定
func Rank(candidates []*Candidate, venueID int64, policy RankPolicy) []*Candidate {
	ranked := make([]*Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Staff, ranked[j].Staff

		ra, aOK := a.VenueRankings[venueID]
		rb, bOK := b.VenueRankings[venueID]

		switch {
		case aOK && bOK:
			if ra != rb {
				return ra < rb
			}
		case aOK:
			return true
		case bOK:
			return false
		default:
			if policy.LeadsFirst && a.IsLead != b.IsLead {
				return a.IsLead
			}
			if policy.ByName && a.FullName != b.FullName {
				return a.FullName < b.FullName
			}
		}

		return a.ID < b.ID
	})

	return ranked
}
