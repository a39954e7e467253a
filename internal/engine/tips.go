package engine

import (
	"errors"
	"sort"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

// BaselineTipSplit 把小费池总额（单位为分）平均分给班次的最终名单
// 除不尽的零头按排班记录创建顺序逐条多分一分，保证合计正好等于总额
// 这只是发放前的参考基准，实际发放金额允许事后人工调整
func BaselineTipSplit(total int64, assignments []*domain.ShiftAssignment) (map[int64]int64, error) {
	if total < 0 {
		return nil, errors.New("小费总额不能为负数")
	}
	if len(assignments) == 0 {
		return nil, errors.New("班次没有任何排班记录")
	}

	ordered := make([]*domain.ShiftAssignment, len(assignments))
	copy(ordered, assignments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	n := int64(len(ordered))
	base := total / n
	remainder := total % n

	amounts := make(map[int64]int64, len(ordered))
	for i, sa := range ordered {
		amount := base
		if int64(i) < remainder {
			amount++
		}
		amounts[sa.ID] = amount
	}

	return amounts, nil
}
