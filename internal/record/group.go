package record

import (
	"sort"

	"medzone/internal/barrio"
)

// Group 同一 barrio 标签下的记录
type Group struct {
	Label   string   `json:"label"`
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}

// 文档注释：按 barrio 标签分组
// 背景：公开目录页按街区展示医生列表；标签来自地址文本的启发式分类，与区域分配结果无关。
// 约束：分组顺序为关键词表顺序，其后是辖区与省份桶（按字母序），Otros 固定在最后；组内保持输入顺序。
func GroupByNeighborhood(records []Record) []Group {
	idx := map[string]int{}
	var groups []Group
	for _, r := range records {
		label := barrio.Classify(r.Address)
		i, ok := idx[label]
		if !ok {
			i = len(groups)
			idx[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Records = append(groups[i].Records, r)
		groups[i].Count++
	}
	order := map[string]int{}
	for i, l := range barrio.Labels() {
		order[l] = i
	}
	less := func(a, b string) bool {
		ia, oka := order[a]
		ib, okb := order[b]
		switch {
		case oka && okb:
			return ia < ib
		case oka != okb:
			return oka
		case a == barrio.Fallback || b == barrio.Fallback:
			return b == barrio.Fallback && a != b
		default:
			return a < b
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return less(groups[i].Label, groups[j].Label) })
	return groups
}
