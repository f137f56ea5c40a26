package assignment

import "sort"

// Select 在一个类别内挑选负载率最低的可行 section
//
// 规则：
//   - 只考虑 capacities 中存在的候选，重复候选只计一次
//   - count >= capacity+1 的候选不可选（最多软超额 1 人）
//   - 负载率 count/capacity 最小者胜出
//   - 负载率完全相同时，以 hash%997 作为平局键：对并列候选按名称排序后取第 key%len 个，
//     因此结果只取决于学号哈希与候选集合，与提交顺序无关
//
// 候选为空或全部不可选时返回 ("", false)。
func Select(options []string, counts, capacities map[string]int, hash int) (string, bool) {
	if len(options) == 0 {
		return "", false
	}

	seen := make(map[string]struct{}, len(options))
	var (
		tied              []string
		bestCount, bestCp int
	)
	for _, opt := range options {
		if _, dup := seen[opt]; dup {
			continue
		}
		seen[opt] = struct{}{}

		capacity, ok := capacities[opt]
		if !ok || capacity <= 0 {
			continue
		}
		count := counts[opt]
		if count >= capacity+1 {
			continue
		}

		if len(tied) == 0 {
			tied = append(tied, opt)
			bestCount, bestCp = count, capacity
			continue
		}
		switch cmp := compareRatio(count, capacity, bestCount, bestCp); {
		case cmp < 0:
			tied = append(tied[:0], opt)
			bestCount, bestCp = count, capacity
		case cmp == 0:
			tied = append(tied, opt)
		}
	}

	switch len(tied) {
	case 0:
		return "", false
	case 1:
		return tied[0], true
	}
	sort.Strings(tied)
	return tied[tieBreakKey(hash)%len(tied)], true
}

// compareRatio 比较 a/b 与 c/d，交叉相乘避免浮点误差
func compareRatio(a, b, c, d int) int {
	l, r := int64(a)*int64(d), int64(c)*int64(b)
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}
