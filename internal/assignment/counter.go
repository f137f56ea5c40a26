package assignment

import "student-router/internal/model"

// Counts 各类别 section 当前人数（派生数据，不持久化）
type Counts struct {
	Class       map[string]int `json:"class"`
	Recitations map[string]int `json:"recitations"`
	TA          map[string]int `json:"ta"`
}

// NewCounts 空计数
func NewCounts() Counts {
	return Counts{
		Class:       make(map[string]int),
		Recitations: make(map[string]int),
		TA:          make(map[string]int),
	}
}

// Of 返回某类别的计数表（可能为 nil，读取安全）
func (c Counts) Of(cat Category) map[string]int {
	switch cat {
	case CategoryClass:
		return c.Class
	case CategoryRecitations:
		return c.Recitations
	case CategoryTA:
		return c.TA
	}
	return nil
}

// Count 由全部已提交记录推导计数
// 每条记录的 class / rec_a / rec_b / ta 各计一次，空值跳过；结果与记录顺序无关
func Count(records []model.StudentRecord) Counts {
	counts := NewCounts()
	for i := range records {
		r := &records[i]
		if r.Class != "" {
			counts.Class[r.Class]++
		}
		if r.RecA != "" {
			counts.Recitations[r.RecA]++
		}
		if r.RecB != "" {
			counts.Recitations[r.RecB]++
		}
		if r.TA != "" {
			counts.TA[r.TA]++
		}
	}
	return counts
}
