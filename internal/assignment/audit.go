package assignment

import (
	"slices"

	"student-router/internal/model"
)

// 审计问题类型
const (
	ProblemNotInAvailability = "not_in_availability"
	ProblemUnknownSection    = "unknown_section"
	ProblemWrongDay          = "wrong_day"
	ProblemOverCapacity      = "over_capacity"
)

// Violation 一条记录中的一个问题字段
type Violation struct {
	StudentID string `json:"id"`
	Field     string `json:"field"` // class | rec_a | rec_b | ta
	Section   string `json:"section"`
	Problem   string `json:"problem"`
}

// Audit 检查已有记录是否仍满足分配约束
//
// 针对管理端手工导入/修改或并发超额后的名单：分配值须在本人提交的可选范围内、
// 存在于课程安排中、习题课日期与字段匹配、所在 section 人数不超过 capacity+1。
func (e *Engine) Audit(records []model.StudentRecord, counts Counts) []Violation {
	var out []Violation
	for i := range records {
		r := &records[i]
		avail := r.Availability.Data()
		checks := []struct {
			field   string
			section string
			cat     Category
			options []string
			day     Day
		}{
			{"class", r.Class, CategoryClass, avail.Class, ""},
			{"rec_a", r.RecA, CategoryRecitations, avail.Recitations, DayA},
			{"rec_b", r.RecB, CategoryRecitations, avail.Recitations, DayB},
			{"ta", r.TA, CategoryTA, avail.TA, ""},
		}
		for _, c := range checks {
			problem := e.check(c.section, c.cat, c.options, c.day, counts)
			if problem != "" {
				out = append(out, Violation{
					StudentID: r.StudentID,
					Field:     c.field,
					Section:   c.section,
					Problem:   problem,
				})
			}
		}
	}
	return out
}

func (e *Engine) check(section string, cat Category, options []string, day Day, counts Counts) string {
	capacity, ok := e.schedule.Capacity(cat, section)
	if !ok {
		return ProblemUnknownSection
	}
	if !slices.Contains(options, section) {
		return ProblemNotInAvailability
	}
	if day != "" {
		if d, _ := e.schedule.DayOf(section); d != day {
			return ProblemWrongDay
		}
	}
	if counts.Of(cat)[section] > capacity+1 {
		return ProblemOverCapacity
	}
	return ""
}
