package assignment

import "student-router/internal/model"

// Assignment 一个学生的四项分配结果
type Assignment struct {
	Class string `json:"class"`
	RecA  string `json:"rec_a"`
	RecB  string `json:"rec_b"`
	TA    string `json:"ta"`
}

// FromRecord 取出记录中已保存的分配
func FromRecord(r *model.StudentRecord) Assignment {
	return Assignment{Class: r.Class, RecA: r.RecA, RecB: r.RecB, TA: r.TA}
}

// Engine 分配引擎，持有只读的 Schedule
type Engine struct {
	schedule *Schedule
}

// NewEngine 创建分配引擎
func NewEngine(schedule *Schedule) *Engine {
	return &Engine{schedule: schedule}
}

// Schedule 引擎使用的课程安排
func (e *Engine) Schedule() *Schedule {
	return e.schedule
}

// Assign 依次选择 class → A 组习题课 → B 组习题课 → TA
//
// 四次选择共用同一个学号哈希与同一份 counts 快照（选择之间不回写计数），
// 遇到第一个不可行类别立即返回 *InfeasibleError。
func (e *Engine) Assign(studentID string, avail model.Availability, counts Counts) (Assignment, error) {
	hash := StableHash(studentID)
	s := e.schedule

	class, ok := Select(avail.Class, counts.Class, s.capacities[CategoryClass], hash)
	if !ok {
		return Assignment{}, infeasible(WhereClass)
	}

	recA, ok := Select(s.onDay(avail.Recitations, DayA), counts.Recitations, s.capacities[CategoryRecitations], hash)
	if !ok {
		return Assignment{}, infeasible(WhereRecitationDayA)
	}

	recB, ok := Select(s.onDay(avail.Recitations, DayB), counts.Recitations, s.capacities[CategoryRecitations], hash)
	if !ok {
		return Assignment{}, infeasible(WhereRecitationDayB)
	}

	ta, ok := Select(avail.TA, counts.TA, s.capacities[CategoryTA], hash)
	if !ok {
		return Assignment{}, infeasible(WhereTA)
	}

	return Assignment{Class: class, RecA: recA, RecB: recB, TA: ta}, nil
}
