package dto

// ── 课程安排视图 ──

// ScheduleResponse 前端渲染表单与容量条所需的课程安排
type ScheduleResponse struct {
	Capacities  map[string]map[string]int    `json:"capacities"`
	Recitations map[string]RecitationDayView `json:"recitations"`
}

// RecitationDayView 习题课日期分组
type RecitationDayView struct {
	Day string `json:"day"`
}
