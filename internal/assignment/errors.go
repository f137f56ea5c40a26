package assignment

import (
	"errors"
	"fmt"
)

// 无可行 section 时报告的失败位置
const (
	WhereClass          = "class"
	WhereRecitationDayA = "recitation_day_a"
	WhereRecitationDayB = "recitation_day_b"
	WhereTA             = "ta"
)

// ReasonNoFeasible 对外失败原因码
const ReasonNoFeasible = "no_feasible"

// ErrNoFeasible 任一类别无可行 section
var ErrNoFeasible = errors.New("无可分配的 section")

// ErrInvalidSchedule 课程安排配置不合法
var ErrInvalidSchedule = errors.New("课程安排配置不合法")

// InfeasibleError 携带失败类别的不可行错误
// errors.Is(err, ErrNoFeasible) 为 true
type InfeasibleError struct {
	Where string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNoFeasible.Error(), e.Where)
}

// Is 使 errors.Is 可按 ErrNoFeasible 匹配
func (e *InfeasibleError) Is(target error) bool {
	return target == ErrNoFeasible
}

func infeasible(where string) *InfeasibleError {
	return &InfeasibleError{Where: where}
}
