package assignment

import (
	"fmt"
	"sort"
	"strings"

	"student-router/config"
)

// Category section 所属类别
type Category string

const (
	CategoryClass       Category = "class"
	CategoryRecitations Category = "recitations"
	CategoryTA          Category = "ta"
)

// Categories 固定的三个类别，按分配顺序
var Categories = []Category{CategoryClass, CategoryRecitations, CategoryTA}

// Day 习题课日期分组
type Day string

const (
	DayA Day = "A"
	DayB Day = "B"
)

// Schedule 不可变的课程安排
//
// 启动时由 NewSchedule 构建一次，之后通过参数显式传递；所有访问方法只读，
// 对外返回的 map / slice 均为副本。
type Schedule struct {
	capacities map[Category]map[string]int
	days       map[string]Day
}

// NewSchedule 校验配置并构建 Schedule
// 规则：三个类别均非空、容量为正、每个习题课恰好属于 A/B 之一、A/B 两组均非空
func NewSchedule(cfg config.ScheduleConfig) (*Schedule, error) {
	s := &Schedule{
		capacities: make(map[Category]map[string]int, len(Categories)),
		days:       make(map[string]Day, len(cfg.Recitations)),
	}

	raw := map[Category]map[string]int{
		CategoryClass:       cfg.Capacities.Class,
		CategoryRecitations: cfg.Capacities.Recitations,
		CategoryTA:          cfg.Capacities.TA,
	}
	for _, cat := range Categories {
		sections := raw[cat]
		if len(sections) == 0 {
			return nil, fmt.Errorf("%w: 类别 %s 没有任何 section", ErrInvalidSchedule, cat)
		}
		copied := make(map[string]int, len(sections))
		for key, capacity := range sections {
			if strings.TrimSpace(key) == "" {
				return nil, fmt.Errorf("%w: 类别 %s 存在空 section 名", ErrInvalidSchedule, cat)
			}
			if capacity <= 0 {
				return nil, fmt.Errorf("%w: %s/%s 容量必须为正数", ErrInvalidSchedule, cat, key)
			}
			copied[key] = capacity
		}
		s.capacities[cat] = copied
	}

	for key, sec := range cfg.Recitations {
		if _, ok := s.capacities[CategoryRecitations][key]; !ok {
			return nil, fmt.Errorf("%w: 习题课 %s 未配置容量", ErrInvalidSchedule, key)
		}
		day := Day(strings.ToUpper(strings.TrimSpace(sec.Day)))
		if day != DayA && day != DayB {
			return nil, fmt.Errorf("%w: 习题课 %s 的日期 %q 不是 A/B", ErrInvalidSchedule, key, sec.Day)
		}
		s.days[key] = day
	}

	var countA, countB int
	for key := range s.capacities[CategoryRecitations] {
		switch s.days[key] {
		case DayA:
			countA++
		case DayB:
			countB++
		default:
			return nil, fmt.Errorf("%w: 习题课 %s 缺少日期分组", ErrInvalidSchedule, key)
		}
	}
	if countA == 0 || countB == 0 {
		return nil, fmt.Errorf("%w: 习题课必须同时包含 A、B 两组", ErrInvalidSchedule)
	}

	return s, nil
}

// Capacity 查询某个 section 的容量
func (s *Schedule) Capacity(cat Category, key string) (int, bool) {
	c, ok := s.capacities[cat][key]
	return c, ok
}

// Capacities 某类别的容量副本
func (s *Schedule) Capacities(cat Category) map[string]int {
	src := s.capacities[cat]
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Sections 某类别全部 section，按名称排序
func (s *Schedule) Sections(cat Category) []string {
	keys := make([]string, 0, len(s.capacities[cat]))
	for k := range s.capacities[cat] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DayOf 习题课所属日期分组
func (s *Schedule) DayOf(recitation string) (Day, bool) {
	d, ok := s.days[recitation]
	return d, ok
}

// Days 习题课日期分组副本
func (s *Schedule) Days() map[string]Day {
	out := make(map[string]Day, len(s.days))
	for k, v := range s.days {
		out[k] = v
	}
	return out
}

// onDay 过滤出属于指定日期的习题课，未知 section 直接丢弃
func (s *Schedule) onDay(recitations []string, day Day) []string {
	out := make([]string, 0, len(recitations))
	for _, r := range recitations {
		if s.days[r] == day {
			out = append(out, r)
		}
	}
	return out
}
