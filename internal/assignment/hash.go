package assignment

import (
	"math"
	"unicode/utf16"
)

// tieBreakModulus 平局键取模基数，所有类别共用
const tieBreakModulus = 997

// StableHash 学号 → 非负整数的稳定哈希
//
// 逐个 UTF-16 码元累加 hash = hash*31 + unit（int32 溢出回绕），最后取绝对值；
// |MinInt32| 无法表示，映射为 MaxInt32。结果只依赖输入字符串，跨进程、跨语言实现一致。
func StableHash(id string) int {
	var h int32
	for _, unit := range utf16.Encode([]rune(id)) {
		h = h*31 + int32(unit)
	}
	if h == math.MinInt32 {
		return math.MaxInt32
	}
	if h < 0 {
		h = -h
	}
	return int(h)
}

// tieBreakKey 同一学生在所有类别使用同一个平局键
func tieBreakKey(hash int) int {
	return hash % tieBreakModulus
}
