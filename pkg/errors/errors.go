package errors

import "errors"

// ErrRecordNotFound 存储中不存在该学生记录
var ErrRecordNotFound = errors.New("记录不存在")

// ErrRecordExists 原子创建冲突：该学号已有记录
var ErrRecordExists = errors.New("记录已存在")
