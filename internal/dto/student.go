package dto

import (
	"student-router/internal/assignment"
	"student-router/internal/model"
)

// ── 分配模块 DTO ──

// AvailabilityRequest 学生可选 section（各类别内顺序无关，未知 section 忽略）
type AvailabilityRequest struct {
	Class       []string `json:"class"       binding:"omitempty,max=32,dive,max=64"`
	Recitations []string `json:"recitations" binding:"omitempty,max=32,dive,max=64"`
	TA          []string `json:"ta"          binding:"omitempty,max=32,dive,max=64"`
}

// ToModel 转为持久化结构，nil 列表统一为空列表
func (a *AvailabilityRequest) ToModel() model.Availability {
	return model.Availability{
		Class:       nonNil(a.Class),
		Recitations: nonNil(a.Recitations),
		TA:          nonNil(a.TA),
	}
}

// AssignRequest 提交分配请求
type AssignRequest struct {
	ID           string               `json:"id"           binding:"required,studentid"`
	Name         string               `json:"name"         binding:"max=200"`
	Email        string               `json:"email"        binding:"max=200"`
	Availability *AvailabilityRequest `json:"availability" binding:"required"`
}

// AssignResponse 分配成功响应
// 已有记录时 created=false，message=already_exists，assignment 为首次分配结果
type AssignResponse struct {
	OK         bool                  `json:"ok"`
	Assignment assignment.Assignment `json:"assignment"`
	Created    bool                  `json:"created"`
	Message    string                `json:"message,omitempty"`
}

// DeleteStudentRequest 删除学生请求（?action=delete 使用 body 传 id）
type DeleteStudentRequest struct {
	ID string `json:"id" binding:"required,studentid"`
}

// AnnotateStudentRequest 管理端修改锁定状态 / 备注，字段为空表示不修改
type AnnotateStudentRequest struct {
	Locked *bool   `json:"locked"`
	Notes  *string `json:"notes" binding:"omitempty,max=2000"`
}

// AuditResponse 名单审计结果
type AuditResponse struct {
	Total      int                    `json:"total"`
	Violations []assignment.Violation `json:"violations"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
