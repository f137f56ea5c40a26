package repository

import (
	"sort"

	"student-router/internal/model"
)

// sortRecords 按创建时间、学号排序，使各后端的名单顺序一致
func sortRecords(records []model.StudentRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := records[i].Timestamp, records[j].Timestamp
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return records[i].StudentID < records[j].StudentID
	})
}
