package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"student-router/internal/assignment"
	"student-router/internal/model"
	"student-router/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

const (
	rosterSheet   = "名单"
	capacitySheet = "容量"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 工作簿包含两个 Sheet：
//   - 名单：每个学生一行
//   - 容量：每个 section 一行（类别、日期、容量、人数、剩余）
type ExportService interface {
	ExportRoster(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	engine *assignment.Engine
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, engine *assignment.Engine, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, engine: engine, logger: logger, now: time.Now}
}

func (s *exportService) ExportRoster(ctx context.Context) (*bytes.Buffer, string, error) {
	records, err := s.repo.Student.ListByPrefix(ctx, "")
	if err != nil {
		s.logger.Error("读取名单失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(rosterSheet)
	if err != nil {
		return nil, "", s.generateFail(err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(capacitySheet); err != nil {
		return nil, "", s.generateFail(err)
	}
	// 删除默认 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", s.generateFail(err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", s.generateFail(err)
	}

	if err := writeRosterSheet(f, records, headerStyle); err != nil {
		return nil, "", s.generateFail(err)
	}
	if err := writeCapacitySheet(f, s.engine.Schedule(), assignment.Count(records), headerStyle); err != nil {
		return nil, "", s.generateFail(err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", s.generateFail(err)
	}

	filename := fmt.Sprintf("roster_%s.xlsx", s.now().UTC().Format("20060102_150405"))
	s.logger.Info("名单导出完成", zap.Int("students", len(records)), zap.String("filename", filename))
	return buf, filename, nil
}

func (s *exportService) generateFail(err error) error {
	s.logger.Error("生成 Excel 失败", zap.Error(err))
	return ErrExportGenerateFail
}

var rosterHeader = []interface{}{
	"学号", "姓名", "邮箱", "提交时间", "class", "rec_a", "rec_b", "ta",
	"可选 class", "可选 recitations", "可选 ta", "锁定", "备注",
}

func writeRosterSheet(f *excelize.File, records []model.StudentRecord, headerStyle int) error {
	if err := f.SetSheetRow(rosterSheet, "A1", &rosterHeader); err != nil {
		return err
	}
	last := colName(len(rosterHeader) - 1)
	if err := f.SetCellStyle(rosterSheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(rosterSheet, "A", last, 16); err != nil {
		return err
	}

	for i := range records {
		r := &records[i]
		avail := r.Availability.Data()
		row := []interface{}{
			r.StudentID,
			r.Name,
			r.Email,
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Class,
			r.RecA,
			r.RecB,
			r.TA,
			strings.Join(avail.Class, ", "),
			strings.Join(avail.Recitations, ", "),
			strings.Join(avail.TA, ", "),
			r.Locked,
			r.Notes,
		}
		if err := f.SetSheetRow(rosterSheet, cell("A", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

var capacityHeader = []interface{}{"类别", "section", "日期", "容量", "人数", "剩余"}

func writeCapacitySheet(f *excelize.File, sched *assignment.Schedule, counts assignment.Counts, headerStyle int) error {
	if err := f.SetSheetRow(capacitySheet, "A1", &capacityHeader); err != nil {
		return err
	}
	last := colName(len(capacityHeader) - 1)
	if err := f.SetCellStyle(capacitySheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}

	row := 2
	for _, cat := range assignment.Categories {
		for _, key := range sched.Sections(cat) {
			capacity, _ := sched.Capacity(cat, key)
			count := counts.Of(cat)[key]
			day := ""
			if d, ok := sched.DayOf(key); ok && cat == assignment.CategoryRecitations {
				day = string(d)
			}
			values := []interface{}{string(cat), key, day, capacity, count, capacity - count}
			if err := f.SetSheetRow(capacitySheet, cell("A", row), &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
