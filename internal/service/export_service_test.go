package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"student-router/internal/repository"
)

func setupTestExportService(t *testing.T) (ExportService, *mockStudentRepo) {
	t.Helper()
	studentRepo := newMockStudentRepo()
	svc := NewExportService(repository.NewRepository(studentRepo), newTestEngine(t), zap.NewNop())
	return svc, studentRepo
}

func TestExportService_ExportRoster(t *testing.T) {
	svc, studentRepo := setupTestExportService(t)
	seedRecord(studentRepo, "alice")
	seedRecord(studentRepo, "bob")
	studentRepo.records["bob"].Notes = "late add"

	buf, filename, err := svc.ExportRoster(context.Background())
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("导出内容不应为空")
	}
	if filename == "" {
		t.Error("文件名不应为空")
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法解析导出的 Excel: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("名单")
	if err != nil {
		t.Fatalf("读取名单 Sheet 失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望表头 + 2 行，实际 %d 行", len(rows))
	}
	if rows[1][0] != "alice" || rows[2][0] != "bob" {
		t.Errorf("学号列不正确: %v / %v", rows[1], rows[2])
	}
	if rows[2][12] != "late add" {
		t.Errorf("备注列不正确: %v", rows[2])
	}

	capRows, err := f.GetRows("容量")
	if err != nil {
		t.Fatalf("读取容量 Sheet 失败: %v", err)
	}
	// 表头 + 2 class + 4 recitations + 2 ta
	if len(capRows) != 9 {
		t.Fatalf("期望 9 行，实际 %d 行", len(capRows))
	}
	for _, row := range capRows[1:] {
		if row[1] == "athens" && row[4] != "2" {
			t.Errorf("athens 人数应为 2，实际 %v", row)
		}
		if row[1] == "thebes" && row[2] != "B" {
			t.Errorf("thebes 日期应为 B，实际 %v", row)
		}
	}
}

func TestExportService_ExportRoster_StoreFailure(t *testing.T) {
	svc, studentRepo := setupTestExportService(t)
	storeErr := errors.New("boom")
	studentRepo.listErr = storeErr

	if _, _, err := svc.ExportRoster(context.Background()); !errors.Is(err, storeErr) {
		t.Errorf("期望返回存储错误，实际: %v", err)
	}
}
