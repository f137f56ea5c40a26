package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"student-router/internal/model"
	pkgerrors "student-router/pkg/errors"
)

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	records map[string]*model.StudentRecord

	// 注入错误
	getErr    error
	listErr   error
	createErr error
	putErr    error
	deleteErr error

	// beforeCreate 在 Create 写入前调用，用于模拟并发请求抢先写入
	beforeCreate func()

	creates int
	lists   int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{records: make(map[string]*model.StudentRecord)}
}

func (m *mockStudentRepo) Get(_ context.Context, id string) (*model.StudentRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.records[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, pkgerrors.ErrRecordNotFound
}

func (m *mockStudentRepo) Put(_ context.Context, record *model.StudentRecord) error {
	if m.putErr != nil {
		return m.putErr
	}
	cp := *record
	m.records[record.StudentID] = &cp
	return nil
}

func (m *mockStudentRepo) Create(_ context.Context, record *model.StudentRecord) error {
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	if _, ok := m.records[record.StudentID]; ok {
		return pkgerrors.ErrRecordExists
	}
	cp := *record
	m.records[record.StudentID] = &cp
	return nil
}

func (m *mockStudentRepo) ListByPrefix(_ context.Context, prefix string) ([]model.StudentRecord, error) {
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.StudentRecord
	for id, r := range m.records {
		if strings.HasPrefix(id, prefix) {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result, nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.records[id]; !ok {
		return pkgerrors.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]bool
	err    error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]bool)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	if ttl > 0 {
		m.tokens[jti] = true
	}
	return nil
}
