package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"student-router/internal/model"
	pkgerrors "student-router/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// 所有后端共用的行为约定
// ═══════════════════════════════════════════════════════════

var baseTime = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func newRecord(id string, offset time.Duration) *model.StudentRecord {
	return &model.StudentRecord{
		StudentID: id,
		Timestamp: baseTime.Add(offset),
		Name:      "Student " + id,
		Email:     id + "@mit.edu",
		Availability: datatypes.NewJSONType(model.Availability{
			Class:       []string{"sparta", "athens"},
			Recitations: []string{"corinth", "thebes"},
			TA:          []string{"woods"},
		}),
		Class: "sparta",
		RecA:  "corinth",
		RecB:  "thebes",
		TA:    "woods",
	}
}

func runStudentRepositoryContract(t *testing.T, newRepo func(t *testing.T) StudentRepository) {
	ctx := context.Background()

	t.Run("Get 不存在的记录", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, "nobody")
		require.ErrorIs(t, err, pkgerrors.ErrRecordNotFound)
	})

	t.Run("Create 后可读回完整记录", func(t *testing.T) {
		repo := newRepo(t)
		rec := newRecord("jdoe", 0)
		require.NoError(t, repo.Create(ctx, rec))

		got, err := repo.Get(ctx, "jdoe")
		require.NoError(t, err)
		require.Equal(t, "jdoe", got.StudentID)
		require.Equal(t, "Student jdoe", got.Name)
		require.Equal(t, rec.Availability.Data(), got.Availability.Data())
		require.Equal(t, "corinth", got.RecA)
		require.Equal(t, "thebes", got.RecB)
		require.False(t, got.Locked)
		require.Empty(t, got.Notes)
		require.True(t, got.Timestamp.Equal(rec.Timestamp), "时间戳应保持不变: %v", got.Timestamp)
	})

	t.Run("重复 Create 返回 ErrRecordExists 且不覆盖", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newRecord("jdoe", 0)))

		second := newRecord("jdoe", time.Minute)
		second.Class = "athens"
		require.ErrorIs(t, repo.Create(ctx, second), pkgerrors.ErrRecordExists)

		got, err := repo.Get(ctx, "jdoe")
		require.NoError(t, err)
		require.Equal(t, "sparta", got.Class)
	})

	t.Run("Put 覆盖已有记录", func(t *testing.T) {
		repo := newRepo(t)
		rec := newRecord("jdoe", 0)
		require.NoError(t, repo.Create(ctx, rec))

		rec.Locked = true
		rec.Notes = "moved by staff"
		require.NoError(t, repo.Put(ctx, rec))

		got, err := repo.Get(ctx, "jdoe")
		require.NoError(t, err)
		require.True(t, got.Locked)
		require.Equal(t, "moved by staff", got.Notes)
		require.Equal(t, "sparta", got.Class)
	})

	t.Run("ListByPrefix 过滤并排序", func(t *testing.T) {
		repo := newRepo(t)

		empty, err := repo.ListByPrefix(ctx, "")
		require.NoError(t, err)
		require.Empty(t, empty)

		require.NoError(t, repo.Create(ctx, newRecord("bob", 2*time.Second)))
		require.NoError(t, repo.Create(ctx, newRecord("alice", time.Second)))
		require.NoError(t, repo.Create(ctx, newRecord("alfred", 3*time.Second)))
		require.NoError(t, repo.Create(ctx, newRecord("al%x", 4*time.Second)))

		all, err := repo.ListByPrefix(ctx, "")
		require.NoError(t, err)
		require.Equal(t, []string{"alice", "bob", "alfred", "al%x"}, ids(all))

		al, err := repo.ListByPrefix(ctx, "al")
		require.NoError(t, err)
		require.Equal(t, []string{"alice", "alfred", "al%x"}, ids(al))

		// 通配符按字面匹配
		pct, err := repo.ListByPrefix(ctx, "al%")
		require.NoError(t, err)
		require.Equal(t, []string{"al%x"}, ids(pct))
	})

	t.Run("Delete 物理删除后可重新创建", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newRecord("jdoe", 0)))
		require.NoError(t, repo.Create(ctx, newRecord("other", time.Second)))

		require.NoError(t, repo.Delete(ctx, "jdoe"))
		_, err := repo.Get(ctx, "jdoe")
		require.ErrorIs(t, err, pkgerrors.ErrRecordNotFound)
		require.ErrorIs(t, repo.Delete(ctx, "jdoe"), pkgerrors.ErrRecordNotFound)

		rest, err := repo.ListByPrefix(ctx, "")
		require.NoError(t, err)
		require.Equal(t, []string{"other"}, ids(rest))

		require.NoError(t, repo.Create(ctx, newRecord("jdoe", 2*time.Second)))
	})

	t.Run("学号含特殊字符", func(t *testing.T) {
		repo := newRepo(t)
		id := "o'brien:x/y z"
		require.NoError(t, repo.Create(ctx, newRecord(id, 0)))

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, id, got.StudentID)
	})

	t.Run("并发 Create 同一学号只有一个成功", func(t *testing.T) {
		repo := newRepo(t)
		const workers = 8

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
			exists  int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec := newRecord("race", time.Duration(i)*time.Second)
				err := repo.Create(ctx, rec)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case err == pkgerrors.ErrRecordExists:
					exists++
				default:
					t.Errorf("意外错误: %v", err)
				}
			}(i)
		}
		wg.Wait()

		require.Equal(t, 1, created, "只能有一个请求创建成功")
		require.Equal(t, workers-1, exists)

		all, err := repo.ListByPrefix(ctx, "race")
		require.NoError(t, err)
		require.Len(t, all, 1)
	})
}

func ids(records []model.StudentRecord) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].StudentID
	}
	return out
}
