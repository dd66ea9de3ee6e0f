package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zemenay/techpulse-api/internal/config"
	"github.com/zemenay/techpulse-api/internal/repository"
	"go.uber.org/zap"
)

type fakeReindexer struct{ calls int }

func (f *fakeReindexer) Reindex(context.Context, repository.ArticleRepository) (int, error) {
	f.calls++
	return 3, nil
}

type fakeBloom struct{ err error }

func (f fakeBloom) SaveBloomFilters(context.Context) error { return f.err }

type fakeCleaner struct{ calls int }

func (f *fakeCleaner) Cleanup() int {
	f.calls++
	return 1
}

func TestScheduler_RegisterRejectsBadSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop().Sugar(), time.Second)

	err := s.Register("broken", "not a cron", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Register("empty", "", func(context.Context) error { return nil }))
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_RunHonoursTimeout(t *testing.T) {
	s := NewScheduler(zap.NewNop().Sugar(), 10*time.Millisecond)

	var deadline bool
	s.run("slow", func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})
	assert.True(t, deadline)
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(zap.NewNop().Sugar(), time.Second)
	search := &fakeReindexer{}
	cleaner := &fakeCleaner{}

	err := RegisterAll(s, config.CronConfig{
		SearchSync: "0 0 */6 * * *",
		BloomSave:  "0 */10 * * * *",
	}, Jobs{
		Search:   search,
		Articles: nil,
		Bloom:    fakeBloom{err: errors.New("redis down")},
		Limiter:  cleaner,
	}, zap.NewNop().Sugar())
	require.NoError(t, err)

	// 没有文章仓库时不注册重建索引
	assert.Equal(t, 2, s.Len())
	assert.Zero(t, search.calls)
}

func TestRegisterAll_BadSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop().Sugar(), time.Second)
	err := RegisterAll(s, config.CronConfig{BloomSave: "every minute"}, Jobs{Bloom: fakeBloom{}}, zap.NewNop().Sugar())
	assert.Error(t, err)
}
