package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/promo-dashboard/internal/service"
)

type MockJanitor struct {
	mu      sync.Mutex
	size    int64
	sizeErr error
	deleted []int
	block   chan struct{}
	entered chan struct{}
}

func (m *MockJanitor) DatabaseSizeBytes(ctx context.Context) (int64, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	return m.size, m.sizeErr
}

func (m *MockJanitor) DeleteOldest(ctx context.Context, n int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, n)
	return int64(n), nil
}

func TestHousekeeperDeletesWhenOverLimit(t *testing.T) {
	store := &MockJanitor{size: 501 * 1024 * 1024}
	h := service.NewHousekeeper(store, 500, 500)

	n, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)
	assert.Equal(t, []int{500}, store.deleted)
}

func TestHousekeeperLeavesSmallDatabaseAlone(t *testing.T) {
	store := &MockJanitor{size: 500 * 1024 * 1024}
	h := service.NewHousekeeper(store, 500, 500)

	n, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.deleted)
}

func TestHousekeeperReportsSizeErrors(t *testing.T) {
	store := &MockJanitor{sizeErr: errors.New("db down")}
	h := service.NewHousekeeper(store, 500, 500)

	_, err := h.Run(context.Background())
	assert.Error(t, err)
}

func TestHousekeeperRunsOnePassAtATime(t *testing.T) {
	store := &MockJanitor{
		size:    600 * 1024 * 1024,
		block:   make(chan struct{}),
		entered: make(chan struct{}, 2),
	}
	h := service.NewHousekeeper(store, 500, 10)

	result := make(chan int64)
	go func() {
		n, _ := h.Run(context.Background())
		result <- n
	}()
	<-store.entered

	n, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	close(store.block)
	assert.Equal(t, int64(10), <-result)
	assert.Equal(t, []int{10}, store.deleted)
}

func TestHousekeeperSchedule(t *testing.T) {
	c := cron.New()
	h := service.NewHousekeeper(&MockJanitor{}, 500, 500)

	_, err := h.Schedule(c, "@every 10m")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = h.Schedule(c, "not a schedule")
	assert.Error(t, err)
}
