package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/cache"
	"github.com/popeskul/wa-inbox/internal/models"
	"github.com/popeskul/wa-inbox/internal/service"
)

func TestSchedulerService_PrunesExpiredEntries(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.StaleRetention = time.Millisecond
	cfg.Cache.PruneInterval = 20 * time.Millisecond

	store := cache.NewMemoryStore()
	caches := cache.NewService(store, cfg.Cache, zap.NewNop())

	_, err := caches.Participants.GetOrFetch(context.Background(), "CH1", func(context.Context) ([]models.Participant, error) {
		return []models.Participant{{SID: "MB1"}}, nil
	})
	require.NoError(t, err)
	_, ok, err := store.Get(context.Background(), cache.TableParticipants+":CH1")
	require.NoError(t, err)
	require.True(t, ok)

	svc := service.NewSchedulerService(cfg, caches, zap.NewNop())
	require.NoError(t, svc.Start())
	t.Cleanup(func() { _ = svc.Stop() })
	assert.True(t, svc.IsRunning())

	assert.Eventually(t, func() bool {
		_, ok, _ := store.Get(context.Background(), cache.TableParticipants+":CH1")
		return !ok
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		at, runErr := svc.LastRun()
		return !at.IsZero() && runErr == nil
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, svc.Stop())
	assert.False(t, svc.IsRunning())
}

func TestSchedulerService_RejectsZeroInterval(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.PruneInterval = 0

	svc := service.NewSchedulerService(cfg, cache.NewService(cache.NewMemoryStore(), cfg.Cache, zap.NewNop()), zap.NewNop())
	assert.Error(t, svc.Start())
	assert.False(t, svc.IsRunning())
}
