package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/popeskul/wa-inbox/internal/remote"
	"github.com/popeskul/wa-inbox/internal/repository"
)

const (
	SchedulerRunning = "running"
	SchedulerStopped = "stopped"
)

type healthService struct {
	repo             repository.Repository
	redisClient      *redis.Client
	schedulerService SchedulerService
	breaker          *remote.CircuitBreaker
}

// NewHealthService builds the health reporter. redisClient and breaker may be nil
// when the deployment runs without them.
func NewHealthService(
	repo repository.Repository,
	redisClient *redis.Client,
	schedulerService SchedulerService,
	breaker *remote.CircuitBreaker,
) HealthService {
	return &healthService{
		repo:             repo,
		redisClient:      redisClient,
		schedulerService: schedulerService,
		breaker:          breaker,
	}
}

func (s *healthService) GetHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
	}

	if s.schedulerService != nil && s.schedulerService.IsRunning() {
		status.SchedulerStatus = SchedulerRunning
	} else {
		status.SchedulerStatus = SchedulerStopped
	}

	if s.schedulerService != nil {
		lastRun, lastErr := s.schedulerService.LastRun()
		if !lastRun.IsZero() {
			status.SchedulerLastRun = &lastRun
		}
		if lastErr != nil {
			status.SchedulerLastError = lastErr.Error()
		}
	}

	status.DatabaseStatus = s.checkDatabaseHealth()
	status.RedisStatus = s.checkRedisHealth(ctx)

	if status.DatabaseStatus != ComponentConnected || status.RedisStatus == ComponentDisconnected {
		status.Status = StatusUnhealthy
	}

	if s.breaker != nil {
		state := s.breaker.State()
		requests, failures := s.breaker.Counts()
		status.CircuitBreakerState = state
		if requests > 0 {
			failureRate := float64(failures) / float64(requests) * 100
			status.CircuitBreakerStatus = fmt.Sprintf("Requests: %d, Failures: %d (%.1f%%)", requests, failures, failureRate)
		} else {
			status.CircuitBreakerStatus = "No requests yet"
		}

		// An open breaker means the provider is unreachable; local data still serves.
		if state == "open" && status.Status == StatusHealthy {
			status.Status = StatusDegraded
		}
	}

	return status
}

func (s *healthService) checkDatabaseHealth() ComponentStatus {
	if err := s.repo.Ping(); err != nil {
		return ComponentDisconnected
	}
	return ComponentConnected
}

func (s *healthService) checkRedisHealth(ctx context.Context) ComponentStatus {
	if s.redisClient == nil {
		return ComponentDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return ComponentDisconnected
	}
	return ComponentConnected
}
