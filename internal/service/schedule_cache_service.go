package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medbook/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	scheduleCacheKeyPrefix     = "availability:schedules:"
	scheduleCacheVersionPrefix = "availability:schedules:ver:"

	scheduleCacheTimeout = 2 * time.Second
)

// ScheduleCacheService keeps weekly templates in Redis.
//
// Entries are keyed by a per-organization version counter, so a template
// mutation only has to INCR the version; stale entries age out with their TTL.
// Every Redis failure is treated as a cache miss.
type ScheduleCacheService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

// NewScheduleCacheService returns a cache that always misses when redisClient is nil
func NewScheduleCacheService(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *ScheduleCacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScheduleCacheService{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

func (s *ScheduleCacheService) enabled() bool {
	return s != nil && s.redisClient != nil
}

// Get returns the cached templates for filter and whether they were found.
//
// On a miss the returned key is the entry key resolved against the version
// read before the lookup. Callers hand it back to Set after loading from the
// database, so rows read before a concurrent Invalidate land under the old
// version. The key is empty when the cache is disabled or unreachable.
func (s *ScheduleCacheService) Get(ctx context.Context, filter *entity.ScheduleFilter) ([]entity.WeeklySchedule, string, bool) {
	if !s.enabled() {
		return nil, "", false
	}

	ctx, cancel := context.WithTimeout(ctx, scheduleCacheTimeout)
	defer cancel()

	key, err := s.entryKey(ctx, filter)
	if err != nil {
		s.log.Warnf("Failed to resolve schedule cache version for org %s: %+v", filter.OrganizationID, err)
		return nil, "", false
	}

	raw, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warnf("Failed to read schedule cache %s: %+v", key, err)
			return nil, "", false
		}
		return nil, key, false
	}

	var schedules []entity.WeeklySchedule
	if err := json.Unmarshal(raw, &schedules); err != nil {
		s.log.Warnf("Discarding corrupt schedule cache entry %s: %+v", key, err)
		return nil, key, false
	}

	s.log.Debugf("Schedule cache hit: %s", key)
	return schedules, key, true
}

// Set stores templates under a key previously returned by Get.
// An empty key is ignored.
func (s *ScheduleCacheService) Set(ctx context.Context, key string, schedules []entity.WeeklySchedule) {
	if !s.enabled() || key == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, scheduleCacheTimeout)
	defer cancel()

	if schedules == nil {
		schedules = []entity.WeeklySchedule{}
	}
	payload, err := json.Marshal(schedules)
	if err != nil {
		s.log.Warnf("Failed to encode schedules for cache: %+v", err)
		return
	}

	if err := s.redisClient.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.log.Warnf("Failed to write schedule cache %s: %+v", key, err)
	}
}

// Invalidate bumps the organization version so later reads miss
func (s *ScheduleCacheService) Invalidate(ctx context.Context, organizationID uuid.UUID) {
	if !s.enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, scheduleCacheTimeout)
	defer cancel()

	if err := s.redisClient.Incr(ctx, scheduleCacheVersionPrefix+organizationID.String()).Err(); err != nil {
		s.log.Warnf("Failed to bump schedule cache version for org %s: %+v", organizationID, err)
		return
	}
	s.log.Debugf("Invalidated schedule cache for org %s", organizationID)
}

func (s *ScheduleCacheService) entryKey(ctx context.Context, filter *entity.ScheduleFilter) (string, error) {
	version, err := s.redisClient.Get(ctx, scheduleCacheVersionPrefix+filter.OrganizationID.String()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s%s:v%d:%s", scheduleCacheKeyPrefix, filter.OrganizationID, version, filterSuffix(filter)), nil
}

func filterSuffix(filter *entity.ScheduleFilter) string {
	part := func(id *uuid.UUID) string {
		if id == nil {
			return "*"
		}
		return id.String()
	}
	return fmt.Sprintf("d=%s:l=%s:s=%s:a=%t", part(filter.DoctorID), part(filter.LocationID), part(filter.ServiceID), filter.ActiveOnly)
}
