package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrSlotHeld is returned when another request is already booking the same slot
var ErrSlotHeld = errors.New("slot is being booked by another request")

// releaseSlotScript deletes the hold only when it still carries our token,
// so an expired hold re-acquired by someone else is never released by us.
var releaseSlotScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	RedisSlotHoldKeyPrefix = "appointment:hold:"

	slotLockTimeout = 2 * time.Second
)

// SlotLockService serialises booking attempts on one doctor/date/time
type SlotLockService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewSlotLockService(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *SlotLockService {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &SlotLockService{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

// Acquire holds the slot until the returned release func is called or the TTL expires.
// Without Redis, or when Redis fails, the hold is skipped and the database
// exclusion constraint remains the only guard.
func (s *SlotLockService) Acquire(ctx context.Context, organizationID, doctorID uuid.UUID, date, clock string) (func(), error) {
	noop := func() {}
	if s == nil || s.redisClient == nil {
		return noop, nil
	}

	key := fmt.Sprintf("%s%s:%s:%s:%s", RedisSlotHoldKeyPrefix, organizationID, doctorID, date, clock)
	token := uuid.NewString()

	lockCtx, cancel := context.WithTimeout(ctx, slotLockTimeout)
	defer cancel()

	ok, err := s.redisClient.SetNX(lockCtx, key, token, s.ttl).Result()
	if err != nil {
		s.log.Warnf("Failed to acquire slot hold %s, continuing without it: %+v", key, err)
		return noop, nil
	}
	if !ok {
		return nil, ErrSlotHeld
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), slotLockTimeout)
		defer cancel()
		if err := releaseSlotScript.Run(releaseCtx, s.redisClient, []string{key}, token).Err(); err != nil {
			s.log.Warnf("Failed to release slot hold %s: %+v", key, err)
		}
	}, nil
}
