package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrPollThrottled is returned when a key is polled again inside the minimum interval
	// and no earlier result can be replayed
	ErrPollThrottled = errors.New("gateway polled too frequently")
	// ErrPollCircuitOpen is returned while a key cools down after too many polls
	ErrPollCircuitOpen = errors.New("gateway polling suspended")
)

const (
	pollStateCleanupInterval = 5 * time.Minute
	pollStateStaleThreshold  = 10 * time.Minute
)

// PollRejection carries how long a caller should wait before polling again
type PollRejection struct {
	Err        error
	RetryAfter time.Duration
}

func (e *PollRejection) Error() string {
	return fmt.Sprintf("%v (retry after %s)", e.Err, e.RetryAfter.Round(time.Second))
}

func (e *PollRejection) Unwrap() error {
	return e.Err
}

// PollPolicy bounds how often one resource key may reach the gateway
type PollPolicy struct {
	MinInterval time.Duration
	Window      time.Duration
	MaxRequests int
	Cooldown    time.Duration
}

// PollGuard enforces the polling policy per resource key:
// - one in-flight call per key, concurrent callers share its result
// - calls inside MinInterval replay the last successful result
// - more than MaxRequests calls in Window open the circuit for Cooldown
type PollGuard struct {
	policy PollPolicy
	log    *logrus.Logger
	now    func() time.Time

	group  singleflight.Group
	states sync.Map // map[string]*pollState

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type pollState struct {
	mu sync.Mutex

	inFlight   bool
	flightKey  string
	generation uint64
	lastCall   time.Time
	lastResult any
	hasResult  bool
	calls      []time.Time
	openUntil  time.Time

	lastUsed atomic.Int64 // Unix timestamp
}

// NewPollGuard starts the background reaper. Call Stop() during graceful shutdown.
func NewPollGuard(policy PollPolicy, log *logrus.Logger) *PollGuard {
	if policy.Window <= 0 {
		policy.Window = time.Minute
	}
	if policy.MaxRequests <= 0 {
		policy.MaxRequests = 10
	}
	if policy.Cooldown <= 0 {
		policy.Cooldown = 2 * time.Minute
	}

	g := &PollGuard{
		policy:   policy,
		log:      log,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupLoop()

	return g
}

// Stop gracefully shuts down the reaper.
// Safe to call multiple times.
func (g *PollGuard) Stop() {
	if g.stopped.CompareAndSwap(false, true) {
		close(g.stopChan)
		g.wg.Wait()
		g.log.Info("PollGuard stopped")
	}
}

// Do runs fn for key unless the policy forbids it.
// The shared call is detached from the first caller's cancellation so
// joined callers are not cut short; every caller still honours its own ctx.
func (g *PollGuard) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	st := g.state(key)

	st.mu.Lock()
	if st.inFlight {
		ch := g.group.DoChan(st.flightKey, nil)
		st.mu.Unlock()
		return g.wait(ctx, ch)
	}

	now := g.now()

	if now.Before(st.openUntil) {
		retry := st.openUntil.Sub(now)
		st.mu.Unlock()
		return nil, &PollRejection{Err: ErrPollCircuitOpen, RetryAfter: retry}
	}

	if !st.lastCall.IsZero() && now.Sub(st.lastCall) < g.policy.MinInterval {
		if st.hasResult {
			result := st.lastResult
			st.mu.Unlock()
			g.log.Debugf("Replaying last gateway result for %s", key)
			return result, nil
		}
		retry := g.policy.MinInterval - now.Sub(st.lastCall)
		st.mu.Unlock()
		return nil, &PollRejection{Err: ErrPollThrottled, RetryAfter: retry}
	}

	st.calls = pruneBefore(st.calls, now.Add(-g.policy.Window))
	if len(st.calls) >= g.policy.MaxRequests {
		st.openUntil = now.Add(g.policy.Cooldown)
		st.calls = nil
		st.mu.Unlock()
		g.log.Warnf("Gateway polling circuit opened for %s for %s", key, g.policy.Cooldown)
		return nil, &PollRejection{Err: ErrPollCircuitOpen, RetryAfter: g.policy.Cooldown}
	}

	st.calls = append(st.calls, now)
	st.lastCall = now
	st.inFlight = true
	st.generation++
	st.flightKey = fmt.Sprintf("%s#%d", key, st.generation)

	detached := context.WithoutCancel(ctx)
	ch := g.group.DoChan(st.flightKey, func() (any, error) {
		result, err := fn(detached)

		st.mu.Lock()
		st.inFlight = false
		if err == nil {
			st.lastResult = result
			st.hasResult = true
		}
		st.mu.Unlock()

		return result, err
	})
	st.mu.Unlock()

	return g.wait(ctx, ch)
}

func (g *PollGuard) wait(ctx context.Context, ch <-chan singleflight.Result) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (g *PollGuard) state(key string) *pollState {
	st, _ := g.states.LoadOrStore(key, &pollState{})
	result := st.(*pollState)
	result.lastUsed.Store(g.now().Unix())
	return result
}

// pruneBefore drops timestamps older than cutoff; calls is sorted ascending
func pruneBefore(calls []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(calls) && calls[i].Before(cutoff) {
		i++
	}
	return calls[i:]
}

func (g *PollGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(pollStateCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			g.log.Debug("Poll state cleanup goroutine stopping")
			return
		case <-ticker.C:
			g.cleanupStaleStates()
		}
	}
}

// cleanupStaleStates forgets keys nobody polled recently, keeping open circuits
func (g *PollGuard) cleanupStaleStates() {
	now := g.now()
	cutoff := now.Add(-pollStateStaleThreshold).Unix()
	var cleaned int

	g.states.Range(func(key, value any) bool {
		st, ok := value.(*pollState)
		if !ok {
			return true
		}

		if st.mu.TryLock() {
			if !st.inFlight && st.lastUsed.Load() < cutoff && !now.Before(st.openUntil) {
				g.states.Delete(key)
				cleaned++
			}
			st.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		g.log.Debugf("Cleaned up %d stale poll states", cleaned)
	}
}
