package lookup

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Clock func() time.Time

type cooldownEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

// Cooldown admits one attempt per client per interval. Each client gets a
// single-token bucket refilled once per interval.
type Cooldown struct {
	mu       sync.Mutex
	interval time.Duration
	entries  map[string]*cooldownEntry
	now      Clock
}

func NewCooldown(interval time.Duration, now Clock) *Cooldown {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Cooldown{
		interval: interval,
		entries:  make(map[string]*cooldownEntry),
		now:      now,
	}
}

func (c *Cooldown) Interval() time.Duration {
	return c.interval
}

// Allow consumes the client's token. When the token is not back yet it
// reports the time left until it is.
func (c *Cooldown) Allow(key string) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if !ok {
		e = &cooldownEntry{limiter: rate.NewLimiter(rate.Every(c.interval), 1)}
		c.entries[key] = e
	}
	if e.limiter.AllowN(now, 1) {
		e.last = now
		return true, 0
	}
	return false, c.remainingLocked(e, now)
}

// Remaining is the wait before key may try again; zero when it may now.
func (c *Cooldown) Remaining(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return 0
	}
	return c.remainingLocked(e, c.now())
}

func (c *Cooldown) remainingLocked(e *cooldownEntry, now time.Time) time.Duration {
	tokens := e.limiter.TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	wait := time.Duration(math.Ceil((1 - tokens) * float64(c.interval)))
	if wait <= 0 {
		return 0
	}
	return wait
}

// Sweep forgets clients whose cooldown has fully elapsed.
func (c *Cooldown) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.entries {
		if now.Sub(e.last) >= c.interval {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
