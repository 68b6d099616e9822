package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// LimiterStore maintains per-key rate limiters and performs periodic cleanup.
type LimiterStore struct {
	mu              sync.Mutex
	limit           rate.Limit
	burst           int
	clients         map[string]*clientEntry
	cleanupInterval time.Duration
	idleTTL         time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore creates a new store for per-key rate limiters.
// limitPerMinute controls allowed events per minute; burst is the burst capacity.
func NewLimiterStore(limitPerMinute int, burst int, cleanupInterval time.Duration) *LimiterStore {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	s := &LimiterStore{
		limit:           rate.Every(time.Minute / time.Duration(limitPerMinute)),
		burst:           burst,
		clients:         map[string]*clientEntry{},
		cleanupInterval: cleanupInterval,
		idleTTL:         10 * time.Minute,
		stopCh:          make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *LimiterStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictIdle(time.Now().Add(-s.idleTTL))
		case <-s.stopCh:
			return
		}
	}
}

func (s *LimiterStore) evictIdle(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.clients {
		if v.lastSeen.Before(cutoff) {
			delete(s.clients, k)
		}
	}
}

// Stop stops the cleanup goroutine.
func (s *LimiterStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *LimiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.clients[key]; ok {
		e.lastSeen = time.Now()
		return e.limiter
	}
	limiter := rate.NewLimiter(s.limit, s.burst)
	s.clients[key] = &clientEntry{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// Allow checks whether an event for the given key is permitted.
func (s *LimiterStore) Allow(key string) bool {
	return s.getLimiter(key).Allow()
}

// RateLimit rejects requests over the per-client budget with 429. Clients
// are keyed by the token subject when present, otherwise by IP.
func RateLimit(store *LimiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if claim := ClaimFrom(c); claim.UserID != "" {
			key = "user:" + claim.UserID
		}

		if !store.Allow(key) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
