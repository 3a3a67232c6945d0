package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// MultiLimiter manages one rate limiter per upstream service
type MultiLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewMultiLimiter creates a new multi-limiter
func NewMultiLimiter() *MultiLimiter {
	return &MultiLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// AddLimiter adds a new rate limiter for a service
// requestsPerSecond: the rate limit (e.g., 10 means 10 requests per second)
// burst: maximum burst size
func (m *MultiLimiter) AddLimiter(name string, requestsPerSecond float64, burst int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[name] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// Wait blocks until the limiter allows an event. A nil MultiLimiter never blocks.
func (m *MultiLimiter) Wait(ctx context.Context, name string) error {
	if m == nil {
		return nil
	}

	m.mu.RLock()
	limiter, ok := m.limiters[name]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("limiter %s not found", name)
	}

	return limiter.Wait(ctx)
}

// Upstream limiter names
const (
	LimiterAnthropic     = "anthropic"
	LimiterTrends        = "trends"
	LimiterHuggingFace   = "huggingface"
	LimiterPollinations  = "pollinations"
	LimiterReadyPlayerMe = "readyplayerme"
	LimiterImgBB         = "imgbb"
	LimiterWeb           = "web"
)

// Limits holds per-minute request budgets for each upstream
type Limits struct {
	AnthropicPerMinute   int
	TrendsPerMinute      int
	HuggingFacePerMinute int
	ImagesPerMinute      int
	AvatarPerMinute      int
}

// New creates a limiter from per-minute budgets; zero values fall back to defaults
func New(l Limits) *MultiLimiter {
	m := NewMultiLimiter()

	m.AddLimiter(LimiterAnthropic, perSecond(l.AnthropicPerMinute, 10), 2)
	m.AddLimiter(LimiterTrends, perSecond(l.TrendsPerMinute, 30), 5)
	m.AddLimiter(LimiterHuggingFace, perSecond(l.HuggingFacePerMinute, 20), 3)
	m.AddLimiter(LimiterPollinations, perSecond(l.ImagesPerMinute, 20), 3)
	m.AddLimiter(LimiterImgBB, perSecond(l.ImagesPerMinute, 20), 3)
	// Status polls run every 1.5s, so the avatar budget needs headroom
	m.AddLimiter(LimiterReadyPlayerMe, perSecond(l.AvatarPerMinute, 120), 5)
	// Page analysis: be polite, 1 per second, burst 10
	m.AddLimiter(LimiterWeb, 1, 10)

	return m
}

// NewDefaultLimiter creates a limiter with default rate limits
func NewDefaultLimiter() *MultiLimiter {
	return New(Limits{})
}

func perSecond(perMinute, fallback int) float64 {
	if perMinute <= 0 {
		perMinute = fallback
	}
	return float64(perMinute) / 60
}
