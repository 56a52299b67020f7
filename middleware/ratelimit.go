package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// KeyFunc 限流维度，返回空字符串时不限流
type KeyFunc func(c *gin.Context) string

// ByClientIP 按客户端 IP 限流
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByUserID 按当前登录用户限流，需放在 JWTAuth 之后
func ByUserID(c *gin.Context) string {
	if id := GetCurrentUserID(c); id > 0 {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return ""
}

// slidingWindow 滑动窗口计数，key 维度独立。
// 过期 key 在 allow 中按窗口周期顺带清理，不依赖后台协程
type slidingWindow struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	store     map[string][]time.Time
	lastSweep time.Time
}

func newSlidingWindow(max int, window time.Duration) *slidingWindow {
	return &slidingWindow{window: window, max: max, store: make(map[string][]time.Time)}
}

// allow 记录一次尝试，超过上限返回 false
func (w *slidingWindow) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if now.Sub(w.lastSweep) >= w.window {
		w.sweepLocked(now)
	}
	ts := prune(w.store[key], now.Add(-w.window))
	if len(ts) >= w.max {
		w.store[key] = ts
		return false
	}
	w.store[key] = append(ts, now)
	return true
}

// sweep 清理过期数据
func (w *slidingWindow) sweep(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sweepLocked(now)
}

func (w *slidingWindow) sweepLocked(now time.Time) {
	w.lastSweep = now
	cutoff := now.Add(-w.window)
	for key, ts := range w.store {
		ts = prune(ts, cutoff)
		if len(ts) == 0 {
			delete(w.store, key)
		} else {
			w.store[key] = ts
		}
	}
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// RateLimit 通用限流中间件：每个 key 在 window 内最多 maxAttempts 次，超过返回 429
func RateLimit(maxAttempts int, window time.Duration, key KeyFunc, message string) gin.HandlerFunc {
	limiter := newSlidingWindow(maxAttempts, window)

	return func(c *gin.Context) {
		k := key(c)
		if k == "" {
			c.Next()
			return
		}
		if !limiter.allow(k, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": message,
			})
			return
		}
		c.Next()
	}
}

// LoginRateLimit 登录接口限流，按 IP
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	return RateLimit(maxAttempts, window, ByClientIP, "登录尝试过于频繁，请稍后再试")
}

// SendRateLimit 发送消息限流，按用户
func SendRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	return RateLimit(maxAttempts, window, ByUserID, "消息发送过于频繁，请稍后再试")
}
