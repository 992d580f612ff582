package tcpserver

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter 新连接接受速率限流器（Token Bucket）。
// 串口服务器断电重启后成百路连接同时重连，用它削峰。
type RateLimiter struct {
	limiter       *rate.Limiter
	ratePerSec    float64
	burst         int
	allowedCount  atomic.Int64
	rejectedCount atomic.Int64
}

// NewRateLimiter 创建速率限流器
// ratePerSec: 每秒允许的新连接数（稳定速率），<=0 表示不限
// burst: 突发容量（桶的大小）
func NewRateLimiter(ratePerSec float64, burst int) *RateLimiter {
	lim := rate.Limit(ratePerSec)
	if ratePerSec <= 0 {
		lim = rate.Inf
	}
	if burst <= 0 {
		burst = int(ratePerSec * 2)
		if burst <= 0 {
			burst = 1
		}
	}

	return &RateLimiter{
		limiter:    rate.NewLimiter(lim, burst),
		ratePerSec: ratePerSec,
		burst:      burst,
	}
}

// Allow 检查是否允许（非阻塞）
func (l *RateLimiter) Allow() bool {
	if l.limiter.Allow() {
		l.allowedCount.Add(1)
		return true
	}
	l.rejectedCount.Add(1)
	return false
}

// Wait 等待直到允许（阻塞，随 ctx 取消）
func (l *RateLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		l.rejectedCount.Add(1)
		return err
	}
	l.allowedCount.Add(1)
	return nil
}

// AllowedCount 允许的请求数（累计）
func (l *RateLimiter) AllowedCount() int64 {
	return l.allowedCount.Load()
}

// RejectedCount 被拒绝的请求数（累计）
func (l *RateLimiter) RejectedCount() int64 {
	return l.rejectedCount.Load()
}

// Stats 获取统计信息
func (l *RateLimiter) Stats() RateLimiterStats {
	return RateLimiterStats{
		RatePerSecond: l.ratePerSec,
		Burst:         l.burst,
		AllowedTotal:  l.AllowedCount(),
		RejectedTotal: l.RejectedCount(),
	}
}

// RateLimiterStats 速率限流器统计信息
type RateLimiterStats struct {
	RatePerSecond float64 `json:"rate_per_second"`
	Burst         int     `json:"burst"`
	AllowedTotal  int64   `json:"allowed_total"`
	RejectedTotal int64   `json:"rejected_total"`
}
