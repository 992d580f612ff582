// Package health 后端依赖的健康检查。遥测采集本身不依赖任何后端,
// 这里的状态反映的是落库与查询侧的可用性。
package health

import (
	"context"
	"fmt"
	"time"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"   // 健康
	StatusDegraded  Status = "degraded"  // 降级,采集照常但部分后端受损
	StatusUnhealthy Status = "unhealthy" // 不健康,无法服务
)

// CheckResult 单个检查器的一次采样
type CheckResult struct {
	Status  Status                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Latency time.Duration          `json:"latency"`
}

// Checker 健康检查器接口
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// unhealthyResult 构造一次失败采样
func unhealthyResult(start time.Time, format string, args ...interface{}) CheckResult {
	return CheckResult{
		Status:  StatusUnhealthy,
		Message: fmt.Sprintf(format, args...),
		Latency: time.Since(start),
	}
}
