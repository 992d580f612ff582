package health

import (
	"context"
	"fmt"
	"time"

	"github.com/taoyao-code/vedirect-server/internal/tcpserver"
)

// TCPChecker TCP接入层健康检查器
type TCPChecker struct {
	server *tcpserver.Server
}

// NewTCPChecker 创建TCP健康检查器
func NewTCPChecker(server *tcpserver.Server) *TCPChecker {
	return &TCPChecker{server: server}
}

// Name 返回检查器名称
func (c *TCPChecker) Name() string {
	return "tcp"
}

// Check 执行健康检查
func (c *TCPChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	activeConns := c.server.ActiveConnections()
	maxConns := c.server.MaxConnections()

	// 未启用连接数限制时只报基础状态
	if maxConns == 0 {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "no limiting enabled",
			Details: map[string]interface{}{
				"active_connections": activeConns,
			},
			Latency: time.Since(start),
		}
	}

	utilization := float64(activeConns) / float64(maxConns)

	status := StatusHealthy
	message := "ok"

	if utilization > 0.8 {
		status = StatusDegraded
		message = "high connection usage"
	}

	if utilization > 0.95 {
		status = StatusUnhealthy
		message = "connection limit near exhausted"
	}

	limiterStats := c.server.LimiterStats()
	acceptStats := c.server.AcceptStats()

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"active_connections":    activeConns,
			"max_connections":       maxConns,
			"utilization":           fmt.Sprintf("%.1f%%", utilization*100),
			"rejected_total":        limiterStats.RejectedTotal,
			"accept_rejected_total": acceptStats.RejectedTotal,
		},
		Latency: time.Since(start),
	}
}
