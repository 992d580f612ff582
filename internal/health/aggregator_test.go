package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// mockChecker 模拟检查器
type mockChecker struct {
	name   string
	status Status
	calls  int32
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) CheckResult {
	atomic.AddInt32(&m.calls, 1)
	return CheckResult{
		Status:  m.status,
		Message: "mock",
		Latency: time.Millisecond,
	}
}

func TestAggregator(t *testing.T) {
	t.Run("全部健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{name: "db", status: StatusHealthy},
			&mockChecker{name: "tcp", status: StatusHealthy},
		)

		report := agg.Report(context.Background())
		if report.Status != StatusHealthy {
			t.Errorf("期望StatusHealthy，实际: %v", report.Status)
		}

		if !agg.Ready(context.Background()) {
			t.Error("全部健康时应该Ready")
		}
	})

	t.Run("部分降级", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{name: "db", status: StatusHealthy},
			&mockChecker{name: "tcp", status: StatusDegraded},
		)

		report := agg.Report(context.Background())
		if report.Status != StatusDegraded {
			t.Errorf("期望StatusDegraded，实际: %v", report.Status)
		}

		// 降级状态仍然Ready
		if !agg.Ready(context.Background()) {
			t.Error("降级状态应该仍然Ready")
		}
	})

	t.Run("部分不健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{name: "db", status: StatusHealthy},
			&mockChecker{name: "tcp", status: StatusUnhealthy},
		)

		report := agg.Report(context.Background())
		if report.Status != StatusUnhealthy {
			t.Errorf("期望StatusUnhealthy，实际: %v", report.Status)
		}

		// 不健康状态不Ready
		if agg.Ready(context.Background()) {
			t.Error("不健康状态不应该Ready")
		}
	})

	t.Run("Report每个检查器只跑一遍", func(t *testing.T) {
		db := &mockChecker{name: "db", status: StatusHealthy}
		tcp := &mockChecker{name: "tcp", status: StatusDegraded}
		agg := NewAggregator(db, tcp)

		report := agg.Report(context.Background())
		if len(report.Checks) != 2 {
			t.Errorf("期望2个结果，实际: %d", len(report.Checks))
		}
		if got := atomic.LoadInt32(&db.calls); got != 1 {
			t.Errorf("db检查器执行了%d次，期望1次", got)
		}
		if got := atomic.LoadInt32(&tcp.calls); got != 1 {
			t.Errorf("tcp检查器执行了%d次，期望1次", got)
		}
	})

	t.Run("CheckAll并发执行", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{name: "check1", status: StatusHealthy},
			&mockChecker{name: "check2", status: StatusHealthy},
			&mockChecker{name: "check3", status: StatusHealthy},
		)

		results := agg.CheckAll(context.Background())
		if len(results) != 3 {
			t.Errorf("期望3个结果，实际: %d", len(results))
		}

		for name, result := range results {
			if result.Status != StatusHealthy {
				t.Errorf("%s: 期望StatusHealthy，实际: %v", name, result.Status)
			}
		}
	})

	t.Run("动态添加检查器", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{name: "initial", status: StatusHealthy},
		)

		agg.AddChecker(&mockChecker{name: "added", status: StatusHealthy})

		results := agg.CheckAll(context.Background())
		if len(results) != 2 {
			t.Errorf("期望2个结果，实际: %d", len(results))
		}
	})

	t.Run("Alive始终返回true", func(t *testing.T) {
		agg := NewAggregator()

		if !agg.Alive() {
			t.Error("Alive应该始终返回true")
		}
	})
}
