package serialport

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
)

type nopSink struct{}

func (nopSink) Feed(p []byte) {}

func TestReader_Defaults(t *testing.T) {
	r := NewReader(cfgpkg.SerialSource{Name: "main", Path: "/dev/ttyUSB0"}, zap.NewNop(), nopSink{})
	if r.cfg.Baud != defaultBaud {
		t.Fatalf("默认波特率 = %d, 期望 %d", r.cfg.Baud, defaultBaud)
	}
	if r.cfg.ReadTimeout <= 0 || r.cfg.RetryInterval <= 0 {
		t.Fatal("超时默认值未填充")
	}
}

func TestReader_RunStopsOnCancel(t *testing.T) {
	// 不存在的设备路径:打开失败进入重试,ctx 取消后退出
	r := NewReader(cfgpkg.SerialSource{
		Name:          "missing",
		Path:          "/dev/nonexistent-vedirect",
		RetryInterval: 10 * time.Millisecond,
	}, zap.NewNop(), nopSink{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run 未随 ctx 取消退出")
	}
}
