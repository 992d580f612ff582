package tcpserver

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
)

func startTestServer(t *testing.T, cfg cfgpkg.TCPConfig, h ConnHandler) *Server {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	s := New(cfg, zap.NewNop())
	s.SetHandler(h)
	if err := s.Start(); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func TestServer_DeliversBytes(t *testing.T) {
	got := make(chan []byte, 16)
	s := startTestServer(t, cfgpkg.TCPConfig{IdleTimeout: time.Second}, func(cc *ConnContext) {
		cc.SetOnRead(func(b []byte) {
			dup := make([]byte, len(b))
			copy(dup, b)
			got <- dup
		})
	})

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer conn.Close()

	payload := []byte("\r\nV\t12800")
	if _, err := conn.Write(payload); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	select {
	case b := <-got:
		if string(b) != string(payload) {
			t.Fatalf("收到 %q，期望 %q", b, payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("超时未收到上行字节")
	}
}

func TestServer_ConnectionLimit(t *testing.T) {
	s := startTestServer(t, cfgpkg.TCPConfig{
		MaxConnections: 1,
		IdleTimeout:    time.Second,
	}, func(cc *ConnContext) {})

	c1, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("第1个连接失败: %v", err)
	}
	defer c1.Close()

	// 等第1个连接被接受循环拿走
	deadline := time.Now().Add(time.Second)
	for s.ActiveConnections() < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.ActiveConnections() != 1 {
		t.Fatalf("期望1个活跃连接，实际 %d", s.ActiveConnections())
	}

	// 第2个连接应被立即关闭
	c2, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("第2个连接拨号失败: %v", err)
	}
	defer c2.Close()
	_ = c2.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	if _, err := c2.Read(buf); err == nil {
		t.Fatal("超限连接应被服务端关闭")
	}
}

// 关停不等空闲超时:挂着的空闲连接被直接断开
func TestServer_ShutdownClosesIdleConnections(t *testing.T) {
	done := make(chan struct{})
	s := New(cfgpkg.TCPConfig{Addr: "127.0.0.1:0", IdleTimeout: time.Minute}, zap.NewNop())
	s.SetHandler(func(cc *ConnContext) {
		go func() {
			<-cc.Done()
			close(done)
		}()
	})
	if err := s.Start(); err != nil {
		t.Fatalf("启动失败: %v", err)
	}

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for s.ActiveConnections() < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("关停应在空闲超时前完成: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("连接读循环未退出")
	}
}

func TestServer_SourceDefaultsToRemoteAddr(t *testing.T) {
	src := make(chan string, 1)
	s := startTestServer(t, cfgpkg.TCPConfig{IdleTimeout: time.Second}, func(cc *ConnContext) {
		src <- cc.Source()
	})

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	defer conn.Close()

	select {
	case got := <-src:
		if got != conn.LocalAddr().String() {
			t.Fatalf("数据源 %q，期望 %q", got, conn.LocalAddr().String())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("超时未触发连接回调")
	}
}
