package tcpserver

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
)

// ConnHandler 新连接建立后由上层安装解析回调；连接关闭时 run 返回。
type ConnHandler func(cc *ConnContext)

// Server TCP 网关。接收串口服务器（ser2net 等）转发来的 VE.Direct
// 字节流，每个连接一路遥测。上行只读，不向设备下发。
type Server struct {
	cfg        cfgpkg.TCPConfig
	log        *zap.Logger
	ln         net.Listener
	wg         sync.WaitGroup
	stopC      chan struct{}
	handler    ConnHandler
	limiter    *ConnectionLimiter
	accepts    *RateLimiter
	nextConnID uint64
	// 活跃连接登记,关停时逐一关闭,不等空闲超时
	connMu sync.Mutex
	conns  map[uint64]*ConnContext
	// 可选指标回调
	onAccept    func()
	onReject    func()
	onRecvBytes func(n int)
}

// New 创建 TCP 网关
func New(cfg cfgpkg.TCPConfig, log *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		stopC:   make(chan struct{}),
		conns:   make(map[uint64]*ConnContext),
		limiter: NewConnectionLimiter(cfg.MaxConnections, 0),
		accepts: NewRateLimiter(cfg.AcceptRate, cfg.AcceptBurst),
	}
}

// SetHandler 设置连接处理回调
func (s *Server) SetHandler(h ConnHandler) { s.handler = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept, onReject func(), onRecvBytes func(int)) {
	s.onAccept, s.onReject, s.onRecvBytes = onAccept, onReject, onRecvBytes
}

// ActiveConnections 当前活跃连接数
func (s *Server) ActiveConnections() int { return s.limiter.Current() }

// MaxConnections 连接数上限（0 表示不限制）
func (s *Server) MaxConnections() int { return s.limiter.MaxConnections() }

// LimiterStats 连接数限流统计
func (s *Server) LimiterStats() LimiterStats { return s.limiter.Stats() }

// AcceptStats 接受速率限流统计
func (s *Server) AcceptStats() RateLimiterStats { return s.accepts.Stats() }

// Addr 实际监听地址（Start 之后有效，测试用 ":0" 时取真实端口）
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.Info("tcp gateway listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.stopC:
					return
				default:
				}
				// 短暂错误等待后重试
				time.Sleep(50 * time.Millisecond)
				continue
			}

			if !s.accepts.Allow() {
				s.reject(conn, "accept rate exceeded")
				continue
			}
			if err := s.limiter.Acquire(context.Background()); err != nil {
				s.reject(conn, "connection limit exceeded")
				continue
			}
			if s.onAccept != nil {
				s.onAccept()
			}

			cc := newConnContext(s, conn)
			s.track(cc)
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.limiter.Release()
				defer s.untrack(cc)
				if s.handler != nil {
					s.handler(cc)
				}
				cc.run()
			}()
		}
	}()
	return nil
}

func (s *Server) reject(conn net.Conn, reason string) {
	s.log.Warn("tcp connection rejected",
		zap.String("remote", conn.RemoteAddr().String()),
		zap.String("reason", reason))
	if s.onReject != nil {
		s.onReject()
	}
	_ = conn.Close()
}

func (s *Server) track(cc *ConnContext) {
	s.connMu.Lock()
	s.conns[cc.id] = cc
	s.connMu.Unlock()
}

func (s *Server) untrack(cc *ConnContext) {
	s.connMu.Lock()
	delete(s.conns, cc.id)
	s.connMu.Unlock()
}

// Shutdown 优雅关闭：停止监听并关掉所有活跃连接，等读循环退出。
// 遥测连接常年只收不发，空闲等待没有意义，直接断开。
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopC)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.connMu.Lock()
	for _, cc := range s.conns {
		_ = cc.Close()
	}
	s.connMu.Unlock()
	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

func (s *Server) nextID() uint64 { return atomic.AddUint64(&s.nextConnID, 1) }
