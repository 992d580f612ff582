package tcpserver

import (
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ConnContext 单个 TCP 连接的读循环与回调载体。VE.Direct 遥测是
// 单向上行，连接上只读不写。
type ConnContext struct {
	s      *Server
	c      net.Conn
	id     uint64
	closed int32
	onRead func([]byte)
	doneC  chan struct{}
	// source 数据源标识，默认取远端地址，上层可覆盖
	source atomic.Value // string
}

func newConnContext(s *Server, c net.Conn) *ConnContext {
	cc := &ConnContext{
		s:     s,
		c:     c,
		id:    s.nextID(),
		doneC: make(chan struct{}),
	}
	cc.source.Store(c.RemoteAddr().String())
	return cc
}

// ID 返回连接ID（单进程唯一递增）
func (cc *ConnContext) ID() uint64 { return cc.id }

// RemoteAddr 返回远端地址
func (cc *ConnContext) RemoteAddr() net.Addr { return cc.c.RemoteAddr() }

// SetOnRead 安装读取回调（收到上行原始字节时触发）。
// 回调中传入的切片在返回后复用，不得持有。
func (cc *ConnContext) SetOnRead(h func([]byte)) { cc.onRead = h }

// SetSource 设置数据源标识（识别出设备序列号后覆盖）
func (cc *ConnContext) SetSource(src string) { cc.source.Store(src) }

// Source 返回数据源标识
func (cc *ConnContext) Source() string {
	if v, ok := cc.source.Load().(string); ok {
		return v
	}
	return ""
}

// Close 关闭连接
func (cc *ConnContext) Close() error {
	if !atomic.CompareAndSwapInt32(&cc.closed, 0, 1) {
		return nil
	}
	return cc.c.Close()
}

// run 启动读循环，阻塞直至连接结束
func (cc *ConnContext) run() {
	defer cc.Close()
	defer func() {
		// 广播关闭
		select {
		case <-cc.doneC:
		default:
			close(cc.doneC)
		}
	}()

	idle := cc.s.cfg.IdleTimeout
	if idle <= 0 {
		idle = 5 * time.Minute
	}

	buf := make([]byte, 4096)
	for {
		_ = cc.c.SetReadDeadline(time.Now().Add(idle))
		n, err := cc.c.Read(buf)
		if n > 0 {
			if cc.s.onRecvBytes != nil {
				cc.s.onRecvBytes(n)
			}
			if cc.onRead != nil {
				cc.onRead(buf[:n])
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				// 静默超时按设备离线处理
				cc.s.log.Info("tcp connection idle, closing",
					zap.String("source", cc.Source()))
			}
			return
		}
		select {
		case <-cc.s.stopC:
			return
		default:
		}
	}
}

// Done 返回连接关闭通知通道
func (cc *ConnContext) Done() <-chan struct{} { return cc.doneC }
