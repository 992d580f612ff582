// Package serialport 本机直连 VE.Direct 串口的采集循环。
// 远程设备走 TCP 网关，本机 USB 转接的设备走这里。
package serialport

import (
	"context"
	"io"
	"time"

	"github.com/tarm/serial"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
)

// VE.Direct 文本协议固定 19200 8N1
const defaultBaud = 19200

// Reader 一路串口的读循环。打开失败或读错误后退避重试,
// 串口设备拔插是常态,循环不因此退出。
type Reader struct {
	cfg  cfgpkg.SerialSource
	log  *zap.Logger
	sink Sink
	// onBytes 可选指标回调
	onBytes func(n int)
}

// Sink 串口字节的去向（采集器的流接收端）
type Sink interface {
	Feed(p []byte)
}

// NewReader 创建串口读循环
func NewReader(cfg cfgpkg.SerialSource, log *zap.Logger, sink Sink) *Reader {
	if cfg.Baud <= 0 {
		cfg.Baud = defaultBaud
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Second
	}
	return &Reader{cfg: cfg, log: log, sink: sink}
}

// SetMetricsCallback 设置字节计数回调
func (r *Reader) SetMetricsCallback(onBytes func(int)) { r.onBytes = onBytes }

// Run 阻塞运行直到 ctx 取消
func (r *Reader) Run(ctx context.Context) {
	for {
		if err := r.readOnce(ctx); err != nil {
			r.log.Warn("serial source unavailable",
				zap.String("name", r.cfg.Name),
				zap.String("path", r.cfg.Path),
				zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.cfg.RetryInterval):
		}
	}
}

// readOnce 打开串口并持续读取，直到出错或 ctx 取消
func (r *Reader) readOnce(ctx context.Context) error {
	port, err := serial.OpenPort(&serial.Config{
		Name:        r.cfg.Path,
		Baud:        r.cfg.Baud,
		ReadTimeout: r.cfg.ReadTimeout,
	})
	if err != nil {
		return err
	}
	defer port.Close()

	r.log.Info("serial source opened",
		zap.String("name", r.cfg.Name),
		zap.String("path", r.cfg.Path),
		zap.Int("baud", r.cfg.Baud))

	buf := make([]byte, 512)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := port.Read(buf)
		if n > 0 {
			if r.onBytes != nil {
				r.onBytes(n)
			}
			r.sink.Feed(buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				// tarm/serial 读超时表现为 0 字节 EOF,空转继续
				continue
			}
			return err
		}
	}
}
