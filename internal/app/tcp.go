package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
	"github.com/taoyao-code/vedirect-server/internal/tcpserver"
)

// NewTCPServer 根据配置创建 TCP 服务器
func NewTCPServer(cfg cfgpkg.TCPConfig, log *zap.Logger) *tcpserver.Server {
	return tcpserver.New(cfg, log)
}
