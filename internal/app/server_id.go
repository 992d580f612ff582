package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// GenerateServerID 生成服务器实例ID。
// 优先使用环境变量 VED_SERVER_ID，否则按主机名加短UUID生成。
func GenerateServerID() string {
	if serverID := os.Getenv("VED_SERVER_ID"); serverID != "" {
		return serverID
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	shortUUID := uuid.New().String()[:8]
	return fmt.Sprintf("vedirect-server-%s-%s", hostname, shortUUID)
}
