package session

import (
	"time"

	"github.com/taoyao-code/vedirect-server/internal/device"
)

// PresenceStore 设备在线状态存储接口，支持内存和Redis两种实现。
// 单实例部署用内存版，多实例共享视图用Redis版。
type PresenceStore interface {
	// Touch 记录一条成功映射的记录,刷新设备在线状态
	Touch(rec device.Record, source string, t time.Time)

	// IsOnline 判断设备是否在线
	IsOnline(serial string, now time.Time) bool

	// OnlineCount 返回当前在线设备数量
	OnlineCount(now time.Time) int

	// Snapshot 返回全部已见设备的状态快照
	Snapshot() []Presence

	// Forget 移除设备记录
	Forget(serial string)
}

var (
	_ PresenceStore = (*Manager)(nil)
	_ PresenceStore = (*RedisManager)(nil)
)
