package session

import (
	"sort"
	"sync"
	"time"

	"github.com/taoyao-code/vedirect-server/internal/device"
)

// Presence 一台设备的在线状态快照
type Presence struct {
	Serial   string
	Kind     device.Kind
	Product  device.ProductID
	Source   string
	LastSeen time.Time
}

// Manager 设备会话管理：以序列号为键记录最近一次成功 Block 的时间，
// 超时未见判离线。遥测是单向的，没有握手，在线状态只能从数据流推断。
type Manager struct {
	mu      sync.RWMutex
	devices map[string]*Presence // serial -> presence
	timeout time.Duration
}

func New(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Manager{devices: make(map[string]*Presence), timeout: timeout}
}

// Touch 记录一条成功映射的记录,刷新设备在线状态
func (m *Manager) Touch(rec device.Record, source string, t time.Time) {
	serial := rec.Serial()
	if serial == "" {
		// 老款 BMV 无序列号,用数据源标识兜底
		serial = source
	}
	m.mu.Lock()
	p, ok := m.devices[serial]
	if !ok {
		p = &Presence{Serial: serial}
		m.devices[serial] = p
	}
	p.Kind = rec.Kind
	p.Product = rec.Product()
	p.Source = source
	p.LastSeen = t
	m.mu.Unlock()
}

// IsOnline 判断设备是否在线
func (m *Manager) IsOnline(serial string, now time.Time) bool {
	m.mu.RLock()
	p, ok := m.devices[serial]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return now.Sub(p.LastSeen) <= m.timeout
}

// OnlineCount 返回当前在线设备数量
func (m *Manager) OnlineCount(now time.Time) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, p := range m.devices {
		if now.Sub(p.LastSeen) <= m.timeout {
			count++
		}
	}
	return count
}

// Snapshot 返回全部已见设备的状态快照,按序列号排序
func (m *Manager) Snapshot() []Presence {
	m.mu.RLock()
	out := make([]Presence, 0, len(m.devices))
	for _, p := range m.devices {
		out = append(out, *p)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out
}

// Forget 移除设备记录（测试与运维接口用）
func (m *Manager) Forget(serial string) {
	m.mu.Lock()
	delete(m.devices, serial)
	m.mu.Unlock()
}
