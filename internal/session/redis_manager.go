package session

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/vedirect-server/internal/device"
)

// RedisManager Redis版本的在线状态存储，支持多实例部署：
// 每个实例把自己采集到的设备写入共享键空间，查询侧看到全局视图。
type RedisManager struct {
	client   *redis.Client
	serverID string        // 当前服务器实例ID
	timeout  time.Duration // 在线判定超时
}

// presenceData Redis存储的设备状态结构
type presenceData struct {
	Serial   string           `json:"serial"`
	Kind     device.Kind      `json:"kind"`
	Product  device.ProductID `json:"product"`
	Source   string           `json:"source"`
	ServerID string           `json:"server_id"`
	LastSeen time.Time        `json:"last_seen"`
}

// Redis Key设计
const (
	// presence:device:{serial} -> presenceData JSON
	keyDevicePrefix = "presence:device:"

	// presence:devices -> Set[serial]
	keyDeviceSet = "presence:devices"
)

// NewRedisManager 创建Redis在线状态存储
func NewRedisManager(client *redis.Client, serverID string, timeout time.Duration) *RedisManager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if serverID == "" {
		serverID = uuid.New().String()
	}
	return &RedisManager{client: client, serverID: serverID, timeout: timeout}
}

// Touch 记录一条成功映射的记录,刷新设备在线状态
func (m *RedisManager) Touch(rec device.Record, source string, t time.Time) {
	serial := rec.Serial()
	if serial == "" {
		serial = source
	}
	data := &presenceData{
		Serial:   serial,
		Kind:     rec.Kind,
		Product:  rec.Product(),
		Source:   source,
		ServerID: m.serverID,
		LastSeen: t,
	}

	ctx := context.Background()
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	// 状态键带TTL兜底,实例崩溃后残留自动过期
	m.client.Set(ctx, keyDevicePrefix+serial, raw, m.timeout*2)
	m.client.SAdd(ctx, keyDeviceSet, serial)
}

// IsOnline 判断设备是否在线
func (m *RedisManager) IsOnline(serial string, now time.Time) bool {
	data, err := m.getPresence(context.Background(), serial)
	if err != nil {
		return false
	}
	return now.Sub(data.LastSeen) <= m.timeout
}

// OnlineCount 返回当前在线设备数量
func (m *RedisManager) OnlineCount(now time.Time) int {
	count := 0
	for _, p := range m.Snapshot() {
		if now.Sub(p.LastSeen) <= m.timeout {
			count++
		}
	}
	return count
}

// Snapshot 返回全部已见设备的状态快照,按序列号排序
func (m *RedisManager) Snapshot() []Presence {
	ctx := context.Background()
	serials, err := m.client.SMembers(ctx, keyDeviceSet).Result()
	if err != nil {
		return nil
	}

	out := make([]Presence, 0, len(serials))
	for _, serial := range serials {
		data, err := m.getPresence(ctx, serial)
		if err != nil {
			// 状态键已过期,顺手清掉集合里的残留
			m.client.SRem(ctx, keyDeviceSet, serial)
			continue
		}
		out = append(out, Presence{
			Serial:   data.Serial,
			Kind:     data.Kind,
			Product:  data.Product,
			Source:   data.Source,
			LastSeen: data.LastSeen,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out
}

// Forget 移除设备记录
func (m *RedisManager) Forget(serial string) {
	ctx := context.Background()
	m.client.Del(ctx, keyDevicePrefix+serial)
	m.client.SRem(ctx, keyDeviceSet, serial)
}

func (m *RedisManager) getPresence(ctx context.Context, serial string) (*presenceData, error) {
	raw, err := m.client.Get(ctx, keyDevicePrefix+serial).Result()
	if err != nil {
		return nil, err
	}
	var data presenceData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return &data, nil
}
