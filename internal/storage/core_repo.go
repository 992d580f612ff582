package storage

import (
	"context"
	"time"

	"github.com/taoyao-code/vedirect-server/internal/storage/models"
)

// CoreRepo 查询侧存储抽象。
// 约束：
// - 禁止上层直接写 SQL，统一通过本接口访问
// - 实现需要提供事务封装 WithTx
// - 接口必须保持 DB-agnostic（面向模型与基础类型）
type CoreRepo interface {
	// ---------- 事务 ----------
	// WithTx 在单个事务中执行 fn，fn 内使用 repo 执行的所有写入/读取都在同一事务中。
	// 实现应保证嵌套调用正确复用当前事务。
	WithTx(ctx context.Context, fn func(repo CoreRepo) error) error

	// ---------- 设备 ----------
	// EnsureDevice 若序列号不存在则创建，存在则刷新属性，返回设备记录
	EnsureDevice(ctx context.Context, dev *models.Device) (*models.Device, error)
	// TouchDeviceLastSeen 刷新设备最近记录时间
	TouchDeviceLastSeen(ctx context.Context, serial string, at time.Time) error
	// GetDeviceBySerial 通过序列号查询设备
	GetDeviceBySerial(ctx context.Context, serial string) (*models.Device, error)
	// ListDevices 分页返回设备列表
	ListDevices(ctx context.Context, limit, offset int) ([]models.Device, error)

	// ---------- 遥测 ----------
	// InsertSample 写入一条遥测样本
	InsertSample(ctx context.Context, sample *models.TelemetrySample) error
	// LatestSample 返回设备最近一条样本
	LatestSample(ctx context.Context, deviceID int64) (*models.TelemetrySample, error)
	// ListSamples 返回设备时间窗口内的样本，按时间倒序
	ListSamples(ctx context.Context, deviceID int64, since, until time.Time, limit int) ([]models.TelemetrySample, error)
	// PruneSamples 删除某时刻之前的样本，返回删除条数（保留策略由调用方定）
	PruneSamples(ctx context.Context, before time.Time) (int64, error)
}
