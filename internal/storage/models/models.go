package models

import (
	"time"
)

// 注意：
// - 保持与 db/migrations/0001_init_up.sql 完全对齐
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// Device 映射 devices 表。serial 为去重键：老款 BMV 无序列号时
// 采集侧用数据源标识代替。
type Device struct {
	// 主键
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 设备序列号（或数据源标识）
	Serial string `gorm:"column:serial;type:text;not null;uniqueIndex"`
	// 设备族：mppt / bmv / phoenix
	Kind string `gorm:"column:kind;type:text;not null"`
	// 产品ID与名称，可空（老固件不上报）
	ProductID   *int64  `gorm:"column:product_id"`
	ProductName *string `gorm:"column:product_name;type:text"`
	// 固件版本，可空
	Firmware *string `gorm:"column:firmware;type:text"`
	// 数据来源：串口路径或 TCP 远端地址
	Source *string `gorm:"column:source;type:text"`
	// 最近一次成功 Block
	LastSeenAt *time.Time `gorm:"column:last_seen_at"`
	// 审计字段
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Device) TableName() string { return "devices" }

// TelemetrySample 映射 telemetry_samples 表。完整记录以 JSON 形式保存，
// 常用查询维度冗余为独立列。
type TelemetrySample struct {
	// 主键：采集时生成的 UUID
	ID       string `gorm:"column:id;type:uuid;primaryKey"`
	DeviceID int64  `gorm:"column:device_id;not null;index:idx_sample_device_time,priority:1"`
	Kind     string `gorm:"column:kind;type:text;not null"`
	// 采集时刻
	CapturedAt time.Time `gorm:"column:captured_at;not null;index:idx_sample_device_time,priority:2,sort:desc"`
	// 映射后的完整记录 JSON
	Payload []byte `gorm:"column:payload;type:jsonb;not null"`
	// 热点查询列，可空（不同设备族字段不同）
	BatteryVoltage *float64 `gorm:"column:battery_voltage"`
	BatteryCurrent *float64 `gorm:"column:battery_current"`
	PanelPowerW    *int64   `gorm:"column:panel_power_w"`
	SOC            *float64 `gorm:"column:soc"`
	ChargeState    *string  `gorm:"column:charge_state;type:text"`
}

func (TelemetrySample) TableName() string { return "telemetry_samples" }
