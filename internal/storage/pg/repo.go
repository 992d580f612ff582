package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository 采集热路径的持久化能力。查询侧走 gormrepo，
// 这里只保留每个 Block 都要走的两条写入。
type Repository struct {
	Pool *pgxpool.Pool
}

// DeviceUpsert 设备注册/刷新参数
type DeviceUpsert struct {
	Serial      string
	Kind        string
	ProductID   *int64
	ProductName *string
	Firmware    *string
	Source      *string
	SeenAt      time.Time
}

// EnsureDevice 返回设备ID，若不存在则插入，存在则刷新属性与最近时间
func (r *Repository) EnsureDevice(ctx context.Context, d DeviceUpsert) (int64, error) {
	const q = `INSERT INTO devices (serial, kind, product_id, product_name, firmware, source, last_seen_at)
               VALUES ($1,$2,$3,$4,$5,$6,$7)
               ON CONFLICT (serial) DO UPDATE SET
                   kind = EXCLUDED.kind,
                   product_id = EXCLUDED.product_id,
                   product_name = EXCLUDED.product_name,
                   firmware = EXCLUDED.firmware,
                   source = EXCLUDED.source,
                   last_seen_at = EXCLUDED.last_seen_at,
                   updated_at = NOW()
               RETURNING id`
	var id int64
	err := r.Pool.QueryRow(ctx, q,
		d.Serial, d.Kind, d.ProductID, d.ProductName, d.Firmware, d.Source, d.SeenAt).Scan(&id)
	return id, err
}

// SampleInsert 遥测样本写入参数
type SampleInsert struct {
	ID         string // UUID
	DeviceID   int64
	Kind       string
	CapturedAt time.Time
	Payload    []byte // 完整记录 JSON

	BatteryVoltage *float64
	BatteryCurrent *float64
	PanelPowerW    *int64
	SOC            *float64
	ChargeState    *string
}

// InsertSample 写入一条遥测样本
func (r *Repository) InsertSample(ctx context.Context, s SampleInsert) error {
	const q = `INSERT INTO telemetry_samples
               (id, device_id, kind, captured_at, payload,
                battery_voltage, battery_current, panel_power_w, soc, charge_state)
               VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.Pool.Exec(ctx, q,
		s.ID, s.DeviceID, s.Kind, s.CapturedAt, s.Payload,
		s.BatteryVoltage, s.BatteryCurrent, s.PanelPowerW, s.SOC, s.ChargeState)
	return err
}
