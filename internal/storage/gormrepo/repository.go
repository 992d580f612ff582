package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taoyao-code/vedirect-server/internal/storage"
	"github.com/taoyao-code/vedirect-server/internal/storage/models"
)

// Repository 基于 GORM 的 CoreRepo 实现。
// 使用 isTx 标记区分事务上下文，避免嵌套事务重复 Begin/Commit。
type Repository struct {
	db   *gorm.DB
	isTx bool
}

// New 返回一个使用给定 *gorm.DB 的 CoreRepo 实例。
func New(db *gorm.DB) storage.CoreRepo {
	return &Repository{db: db}
}

// WithTx 复用现有事务或开启新事务执行 fn。
func (r *Repository) WithTx(ctx context.Context, fn func(storage.CoreRepo) error) error {
	if r.isTx {
		return fn(r)
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	child := &Repository{db: tx, isTx: true}
	if err := fn(child); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// EnsureDevice 若序列号不存在则插入，存在则刷新属性与 last_seen_at。
func (r *Repository) EnsureDevice(ctx context.Context, dev *models.Device) (*models.Device, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "serial"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"kind":         gorm.Expr("excluded.kind"),
				"product_id":   gorm.Expr("excluded.product_id"),
				"product_name": gorm.Expr("excluded.product_name"),
				"firmware":     gorm.Expr("excluded.firmware"),
				"source":       gorm.Expr("excluded.source"),
				"last_seen_at": gorm.Expr("excluded.last_seen_at"),
				"updated_at":   gorm.Expr("NOW()"),
			}),
		}).
		Create(dev).Error
	if err != nil {
		return nil, err
	}

	return r.GetDeviceBySerial(ctx, dev.Serial)
}

// TouchDeviceLastSeen 刷新设备 last_seen_at。
func (r *Repository) TouchDeviceLastSeen(ctx context.Context, serial string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("serial = ?", serial).
		Updates(map[string]interface{}{
			"last_seen_at": at,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetDeviceBySerial 通过序列号查询设备，不存在返回 nil。
func (r *Repository) GetDeviceBySerial(ctx context.Context, serial string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).Where("serial = ?", serial).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// ListDevices 分页返回设备列表，按 id 倒序。
func (r *Repository) ListDevices(ctx context.Context, limit, offset int) ([]models.Device, error) {
	var devices []models.Device
	q := r.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// InsertSample 写入一条遥测样本。
func (r *Repository) InsertSample(ctx context.Context, sample *models.TelemetrySample) error {
	return r.db.WithContext(ctx).Create(sample).Error
}

// LatestSample 返回设备最近一条样本，没有样本返回 nil。
func (r *Repository) LatestSample(ctx context.Context, deviceID int64) (*models.TelemetrySample, error) {
	var sample models.TelemetrySample
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("captured_at DESC").
		First(&sample).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

// ListSamples 返回设备时间窗口内的样本，按时间倒序。
func (r *Repository) ListSamples(ctx context.Context, deviceID int64, since, until time.Time, limit int) ([]models.TelemetrySample, error) {
	var samples []models.TelemetrySample
	q := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("captured_at DESC")
	if !since.IsZero() {
		q = q.Where("captured_at >= ?", since)
	}
	if !until.IsZero() {
		q = q.Where("captured_at < ?", until)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

// PruneSamples 删除某时刻之前的样本。
func (r *Repository) PruneSamples(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("captured_at < ?", before).
		Delete(&models.TelemetrySample{})
	return res.RowsAffected, res.Error
}
