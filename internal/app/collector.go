package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/vedirect-server/internal/device"
	"github.com/taoyao-code/vedirect-server/internal/metrics"
	"github.com/taoyao-code/vedirect-server/internal/session"
	"github.com/taoyao-code/vedirect-server/internal/storage/pg"
	redisstore "github.com/taoyao-code/vedirect-server/internal/storage/redis"
	"github.com/taoyao-code/vedirect-server/internal/vedirect"
)

// Collector 汇聚所有数据源的 Block 结算结果并落到各个后端：
// 指标、在线状态、PG 样本、Redis 最新记录缓存。repo 与 cache 可为 nil
// （无后端的开发模式），对应落库步骤跳过。
type Collector struct {
	log   *zap.Logger
	m     *metrics.AppMetrics
	sess  session.PresenceStore
	repo  *pg.Repository
	cache *redisstore.LatestCache
	// persistTimeout 单个 Block 的落库预算,超时丢弃不阻塞解析
	persistTimeout time.Duration

	mu        sync.Mutex
	deviceIDs map[string]int64 // serial -> devices.id 缓存
}

// NewCollector 创建采集器
func NewCollector(log *zap.Logger, m *metrics.AppMetrics, sess session.PresenceStore, repo *pg.Repository, cache *redisstore.LatestCache) *Collector {
	return &Collector{
		log:            log,
		m:              m,
		sess:           sess,
		repo:           repo,
		cache:          cache,
		persistTimeout: 5 * time.Second,
		deviceIDs:      make(map[string]int64),
	}
}

// Sink 一路数据流的接收端，实现流层的消费回调。
// 单路数据流串行调用，无并发；不同 Sink 之间并发安全由 Collector 保证。
type Sink struct {
	c        *Collector
	source   string
	serial   string
	onSerial func(string)
	stream   *vedirect.Stream[device.Record]
}

// NewSink 为一路数据流（一个 TCP 连接或一个串口）建接收端。
// source 为数据源标识，进日志与存储。
func (c *Collector) NewSink(source string) *Sink {
	s := &Sink{c: c, source: source}
	s.stream = vedirect.NewStream[device.Record](device.AutoMapper{}, s)
	return s
}

// Stream 返回挂在该接收端上的流式解析器
func (s *Sink) Stream() *vedirect.Stream[device.Record] { return s.stream }

// OnSerial 安装序列号发现回调（首个成功 Block 后触发一次）
func (s *Sink) OnSerial(fn func(serial string)) { s.onSerial = fn }

// Close 数据流结束
func (s *Sink) Close() {
	s.c.log.Info("telemetry stream closed",
		zap.String("source", s.source),
		zap.String("serial", s.serial))
}

// OnBlock 校验通过且映射成功的 Block
func (s *Sink) OnBlock(rec device.Record) {
	now := time.Now()
	s.c.m.BlockTotal.WithLabelValues(metrics.BlockOK).Inc()
	s.c.m.RecordTotal.WithLabelValues(string(rec.Kind)).Inc()

	serial := rec.Serial()
	if serial == "" {
		serial = s.source
	}
	if s.serial != serial {
		s.serial = serial
		s.c.log.Info("device identified",
			zap.String("source", s.source),
			zap.String("serial", serial),
			zap.String("kind", string(rec.Kind)),
			zap.String("product", rec.Product().Name()))
		if s.onSerial != nil {
			s.onSerial(serial)
		}
	}

	s.c.sess.Touch(rec, s.source, now)
	s.c.m.OnlineGauge.Set(float64(s.c.sess.OnlineCount(now)))

	s.c.persist(serial, s.source, rec, now)
}

// OnMissingField 结构完整但缺必需标签的 Block，已被丢弃
func (s *Sink) OnMissingField(label string) {
	s.c.m.BlockTotal.WithLabelValues(metrics.BlockMissingField).Inc()
	s.c.log.Warn("block missing required field",
		zap.String("source", s.source),
		zap.String("label", label))
}

// OnMappingError 字段值转换失败
func (s *Sink) OnMappingError(err error) {
	s.c.m.BlockTotal.WithLabelValues(metrics.BlockMappingError).Inc()
	s.c.log.Warn("block mapping failed",
		zap.String("source", s.source),
		zap.Error(err))
}

// OnHexRun 文本流中跳过了一段二进制 HEX 帧
func (s *Sink) OnHexRun() {
	s.c.m.HexRunTotal.Inc()
}

// OnParseError 语法错误或校验失败
func (s *Sink) OnParseError(err error, buf []byte) {
	var ck *vedirect.ChecksumError
	if errors.As(err, &ck) {
		s.c.m.BlockTotal.WithLabelValues(metrics.BlockChecksumError).Inc()
	} else {
		s.c.m.BlockTotal.WithLabelValues(metrics.BlockParseError).Inc()
	}
	s.c.log.Warn("block discarded",
		zap.String("source", s.source),
		zap.Error(err),
		zap.Int("buffered", len(buf)))
}

// persist 落库：设备注册、样本写入、最新记录缓存。失败只记日志，
// 遥测下一个 Block 很快会到，不值得重试。
func (c *Collector) persist(serial, source string, rec device.Record, at time.Time) {
	if c.repo == nil && c.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.persistTimeout)
	defer cancel()

	if c.repo != nil {
		deviceID, err := c.ensureDeviceID(ctx, serial, source, rec, at)
		if err != nil {
			c.log.Error("device upsert failed", zap.String("serial", serial), zap.Error(err))
		} else {
			payload, err := json.Marshal(rec)
			if err != nil {
				c.log.Error("record marshal failed", zap.String("serial", serial), zap.Error(err))
			} else {
				sample := sampleFrom(rec)
				sample.ID = uuid.New().String()
				sample.DeviceID = deviceID
				sample.Kind = string(rec.Kind)
				sample.CapturedAt = at
				sample.Payload = payload
				if err := c.repo.InsertSample(ctx, sample); err != nil {
					c.log.Error("sample insert failed", zap.String("serial", serial), zap.Error(err))
				}
			}
		}
	}

	if c.cache != nil {
		err := c.cache.Store(ctx, &redisstore.LatestRecord{
			Serial:     serial,
			Source:     source,
			CapturedAt: at,
			Record:     rec,
		})
		if err != nil {
			c.log.Error("latest cache store failed", zap.String("serial", serial), zap.Error(err))
		}
	}
}

// ensureDeviceID 带进程内缓存的设备注册。设备属性基本不变,
// 缓存命中直接复用ID,不再逐 Block 刷库。
func (c *Collector) ensureDeviceID(ctx context.Context, serial, source string, rec device.Record, at time.Time) (int64, error) {
	c.mu.Lock()
	id, ok := c.deviceIDs[serial]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	up := pg.DeviceUpsert{Serial: serial, Kind: string(rec.Kind), Source: &source, SeenAt: at}
	if pid := rec.Product(); pid != 0 {
		v := int64(pid)
		name := pid.Name()
		up.ProductID = &v
		up.ProductName = &name
	}
	if fw := firmwareOf(rec); fw != "" {
		up.Firmware = &fw
	}

	id, err := c.repo.EnsureDevice(ctx, up)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.deviceIDs[serial] = id
	c.mu.Unlock()
	return id, nil
}

func firmwareOf(rec device.Record) string {
	switch rec.Kind {
	case device.KindMPPT:
		return rec.MPPT.Firmware.String()
	case device.KindBMV:
		if rec.BMV.Firmware == (device.FirmwareVersion{}) {
			return ""
		}
		return rec.BMV.Firmware.String()
	case device.KindPhoenix:
		return rec.Phoenix.Firmware.String()
	}
	return ""
}

// sampleFrom 抽取热点查询列
func sampleFrom(rec device.Record) pg.SampleInsert {
	var s pg.SampleInsert
	switch rec.Kind {
	case device.KindMPPT:
		v, i, p := rec.MPPT.BatteryVoltage, rec.MPPT.BatteryCurrent, rec.MPPT.PanelPower
		cs := rec.MPPT.ChargeState.String()
		s.BatteryVoltage, s.BatteryCurrent, s.PanelPowerW, s.ChargeState = &v, &i, &p, &cs
	case device.KindBMV:
		v, i := rec.BMV.Voltage, rec.BMV.Current
		s.BatteryVoltage, s.BatteryCurrent, s.SOC = &v, &i, rec.BMV.SOC
	case device.KindPhoenix:
		v := rec.Phoenix.BatteryVoltage
		s.BatteryVoltage = &v
		if rec.Phoenix.ChargeState != nil {
			cs := rec.Phoenix.ChargeState.String()
			s.ChargeState = &cs
		}
	}
	return s
}
