package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/vedirect-server/internal/session"
	"github.com/taoyao-code/vedirect-server/internal/storage"
	"github.com/taoyao-code/vedirect-server/internal/storage/models"
	redisstore "github.com/taoyao-code/vedirect-server/internal/storage/redis"
)

// ReadOnlyHandler 只读API处理器
type ReadOnlyHandler struct {
	repo         storage.CoreRepo
	sess         session.PresenceStore
	cache        *redisstore.LatestCache
	historyLimit int
	logger       *zap.Logger
}

// NewReadOnlyHandler 创建只读API处理器。cache 可为 nil（未启用Redis时
// latest 查询回退到 PG 最近样本）。
func NewReadOnlyHandler(
	repo storage.CoreRepo,
	sess session.PresenceStore,
	cache *redisstore.LatestCache,
	historyLimit int,
	logger *zap.Logger,
) *ReadOnlyHandler {
	if historyLimit <= 0 {
		historyLimit = 1000
	}
	return &ReadOnlyHandler{
		repo:         repo,
		sess:         sess,
		cache:        cache,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// deviceView 设备响应视图
type deviceView struct {
	ID          int64      `json:"id"`
	Serial      string     `json:"serial"`
	Kind        string     `json:"kind"`
	ProductID   *int64     `json:"product_id,omitempty"`
	ProductName *string    `json:"product_name,omitempty"`
	Firmware    *string    `json:"firmware,omitempty"`
	Source      *string    `json:"source,omitempty"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	Online      bool       `json:"online"`
}

// sampleView 遥测样本响应视图
type sampleView struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	CapturedAt     time.Time       `json:"captured_at"`
	Record         json.RawMessage `json:"record"`
	BatteryVoltage *float64        `json:"battery_voltage,omitempty"`
	BatteryCurrent *float64        `json:"battery_current,omitempty"`
	PanelPowerW    *int64          `json:"panel_power_w,omitempty"`
	SOC            *float64        `json:"soc,omitempty"`
	ChargeState    *string         `json:"charge_state,omitempty"`
}

func (h *ReadOnlyHandler) deviceToView(dev *models.Device, now time.Time) deviceView {
	return deviceView{
		ID:          dev.ID,
		Serial:      dev.Serial,
		Kind:        dev.Kind,
		ProductID:   dev.ProductID,
		ProductName: dev.ProductName,
		Firmware:    dev.Firmware,
		Source:      dev.Source,
		LastSeenAt:  dev.LastSeenAt,
		Online:      h.sess.IsOnline(dev.Serial, now),
	}
}

func sampleToView(s *models.TelemetrySample) sampleView {
	return sampleView{
		ID:             s.ID,
		Kind:           s.Kind,
		CapturedAt:     s.CapturedAt,
		Record:         json.RawMessage(s.Payload),
		BatteryVoltage: s.BatteryVoltage,
		BatteryCurrent: s.BatteryCurrent,
		PanelPowerW:    s.PanelPowerW,
		SOC:            s.SOC,
		ChargeState:    s.ChargeState,
	}
}

// Ready 快速就绪检查（无需认证）
func (h *ReadOnlyHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// ListDevices 查询设备列表
// GET /api/devices?limit=&offset=
func (h *ReadOnlyHandler) ListDevices(c *gin.Context) {
	limit := 100
	offset := 0
	if v := c.Query("limit"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil && vv > 0 {
			limit = vv
		}
	}
	if v := c.Query("offset"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil && vv >= 0 {
			offset = vv
		}
	}

	list, err := h.repo.ListDevices(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list devices failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	views := make([]deviceView, 0, len(list))
	for i := range list {
		views = append(views, h.deviceToView(&list[i], now))
	}
	c.JSON(http.StatusOK, gin.H{"devices": views})
}

// GetDevice 查询单个设备
// GET /api/devices/:serial
func (h *ReadOnlyHandler) GetDevice(c *gin.Context) {
	serial := c.Param("serial")

	dev, err := h.repo.GetDeviceBySerial(c.Request.Context(), serial)
	if err != nil {
		h.logger.Error("get device failed", zap.String("serial", serial), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if dev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"device": h.deviceToView(dev, time.Now())})
}

// GetLatest 查询设备最新遥测
// GET /api/devices/:serial/latest
//
// 优先读Redis缓存，未命中或未启用Redis时回退到PG最近样本。
func (h *ReadOnlyHandler) GetLatest(c *gin.Context) {
	serial := c.Param("serial")
	ctx := c.Request.Context()

	if h.cache != nil {
		latest, err := h.cache.Get(ctx, serial)
		if err != nil {
			h.logger.Warn("latest cache read failed", zap.String("serial", serial), zap.Error(err))
		} else if latest != nil {
			c.JSON(http.StatusOK, gin.H{"source": "cache", "latest": latest})
			return
		}
	}

	dev, err := h.repo.GetDeviceBySerial(ctx, serial)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if dev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	sample, err := h.repo.LatestSample(ctx, dev.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sample == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no telemetry yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"source": "database", "latest": sampleToView(sample)})
}

// ListHistory 查询设备历史遥测
// GET /api/devices/:serial/history?since=&until=&limit=
//
// since/until 为 RFC3339 时间戳；limit 受配置上限约束。
func (h *ReadOnlyHandler) ListHistory(c *gin.Context) {
	serial := c.Param("serial")
	ctx := c.Request.Context()

	since := time.Time{}
	until := time.Now()
	limit := h.historyLimit

	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since: " + err.Error()})
			return
		}
		since = t
	}
	if v := c.Query("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid until: " + err.Error()})
			return
		}
		until = t
	}
	if v := c.Query("limit"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil && vv > 0 && vv < limit {
			limit = vv
		}
	}

	dev, err := h.repo.GetDeviceBySerial(ctx, serial)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if dev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	samples, err := h.repo.ListSamples(ctx, dev.ID, since, until, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]sampleView, 0, len(samples))
	for i := range samples {
		views = append(views, sampleToView(&samples[i]))
	}
	c.JSON(http.StatusOK, gin.H{"serial": serial, "samples": views})
}

// ListPresence 查询在线状态快照
// GET /api/presence
func (h *ReadOnlyHandler) ListPresence(c *gin.Context) {
	now := time.Now()
	snapshot := h.sess.Snapshot()

	type presenceView struct {
		Serial   string    `json:"serial"`
		Kind     string    `json:"kind"`
		Product  string    `json:"product"`
		Source   string    `json:"source"`
		LastSeen time.Time `json:"last_seen"`
		Online   bool      `json:"online"`
	}

	views := make([]presenceView, 0, len(snapshot))
	for _, p := range snapshot {
		views = append(views, presenceView{
			Serial:   p.Serial,
			Kind:     string(p.Kind),
			Product:  p.Product.Name(),
			Source:   p.Source,
			LastSeen: p.LastSeen,
			Online:   h.sess.IsOnline(p.Serial, now),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"online_count": h.sess.OnlineCount(now),
		"devices":      views,
	})
}
