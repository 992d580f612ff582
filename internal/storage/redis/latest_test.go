package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
	"github.com/taoyao-code/vedirect-server/internal/device"
)

func setupTestClient(t *testing.T) *Client {
	client, err := NewClient(cfgpkg.RedisConfig{Addr: "localhost:6379", DB: 15})
	if err != nil {
		t.Skip("Redis not available, skipping test")
		return nil
	}

	ctx := context.Background()
	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func testLatestRecord(serial string) *LatestRecord {
	return &LatestRecord{
		Serial:     serial,
		Source:     "ttyUSB0",
		CapturedAt: time.Now().UTC().Truncate(time.Millisecond),
		Record: device.Record{
			Kind: device.KindMPPT,
			MPPT: &device.MPPT{
				Product:        device.ProductBlueSolarMPPT75_15,
				Serial:         device.SerialNumber{Raw: serial},
				BatteryVoltage: 13.79,
			},
		},
	}
}

func TestLatestCache_StoreGet(t *testing.T) {
	client := setupTestClient(t)
	if client == nil {
		return
	}

	cache := NewLatestCache(client, time.Minute)
	ctx := context.Background()

	rec := testLatestRecord("HQ2207CD8F2")
	require.NoError(t, cache.Store(ctx, rec))

	got, err := cache.Get(ctx, "HQ2207CD8F2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Serial, got.Serial)
	assert.Equal(t, device.KindMPPT, got.Record.Kind)
	assert.InDelta(t, 13.79, got.Record.MPPT.BatteryVoltage, 1e-9)
}

func TestLatestCache_Miss(t *testing.T) {
	client := setupTestClient(t)
	if client == nil {
		return
	}

	cache := NewLatestCache(client, time.Minute)
	got, err := cache.Get(context.Background(), "HQ0000XXXXX")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLatestCache_PublishesOnStore(t *testing.T) {
	client := setupTestClient(t)
	if client == nil {
		return
	}

	cache := NewLatestCache(client, time.Minute)
	ctx := context.Background()

	sub := cache.Subscribe(ctx)
	defer sub.Close()
	// 等订阅建立
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, cache.Store(ctx, testLatestRecord("HQ2207CD8F2")))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, "HQ2207CD8F2")
	case <-time.After(2 * time.Second):
		t.Fatal("超时未收到发布消息")
	}
}
