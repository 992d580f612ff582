package session

import (
	"testing"
	"time"

	"github.com/taoyao-code/vedirect-server/internal/device"
)

func mpptRecord(serial string) device.Record {
	return device.Record{
		Kind: device.KindMPPT,
		MPPT: &device.MPPT{
			Product: device.ProductBlueSolarMPPT75_15,
			Serial:  device.SerialNumber{Raw: serial},
		},
	}
}

func TestManager_Touch_IsOnline(t *testing.T) {
	m := New(2 * time.Second)
	now := time.Now()
	if m.IsOnline("HQ2207CD8F2", now) {
		t.Fatalf("expected offline initially")
	}
	m.Touch(mpptRecord("HQ2207CD8F2"), "ttyUSB0", now)
	if !m.IsOnline("HQ2207CD8F2", now) {
		t.Fatalf("expected online after record")
	}
	if m.IsOnline("HQ0000XXXXX", now) {
		t.Fatalf("other device should be offline")
	}
}

func TestManager_Timeout(t *testing.T) {
	m := New(500 * time.Millisecond)
	ts := time.Now()
	m.Touch(mpptRecord("HQ2207CD8F2"), "ttyUSB0", ts)
	if !m.IsOnline("HQ2207CD8F2", ts.Add(400*time.Millisecond)) {
		t.Fatalf("should still be online before timeout")
	}
	if m.IsOnline("HQ2207CD8F2", ts.Add(600*time.Millisecond)) {
		t.Fatalf("should be offline after timeout")
	}
}

func TestManager_SerialLessBMVKeyedBySource(t *testing.T) {
	m := New(time.Minute)
	now := time.Now()
	rec := device.Record{Kind: device.KindBMV, BMV: &device.BMV700{}}
	m.Touch(rec, "ttyUSB1", now)

	if !m.IsOnline("ttyUSB1", now) {
		t.Fatalf("serial-less device should be keyed by source")
	}
	snap := m.Snapshot()
	if len(snap) != 1 || snap[0].Serial != "ttyUSB1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestManager_Snapshot_SortedAndCounted(t *testing.T) {
	m := New(time.Minute)
	now := time.Now()
	m.Touch(mpptRecord("HQ2"), "tcp:1", now)
	m.Touch(mpptRecord("HQ1"), "tcp:2", now.Add(-2*time.Minute))

	if got := m.OnlineCount(now); got != 1 {
		t.Fatalf("online count = %d, want 1", got)
	}
	snap := m.Snapshot()
	if len(snap) != 2 || snap[0].Serial != "HQ1" || snap[1].Serial != "HQ2" {
		t.Fatalf("unexpected snapshot order: %+v", snap)
	}

	m.Forget("HQ1")
	if len(m.Snapshot()) != 1 {
		t.Fatalf("expected one device after Forget")
	}
}
