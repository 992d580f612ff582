package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductID_Name(t *testing.T) {
	assert.Equal(t, "BlueSolar MPPT 75/15", ProductBlueSolarMPPT75_15.Name())
	assert.Equal(t, "BMV-702", ProductBMV702.Name())
	assert.Equal(t, "Phoenix Inverter 24V 375VA 230V", ProductPhoenix24V375VA.Name())
}

func TestProductID_Name_Unknown(t *testing.T) {
	// 未收录的产品ID回退为可读文本,不报错。
	assert.Equal(t, "Unknown (0xA999)", ProductID(0xA999).Name())
	assert.False(t, ProductID(0xA999).Known())
}

func TestProductID_Family(t *testing.T) {
	cases := []struct {
		pid  ProductID
		want Kind
	}{
		{ProductBMV700, KindBMV},
		{ProductBMV700H, KindBMV},
		{ProductBlueSolarMPPT70_15, KindMPPT},
		{ProductBlueSolarMPPT75_15, KindMPPT},
		{ProductSmartSolarMPPT250_100, KindMPPT},
		{ProductPhoenix12V250VA, KindPhoenix},
		{ProductPhoenix48V500VA, KindPhoenix},
		// 同段新型号也能归族。
		{ProductID(0xA0FF), KindMPPT},
		{ProductID(0xA2FF), KindPhoenix},
		{ProductID(0x9999), KindUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.pid.Family(), "pid %s", c.pid)
	}
}

func TestEnumFallbacks(t *testing.T) {
	assert.Equal(t, "bulk", ChargeBulk.String())
	assert.Equal(t, "unknown(7)", ChargeState(7).String())

	assert.Equal(t, "mppt_active", TrackerActive.String())
	assert.Equal(t, "unknown(9)", TrackerState(9).String())

	assert.Equal(t, "no_error", ErrNone.String())
	assert.Equal(t, "unknown(42)", ErrorCode(42).String())

	assert.Equal(t, "eco_on", ModeEcoOn.String())
	assert.Equal(t, "unknown(1)", DeviceMode(1).String())
}

func TestOffReason_Flags(t *testing.T) {
	r := OffNoInputPower | OffAnalysingInputVoltage
	assert.True(t, r.Has(OffNoInputPower))
	assert.False(t, r.Has(OffBMS))
	assert.Equal(t, "no_input_power|analysing_input_voltage", r.String())
	assert.Equal(t, "none", OffReason(0).String())

	// 未定义位保留。
	assert.Equal(t, "no_input_power|unknown(0x200)", (OffNoInputPower | OffReason(0x200)).String())
}

func TestAlarmReason_Flags(t *testing.T) {
	a := AlarmLowVoltage | AlarmLowSOC
	assert.True(t, a.Has(AlarmLowSOC))
	assert.Equal(t, "low_voltage|low_soc", a.String())
	assert.Equal(t, "none", AlarmReason(0).String())
}
