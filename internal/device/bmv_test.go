package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bmvFields() map[string]string {
	return map[string]string{
		"V":     "12539",
		"I":     "-1240",
		"P":     "-16",
		"CE":    "-3570",
		"SOC":   "873",
		"TTG":   "2855",
		"Relay": "OFF",
		"Alarm": "OFF",
		"AR":    "0",
		"H1":    "-12800",
		"H2":    "-3570",
		"H17":   "42",
		"H18":   "57",
	}
}

func TestBMVMapper(t *testing.T) {
	b, err := BMVMapper{}.MapFields(bmvFields(), 0)
	require.NoError(t, err)

	assert.InDelta(t, 12.539, b.Voltage, 1e-9)
	assert.InDelta(t, -1.24, b.Current, 1e-9)
	assert.EqualValues(t, -16, b.Power)

	require.NotNil(t, b.Consumed)
	assert.InDelta(t, -3.57, *b.Consumed, 1e-9)
	require.NotNil(t, b.SOC)
	assert.InDelta(t, 87.3, *b.SOC, 1e-9)
	assert.EqualValues(t, 2855, b.TimeToGo)

	require.NotNil(t, b.Relay)
	assert.False(t, *b.Relay)
	require.NotNil(t, b.Alarm)
	assert.False(t, *b.Alarm)
	assert.Equal(t, AlarmReason(0), b.AlarmReason)

	require.NotNil(t, b.DischargedTotal)
	assert.InDelta(t, 0.42, *b.DischargedTotal, 1e-9)
	require.NotNil(t, b.ChargedTotal)
	assert.InDelta(t, 0.57, *b.ChargedTotal, 1e-9)

	// 老固件无标识字段。
	assert.Equal(t, ProductID(0), b.Product)
	assert.Equal(t, "", b.Serial.String())
}

func TestBMVMapper_WithIdentity(t *testing.T) {
	fields := bmvFields()
	fields["PID"] = "0x204"
	fields["FW"] = "308"
	fields["SER#"] = "HQ1328A1B2C"

	b, err := BMVMapper{}.MapFields(fields, 0)
	require.NoError(t, err)
	assert.Equal(t, ProductBMV702, b.Product)
	assert.Equal(t, "v3.08", b.Firmware.String())
	assert.Equal(t, "HQ1328A1B2C", b.Serial.String())
}

func TestBMVMapper_FWEBeta(t *testing.T) {
	fields := bmvFields()
	fields["FWE"] = "020801"

	b, err := BMVMapper{}.MapFields(fields, 0)
	require.NoError(t, err)
	assert.Equal(t, "v2.08-01", b.Firmware.String())
}

func TestBMVMapper_UnsynchronisedSOC(t *testing.T) {
	fields := bmvFields()
	fields["SOC"] = "---"

	b, err := BMVMapper{}.MapFields(fields, 0)
	require.NoError(t, err)
	assert.Nil(t, b.SOC)
}

func TestBMVMapper_AlarmRaised(t *testing.T) {
	fields := bmvFields()
	fields["Alarm"] = "ON"
	fields["AR"] = "5"

	b, err := BMVMapper{}.MapFields(fields, 0)
	require.NoError(t, err)
	assert.True(t, *b.Alarm)
	assert.True(t, b.AlarmReason.Has(AlarmLowVoltage))
	assert.True(t, b.AlarmReason.Has(AlarmLowSOC))
}

func TestPhoenixMapper(t *testing.T) {
	fields := map[string]string{
		"PID":      "0xA212",
		"FW":       "0119",
		"SER#":     "HQ1840ZZ001",
		"MODE":     "2",
		"V":        "24150",
		"AC_OUT_V": "23012",
		"AC_OUT_I": "15",
		"CS":       "9",
		"AR":       "0",
		"WARN":     "0",
	}

	p, err := PhoenixMapper{}.MapFields(fields, 0)
	require.NoError(t, err)
	assert.Equal(t, ProductPhoenix24V375VA, p.Product)
	assert.Equal(t, ModeInverterOn, p.Mode)
	assert.InDelta(t, 24.15, p.BatteryVoltage, 1e-9)
	require.NotNil(t, p.OutputVoltage)
	assert.InDelta(t, 230.12, *p.OutputVoltage, 1e-9)
	require.NotNil(t, p.OutputCurrent)
	assert.InDelta(t, 1.5, *p.OutputCurrent, 1e-9)
	require.NotNil(t, p.ChargeState)
	assert.Equal(t, ChargeInverting, *p.ChargeState)
}
