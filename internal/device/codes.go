package device

import "fmt"

// 枚举与位标志字段。未收录的数值一律保留原值并以 unknown(N) 文本呈现，
// 不作为映射失败处理：固件升级新增状态码不应让整块数据丢失。

// ChargeState 充电机/MPPT 运行状态（CS 字段）。
type ChargeState int64

const (
	ChargeOff        ChargeState = 0
	ChargeLowPower   ChargeState = 1
	ChargeFault      ChargeState = 2
	ChargeBulk       ChargeState = 3
	ChargeAbsorption ChargeState = 4
	ChargeFloat      ChargeState = 5
	ChargeInverting  ChargeState = 9
)

func (c ChargeState) String() string {
	switch c {
	case ChargeOff:
		return "off"
	case ChargeLowPower:
		return "low_power"
	case ChargeFault:
		return "fault"
	case ChargeBulk:
		return "bulk"
	case ChargeAbsorption:
		return "absorption"
	case ChargeFloat:
		return "float"
	case ChargeInverting:
		return "inverting"
	}
	return fmt.Sprintf("unknown(%d)", int64(c))
}

// TrackerState MPPT 跟踪器工作模式（MPPT 字段）。
type TrackerState int64

const (
	TrackerOff     TrackerState = 0
	TrackerLimited TrackerState = 1
	TrackerActive  TrackerState = 2
)

func (t TrackerState) String() string {
	switch t {
	case TrackerOff:
		return "off"
	case TrackerLimited:
		return "voltage_or_current_limited"
	case TrackerActive:
		return "mppt_active"
	}
	return fmt.Sprintf("unknown(%d)", int64(t))
}

// ErrorCode 设备错误码（ERR 字段）。
type ErrorCode int64

const (
	ErrNone                     ErrorCode = 0
	ErrBatteryVoltageHigh       ErrorCode = 2
	ErrChargerTemperatureHigh   ErrorCode = 17
	ErrChargerCurrentHigh       ErrorCode = 18
	ErrChargerCurrentReversed   ErrorCode = 19
	ErrBulkTimeExceeded         ErrorCode = 20
	ErrCurrentSensorIssue       ErrorCode = 21
	ErrTerminalsOverheated      ErrorCode = 26
	ErrConverterIssue           ErrorCode = 28
	ErrInputVoltageHigh         ErrorCode = 33
	ErrInputCurrentHigh         ErrorCode = 34
	ErrInputShutdownVoltage     ErrorCode = 38
	ErrInputShutdownCurrentFlow ErrorCode = 39
	ErrLostCommunication        ErrorCode = 65
	ErrSynchronisedChargeConfig ErrorCode = 66
	ErrBMSConnectionLost        ErrorCode = 67
	ErrNetworkMisconfigured     ErrorCode = 68
	ErrFactoryCalibrationLost   ErrorCode = 116
	ErrInvalidFirmware          ErrorCode = 117
	ErrUserSettingsInvalid      ErrorCode = 119
)

var errorCodeNames = map[ErrorCode]string{
	ErrNone:                     "no_error",
	ErrBatteryVoltageHigh:       "battery_voltage_high",
	ErrChargerTemperatureHigh:   "charger_temperature_high",
	ErrChargerCurrentHigh:       "charger_current_high",
	ErrChargerCurrentReversed:   "charger_current_reversed",
	ErrBulkTimeExceeded:         "bulk_time_exceeded",
	ErrCurrentSensorIssue:       "current_sensor_issue",
	ErrTerminalsOverheated:      "terminals_overheated",
	ErrConverterIssue:           "converter_issue",
	ErrInputVoltageHigh:         "input_voltage_high",
	ErrInputCurrentHigh:         "input_current_high",
	ErrInputShutdownVoltage:     "input_shutdown_battery_voltage",
	ErrInputShutdownCurrentFlow: "input_shutdown_current_flow",
	ErrLostCommunication:        "lost_communication",
	ErrSynchronisedChargeConfig: "synchronised_charging_configuration_issue",
	ErrBMSConnectionLost:        "bms_connection_lost",
	ErrNetworkMisconfigured:     "network_misconfigured",
	ErrFactoryCalibrationLost:   "factory_calibration_data_lost",
	ErrInvalidFirmware:          "invalid_firmware",
	ErrUserSettingsInvalid:      "user_settings_invalid",
}

func (e ErrorCode) String() string {
	if name, ok := errorCodeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int64(e))
}

// OffReason 设备关闭原因位标志（OR 字段，可组合）。
type OffReason int64

const (
	OffNoInputPower           OffReason = 0x01
	OffSwitchedOffPowerSwitch OffReason = 0x02
	OffSwitchedOffRegister    OffReason = 0x04
	OffRemoteInput            OffReason = 0x08
	OffProtectionActive       OffReason = 0x10
	OffPaygo                  OffReason = 0x20
	OffBMS                    OffReason = 0x40
	OffEngineShutdownDetect   OffReason = 0x80
	OffAnalysingInputVoltage  OffReason = 0x100
)

var offReasonNames = []struct {
	bit  OffReason
	name string
}{
	{OffNoInputPower, "no_input_power"},
	{OffSwitchedOffPowerSwitch, "switched_off_power_switch"},
	{OffSwitchedOffRegister, "switched_off_device_register"},
	{OffRemoteInput, "remote_input"},
	{OffProtectionActive, "protection_active"},
	{OffPaygo, "paygo"},
	{OffBMS, "bms"},
	{OffEngineShutdownDetect, "engine_shutdown_detection"},
	{OffAnalysingInputVoltage, "analysing_input_voltage"},
}

// Has 检查单个原因位。
func (o OffReason) Has(bit OffReason) bool { return o&bit != 0 }

func (o OffReason) String() string {
	if o == 0 {
		return "none"
	}
	out := ""
	rest := o
	for _, e := range offReasonNames {
		if rest&e.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += e.name
			rest &^= e.bit
		}
	}
	if rest != 0 {
		if out != "" {
			out += "|"
		}
		out += fmt.Sprintf("unknown(%#x)", int64(rest))
	}
	return out
}

// AlarmReason 报警原因位标志（AR 字段，可组合）。
type AlarmReason int64

const (
	AlarmLowVoltage         AlarmReason = 1
	AlarmHighVoltage        AlarmReason = 2
	AlarmLowSOC             AlarmReason = 4
	AlarmLowStarterVoltage  AlarmReason = 8
	AlarmHighStarterVoltage AlarmReason = 16
	AlarmLowTemperature     AlarmReason = 32
	AlarmHighTemperature    AlarmReason = 64
	AlarmMidVoltage         AlarmReason = 128
	AlarmOverload           AlarmReason = 256
	AlarmDCRipple           AlarmReason = 512
	AlarmLowVACOut          AlarmReason = 1024
	AlarmHighVACOut         AlarmReason = 2048
)

var alarmReasonNames = []struct {
	bit  AlarmReason
	name string
}{
	{AlarmLowVoltage, "low_voltage"},
	{AlarmHighVoltage, "high_voltage"},
	{AlarmLowSOC, "low_soc"},
	{AlarmLowStarterVoltage, "low_starter_voltage"},
	{AlarmHighStarterVoltage, "high_starter_voltage"},
	{AlarmLowTemperature, "low_temperature"},
	{AlarmHighTemperature, "high_temperature"},
	{AlarmMidVoltage, "mid_voltage"},
	{AlarmOverload, "overload"},
	{AlarmDCRipple, "dc_ripple"},
	{AlarmLowVACOut, "low_vac_out"},
	{AlarmHighVACOut, "high_vac_out"},
}

// Has 检查单个报警位。
func (a AlarmReason) Has(bit AlarmReason) bool { return a&bit != 0 }

func (a AlarmReason) String() string {
	if a == 0 {
		return "none"
	}
	out := ""
	rest := a
	for _, e := range alarmReasonNames {
		if rest&e.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += e.name
			rest &^= e.bit
		}
	}
	if rest != 0 {
		if out != "" {
			out += "|"
		}
		out += fmt.Sprintf("unknown(%#x)", int64(rest))
	}
	return out
}

// DeviceMode 逆变器运行模式（MODE 字段）。
type DeviceMode int64

const (
	ModeInverterOn DeviceMode = 2
	ModeDeviceOff  DeviceMode = 4
	ModeEcoOn      DeviceMode = 5
)

func (m DeviceMode) String() string {
	switch m {
	case ModeInverterOn:
		return "inverter_on"
	case ModeDeviceOff:
		return "device_off"
	case ModeEcoOn:
		return "eco_on"
	}
	return fmt.Sprintf("unknown(%d)", int64(m))
}
