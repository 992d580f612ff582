package device

import "github.com/taoyao-code/vedirect-server/internal/vedirect"

// MPPT BlueSolar / SmartSolar 充电控制器的一帧遥测。
// 电压单位 V，电流单位 A，功率单位 W，电量单位 kWh。
type MPPT struct {
	Product  ProductID
	Firmware FirmwareVersion
	Serial   SerialNumber

	BatteryVoltage float64 // V 字段
	BatteryCurrent float64 // I 字段
	PanelVoltage   float64 // VPV 字段
	PanelPower     int64   // PPV 字段，W

	ChargeState ChargeState
	Tracker     TrackerState
	OffReason   *OffReason
	Error       ErrorCode

	// LoadOutput 负载输出开关；仅带负载端子的型号上报。
	LoadOutput  *bool
	LoadCurrent *float64 // IL 字段，A

	YieldTotal        float64 // H19 字段，kWh
	YieldToday        float64 // H20 字段，kWh
	PowerMaxToday     int64   // H21 字段，W
	YieldYesterday    float64 // H22 字段，kWh
	PowerMaxYesterday int64   // H23 字段，W

	DaySequence int64 // HSDS 字段，0-364 循环
}

// MPPTMapper 把字段集映射为 MPPT 记录，实现 vedirect.Mapper[MPPT]。
type MPPTMapper struct{}

var _ vedirect.Mapper[MPPT] = MPPTMapper{}

func (MPPTMapper) MapFields(fields map[string]string, checksum byte) (MPPT, error) {
	var m MPPT
	var err error

	if m.Product, err = fieldPID(fields, "PID"); err != nil {
		return MPPT{}, err
	}
	fw, ok, err := parseFirmwareField(fields)
	if err != nil {
		return MPPT{}, err
	}
	if !ok {
		return MPPT{}, &vedirect.MissingFieldError{Label: "FW"}
	}
	m.Firmware = fw
	ser, err := fieldString(fields, "SER#")
	if err != nil {
		return MPPT{}, err
	}
	if m.Serial, err = ParseSerialNumber(ser); err != nil {
		return MPPT{}, err
	}

	if m.BatteryVoltage, err = fieldMilli(fields, "V"); err != nil {
		return MPPT{}, err
	}
	if m.BatteryCurrent, err = fieldMilli(fields, "I"); err != nil {
		return MPPT{}, err
	}
	if m.PanelVoltage, err = fieldMilli(fields, "VPV"); err != nil {
		return MPPT{}, err
	}
	if m.PanelPower, err = fieldInt(fields, "PPV"); err != nil {
		return MPPT{}, err
	}

	cs, err := fieldInt(fields, "CS")
	if err != nil {
		return MPPT{}, err
	}
	m.ChargeState = ChargeState(cs)
	tr, err := fieldInt(fields, "MPPT")
	if err != nil {
		return MPPT{}, err
	}
	m.Tracker = TrackerState(tr)
	if or, err := optionalInt(fields, "OR"); err != nil {
		return MPPT{}, err
	} else if or != nil {
		r := OffReason(*or)
		m.OffReason = &r
	}
	ec, err := fieldInt(fields, "ERR")
	if err != nil {
		return MPPT{}, err
	}
	m.Error = ErrorCode(ec)

	if m.LoadOutput, err = optionalBool(fields, "LOAD"); err != nil {
		return MPPT{}, err
	}
	if m.LoadCurrent, err = optionalMilli(fields, "IL"); err != nil {
		return MPPT{}, err
	}

	if m.YieldTotal, err = fieldCentiKWh(fields, "H19"); err != nil {
		return MPPT{}, err
	}
	if m.YieldToday, err = fieldCentiKWh(fields, "H20"); err != nil {
		return MPPT{}, err
	}
	if m.PowerMaxToday, err = fieldInt(fields, "H21"); err != nil {
		return MPPT{}, err
	}
	if m.YieldYesterday, err = fieldCentiKWh(fields, "H22"); err != nil {
		return MPPT{}, err
	}
	if m.PowerMaxYesterday, err = fieldInt(fields, "H23"); err != nil {
		return MPPT{}, err
	}
	if m.DaySequence, err = fieldInt(fields, "HSDS"); err != nil {
		return MPPT{}, err
	}
	return m, nil
}
