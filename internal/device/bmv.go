package device

import "github.com/taoyao-code/vedirect-server/internal/vedirect"

// BMV700 BMV 电池监测仪的一帧遥测。
// 老固件不上报 PID / SER#，对应字段保持零值。
type BMV700 struct {
	Product  ProductID
	Firmware FirmwareVersion
	Serial   SerialNumber

	Voltage float64 // V 字段,V
	Current float64 // I 字段,A
	Power   int64   // P 字段,W

	// Consumed 累计消耗安时;部分配置下不上报。
	Consumed *float64 // CE 字段,Ah
	// SOC 电量百分比;同步前上报 "---",映射为 nil。
	SOC *float64
	// TimeToGo 按当前负载估算的剩余分钟数,-1 表示无限。
	TimeToGo int64

	Relay *bool // Relay 字段
	Alarm *bool // Alarm 字段
	// AlarmReason 报警原因位;无报警时为 0。
	AlarmReason AlarmReason

	DeepestDischarge *float64 // H1 字段,Ah
	LastDischarge    *float64 // H2 字段,Ah
	DischargedTotal  *float64 // H17 字段,kWh
	ChargedTotal     *float64 // H18 字段,kWh
}

// BMVMapper 把字段集映射为 BMV 记录,实现 vedirect.Mapper[BMV700]。
type BMVMapper struct{}

var _ vedirect.Mapper[BMV700] = BMVMapper{}

func (BMVMapper) MapFields(fields map[string]string, checksum byte) (BMV700, error) {
	var b BMV700
	var err error

	// 标识字段全部可选:BMV-700 早期固件只上报遥测。
	if _, ok := fields["PID"]; ok {
		if b.Product, err = fieldPID(fields, "PID"); err != nil {
			return BMV700{}, err
		}
	}
	if fw, ok, err := parseFirmwareField(fields); err != nil {
		return BMV700{}, err
	} else if ok {
		b.Firmware = fw
	}
	if raw, ok := fields["SER#"]; ok {
		if b.Serial, err = ParseSerialNumber(raw); err != nil {
			return BMV700{}, err
		}
	}

	if b.Voltage, err = fieldMilli(fields, "V"); err != nil {
		return BMV700{}, err
	}
	if b.Current, err = fieldMilli(fields, "I"); err != nil {
		return BMV700{}, err
	}
	if b.Power, err = fieldInt(fields, "P"); err != nil {
		return BMV700{}, err
	}

	if b.Consumed, err = optionalMilli(fields, "CE"); err != nil {
		return BMV700{}, err
	}
	if b.SOC, err = fieldPercent(fields, "SOC"); err != nil {
		return BMV700{}, err
	}
	if b.TimeToGo, err = fieldInt(fields, "TTG"); err != nil {
		return BMV700{}, err
	}

	if b.Relay, err = optionalBool(fields, "Relay"); err != nil {
		return BMV700{}, err
	}
	if b.Alarm, err = optionalBool(fields, "Alarm"); err != nil {
		return BMV700{}, err
	}
	if ar, err := optionalInt(fields, "AR"); err != nil {
		return BMV700{}, err
	} else if ar != nil {
		b.AlarmReason = AlarmReason(*ar)
	}

	if b.DeepestDischarge, err = optionalMilli(fields, "H1"); err != nil {
		return BMV700{}, err
	}
	if b.LastDischarge, err = optionalMilli(fields, "H2"); err != nil {
		return BMV700{}, err
	}
	if h17, err := optionalInt(fields, "H17"); err != nil {
		return BMV700{}, err
	} else if h17 != nil {
		v := float64(*h17) / 100
		b.DischargedTotal = &v
	}
	if h18, err := optionalInt(fields, "H18"); err != nil {
		return BMV700{}, err
	} else if h18 != nil {
		v := float64(*h18) / 100
		b.ChargedTotal = &v
	}
	return b, nil
}
