package device

import "github.com/taoyao-code/vedirect-server/internal/vedirect"

// Phoenix Phoenix 逆变器的一帧遥测。
type Phoenix struct {
	Product  ProductID
	Firmware FirmwareVersion
	Serial   SerialNumber

	Mode DeviceMode // MODE 字段

	BatteryVoltage float64  // V 字段,V
	OutputVoltage  *float64 // AC_OUT_V 字段,V
	OutputCurrent  *float64 // AC_OUT_I 字段,A

	ChargeState *ChargeState // CS 字段
	AlarmReason AlarmReason  // AR 字段
	Warning     AlarmReason  // WARN 字段,位定义同 AR
	OffReason   *OffReason   // OR 字段
}

// PhoenixMapper 把字段集映射为 Phoenix 记录,实现 vedirect.Mapper[Phoenix]。
type PhoenixMapper struct{}

var _ vedirect.Mapper[Phoenix] = PhoenixMapper{}

func (PhoenixMapper) MapFields(fields map[string]string, checksum byte) (Phoenix, error) {
	var p Phoenix
	var err error

	if p.Product, err = fieldPID(fields, "PID"); err != nil {
		return Phoenix{}, err
	}
	fw, ok, err := parseFirmwareField(fields)
	if err != nil {
		return Phoenix{}, err
	}
	if !ok {
		return Phoenix{}, &vedirect.MissingFieldError{Label: "FW"}
	}
	p.Firmware = fw
	ser, err := fieldString(fields, "SER#")
	if err != nil {
		return Phoenix{}, err
	}
	if p.Serial, err = ParseSerialNumber(ser); err != nil {
		return Phoenix{}, err
	}

	mode, err := fieldInt(fields, "MODE")
	if err != nil {
		return Phoenix{}, err
	}
	p.Mode = DeviceMode(mode)

	if p.BatteryVoltage, err = fieldMilli(fields, "V"); err != nil {
		return Phoenix{}, err
	}
	// AC 侧为 0.01V / 0.1A 粒度。
	if v, err := optionalInt(fields, "AC_OUT_V"); err != nil {
		return Phoenix{}, err
	} else if v != nil {
		f := float64(*v) / 100
		p.OutputVoltage = &f
	}
	if i, err := optionalInt(fields, "AC_OUT_I"); err != nil {
		return Phoenix{}, err
	} else if i != nil {
		f := float64(*i) / 10
		p.OutputCurrent = &f
	}

	if cs, err := optionalInt(fields, "CS"); err != nil {
		return Phoenix{}, err
	} else if cs != nil {
		s := ChargeState(*cs)
		p.ChargeState = &s
	}
	if ar, err := optionalInt(fields, "AR"); err != nil {
		return Phoenix{}, err
	} else if ar != nil {
		p.AlarmReason = AlarmReason(*ar)
	}
	if warn, err := optionalInt(fields, "WARN"); err != nil {
		return Phoenix{}, err
	} else if warn != nil {
		p.Warning = AlarmReason(*warn)
	}
	if or, err := optionalInt(fields, "OR"); err != nil {
		return Phoenix{}, err
	} else if or != nil {
		r := OffReason(*or)
		p.OffReason = &r
	}
	return p, nil
}
