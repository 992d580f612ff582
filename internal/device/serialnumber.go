package device

import (
	"fmt"
	"strconv"

	"github.com/taoyao-code/vedirect-server/internal/vedirect"
)

// SerialNumber 出厂序列号，SER# 字段。格式 LLYYWWSSSSS：
// 两位产线编号、两位年份、两位生产周、五位流水号。
type SerialNumber struct {
	Line string
	Year int
	Week int
	// Serial 五位流水号；部分批次含字母。
	Serial string
	// Raw 保留原始字符串；个别批次带有后缀，格式化时按原样回放。
	Raw string
}

// ParseSerialNumber 解析 SER# 字段值。
func ParseSerialNumber(raw string) (SerialNumber, error) {
	if len(raw) < 11 {
		return SerialNumber{}, &vedirect.ValueError{
			Label: "SER#", Raw: raw,
			Err: fmt.Errorf("serial number too short: %d bytes", len(raw)),
		}
	}
	year, err := strconv.Atoi(raw[2:4])
	if err != nil {
		return SerialNumber{}, &vedirect.ValueError{Label: "SER#", Raw: raw, Err: err}
	}
	week, err := strconv.Atoi(raw[4:6])
	if err != nil {
		return SerialNumber{}, &vedirect.ValueError{Label: "SER#", Raw: raw, Err: err}
	}
	return SerialNumber{
		Line:   raw[0:2],
		Year:   2000 + year,
		Week:   week,
		Serial: raw[6:11],
		Raw:    raw,
	}, nil
}

func (s SerialNumber) String() string { return s.Raw }
