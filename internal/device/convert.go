package device

import (
	"errors"
	"strconv"
	"strings"

	"github.com/taoyao-code/vedirect-server/internal/vedirect"
)

var errNegativePID = errors.New("negative product id")

// 字段取值与单位换算。VE.Direct 文本帧的数值统一以整数字符串上报，
// 电压/电流为 mV/mA，历史电量为 0.01kWh，SOC 为千分比。
// 缺字段返回 *vedirect.MissingFieldError，值非法返回 *vedirect.ValueError，
// 由调用方（映射器）原样向上抛给流层分类。

func fieldString(fields map[string]string, label string) (string, error) {
	raw, ok := fields[label]
	if !ok {
		return "", &vedirect.MissingFieldError{Label: label}
	}
	return raw, nil
}

// fieldMilli 读取 mV/mA 整数字段并换算为 V/A。
func fieldMilli(fields map[string]string, label string) (float64, error) {
	raw, err := fieldString(fields, label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &vedirect.ValueError{Label: label, Raw: raw, Err: err}
	}
	return float64(n) / 1000, nil
}

// fieldCentiKWh 读取 0.01kWh 整数字段并换算为 kWh。
func fieldCentiKWh(fields map[string]string, label string) (float64, error) {
	raw, err := fieldString(fields, label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &vedirect.ValueError{Label: label, Raw: raw, Err: err}
	}
	return float64(n) / 100, nil
}

func fieldInt(fields map[string]string, label string) (int64, error) {
	raw, err := fieldString(fields, label)
	if err != nil {
		return 0, err
	}
	n, err := parseMaybeHex(raw)
	if err != nil {
		return 0, &vedirect.ValueError{Label: label, Raw: raw, Err: err}
	}
	return n, nil
}

// parseMaybeHex 枚举类字段在部分固件上以 0x 前缀十六进制上报。
func parseMaybeHex(raw string) (int64, error) {
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return strconv.ParseInt(raw[2:], 16, 64)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// fieldPercent 读取千分比字段换算为百分比。BMV 启动后 SOC 未同步时
// 上报 "---"，此时返回 nil 而非错误。
func fieldPercent(fields map[string]string, label string) (*float64, error) {
	raw, err := fieldString(fields, label)
	if err != nil {
		return nil, err
	}
	if raw == "---" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &vedirect.ValueError{Label: label, Raw: raw, Err: err}
	}
	v := float64(n) / 10
	return &v, nil
}

// fieldBool VE.Direct 布尔字段以 ON/OFF 字符串上报。
func fieldBool(fields map[string]string, label string) (bool, error) {
	raw, err := fieldString(fields, label)
	if err != nil {
		return false, err
	}
	// 部分固件在 ON 前带有填充字符，按包含判断。
	return strings.Contains(raw, "ON"), nil
}

// optionalMilli 同 fieldMilli，字段缺失时返回 nil。
func optionalMilli(fields map[string]string, label string) (*float64, error) {
	if _, ok := fields[label]; !ok {
		return nil, nil
	}
	v, err := fieldMilli(fields, label)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// optionalInt 同 fieldInt，字段缺失时返回 nil。
func optionalInt(fields map[string]string, label string) (*int64, error) {
	if _, ok := fields[label]; !ok {
		return nil, nil
	}
	v, err := fieldInt(fields, label)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// optionalBool 同 fieldBool，字段缺失时返回 nil。
func optionalBool(fields map[string]string, label string) (*bool, error) {
	if _, ok := fields[label]; !ok {
		return nil, nil
	}
	v, err := fieldBool(fields, label)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// fieldPID 解析 PID 字段（0x 前缀十六进制）。
func fieldPID(fields map[string]string, label string) (ProductID, error) {
	raw, err := fieldString(fields, label)
	if err != nil {
		return 0, err
	}
	n, err := parseMaybeHex(raw)
	if err != nil {
		return 0, &vedirect.ValueError{Label: label, Raw: raw, Err: err}
	}
	if n < 0 {
		return 0, &vedirect.ValueError{Label: label, Raw: raw, Err: errNegativePID}
	}
	return ProductID(n), nil
}
