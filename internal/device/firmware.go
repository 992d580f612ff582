package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taoyao-code/vedirect-server/internal/vedirect"
)

// FirmwareVersion 固件版本。FW 字段为三到四位（如 "150" = v1.50，
// "C208" = v2.08 候选版 C），FWE 字段为五到六位（末两位为发布标记）。
// 候选版本以 Candidate 标识。
type FirmwareVersion struct {
	Major     int
	Minor     int
	Candidate string
}

// ParseFirmwareVersion 解析 FW 字段值：可选的候选版字母 [A-F]
// 或补位零前缀，后接一位主版本与两位次版本。
func ParseFirmwareVersion(raw string) (FirmwareVersion, error) {
	if len(raw) < 3 || len(raw) > 4 {
		return FirmwareVersion{}, &vedirect.ValueError{
			Label: "FW", Raw: raw,
			Err: fmt.Errorf("expect 3 or 4 characters, got %d", len(raw)),
		}
	}
	digits := raw
	candidate := ""
	if len(raw) == 4 {
		switch c := raw[0]; {
		case c >= 'A' && c <= 'F':
			candidate = raw[:1]
		case c == '0':
			// 左侧补零,无候选标记
		default:
			return FirmwareVersion{}, &vedirect.ValueError{
				Label: "FW", Raw: raw,
				Err: fmt.Errorf("4-character version must start with a candidate letter A-F or a padding zero"),
			}
		}
		digits = raw[1:]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return FirmwareVersion{}, &vedirect.ValueError{Label: "FW", Raw: raw, Err: err}
	}
	return FirmwareVersion{Major: n / 100, Minor: n % 100, Candidate: candidate}, nil
}

// ParseFirmwareVersion24 解析 FWE 字段值（24位版本格式）。
// 末两位 "FF" 表示正式发布，字母结尾表示候选版本。
func ParseFirmwareVersion24(raw string) (FirmwareVersion, error) {
	if len(raw) < 5 || len(raw) > 6 {
		return FirmwareVersion{}, &vedirect.ValueError{
			Label: "FWE", Raw: raw,
			Err: fmt.Errorf("expect 5 or 6 characters, got %d", len(raw)),
		}
	}
	tail := raw[len(raw)-2:]
	head := raw[:len(raw)-2]
	candidate := ""
	if !strings.EqualFold(tail, "FF") {
		candidate = tail
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return FirmwareVersion{}, &vedirect.ValueError{Label: "FWE", Raw: raw, Err: err}
	}
	return FirmwareVersion{Major: n / 100, Minor: n % 100, Candidate: candidate}, nil
}

// parseFirmwareField 从字段集取固件版本。新固件上报 FWE,老固件上报 FW,
// 同时存在时 FWE 优先。两个字段都缺席返回 ok=false。
func parseFirmwareField(fields map[string]string) (FirmwareVersion, bool, error) {
	if raw, ok := fields["FWE"]; ok {
		v, err := ParseFirmwareVersion24(raw)
		return v, true, err
	}
	if raw, ok := fields["FW"]; ok {
		v, err := ParseFirmwareVersion(raw)
		return v, true, err
	}
	return FirmwareVersion{}, false, nil
}

func (v FirmwareVersion) String() string {
	if v.Candidate != "" {
		return fmt.Sprintf("v%d.%02d-%s", v.Major, v.Minor, v.Candidate)
	}
	return fmt.Sprintf("v%d.%02d", v.Major, v.Minor)
}
