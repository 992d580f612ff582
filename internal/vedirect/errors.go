package vedirect

import (
	"errors"
	"fmt"
)

// ErrNeedMoreData 表示当前缓冲不足以判定一个完整语法单元。
// 调用方补充字节后重试即可，不是失败。
var ErrNeedMoreData = errors.New("need more data")

// ParseError 语法错误：当前位置的字节无法构成合法的行。
// Offset 为相对待解析缓冲起始的偏移。
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vedirect: parse error at offset %d: %s", e.Offset, e.Reason)
}

// ChecksumError 帧结构完整但累加校验不为0。
// Sum 为整帧（含校验字节）的模256累加和，合法帧应为0。
type ChecksumError struct {
	Sum byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("vedirect: checksum mismatch, frame sum %#02x (want 0)", e.Sum)
}

// MissingFieldError 映射阶段缺少必需标签。
// 该 Block 被丢弃，但属于可恢复情形：不同固件/型号可能省略字段。
type MissingFieldError struct {
	Label string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("vedirect: missing required field %q", e.Label)
}

// ValueError 字段值无法转换为期望表示。
// 保留标签与原始值，便于测试按结构匹配而非匹配消息文本。
type ValueError struct {
	Label string
	Raw   string
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("vedirect: field %q has invalid value %q: %v", e.Label, e.Raw, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }
