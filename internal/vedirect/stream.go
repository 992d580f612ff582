package vedirect

import (
	"bytes"
	"errors"
)

// Events 流式解析的消费回调。单线程同步调用：回调返回前 Feed 不会继续。
// OnParseError 传入的 buf 是内部解析缓冲的别名视图，仅在回调期间有效，
// 消费方不得在回调返回后继续持有。
type Events[T any] interface {
	// OnBlock 一个校验通过且映射成功的 Block
	OnBlock(rec T)
	// OnMissingField 结构完整的 Block 缺少必需标签，该 Block 已被丢弃
	OnMissingField(label string)
	// OnMappingError 字段值转换失败，解析位置照常推进
	OnMappingError(err error)
	// OnParseError 语法错误或校验失败，附当前未消耗的缓冲以便诊断
	OnParseError(err error, buf []byte)
}

// HexRunObserver 可由 Events 实现的可选扩展：每跳过一段二进制 HEX 帧
// 通知一次，供指标统计。
type HexRunObserver interface {
	OnHexRun()
}

// Mapper 把一个 Block 累积出的 label->value 映射转换为具体设备记录。
// 失败时返回 *MissingFieldError（缺必需标签）或其他转换错误，三种结局
// 由 Stream 分别处理。
type Mapper[T any] interface {
	MapFields(fields map[string]string, checksum byte) (T, error)
}

// Stream 流式 Block 组装状态机。持有跨 Feed 调用的解析缓冲，完成首次
// 对齐、HEX 帧跳过、字段累积与错误后的重新同步。
// 非并发安全：每个实例同一时刻只能有一个 Feed 调用（串口读循环天然满足）；
// 多路遥测流各建各的实例。
type Stream[T any] struct {
	mapper Mapper[T]
	events Events[T]
	hexObs HexRunObserver // events 的可选能力，构造时探测一次

	buf     []byte
	fields  map[string]string
	aligned bool
	sum     uint32 // 当前 Block 已消耗字节的累加和，跳过的 HEX 字节不计入
}

// NewStream 创建流式解析器。mapper 与 events 均不可为 nil。
func NewStream[T any](mapper Mapper[T], events Events[T]) *Stream[T] {
	s := &Stream[T]{
		mapper: mapper,
		events: events,
		fields: make(map[string]string),
	}
	s.hexObs, _ = any(events).(HexRunObserver)
	return s
}

// Feed 追加新读到的字节并尽可能向前消费。每次调用要么在可识别单元耗尽
// （等待更多数据）时正常返回，要么在语法错误复位后返回；两种都不是调用
// 方层面的失败，所有结局经由 Events 通知。任意切分的输入（逐字节乃至在
// 校验字节内部切断）与整段输入产生相同的记录序列。
func (s *Stream[T]) Feed(p []byte) {
	s.buf = append(s.buf, p...)

	// 流不保证从帧边界开始：丢弃首个 CRLF 之前的所有字节
	if !s.aligned && !s.align() {
		return
	}

	for {
		skipped, need := s.skipHexRun()
		if need {
			return
		}
		if skipped {
			if s.hexObs != nil {
				s.hexObs.OnHexRun()
			}
			continue
		}

		label, value, n, err := scanLine(s.buf)
		if errors.Is(err, ErrNeedMoreData) {
			// 半行：保留未消耗的尾部，等下一次 Feed
			return
		}
		if err != nil {
			s.events.OnParseError(err, s.buf)
			s.reset()
			return
		}

		for i := 0; i < n; i++ {
			s.sum += uint32(s.buf[i])
		}
		s.buf = s.buf[n:]

		if label != ChecksumLabel {
			// 值拷贝为独立字符串，跨回调边界不借用解析缓冲；同名后写覆盖
			s.fields[label] = string(value)
			continue
		}
		s.closeBlock(value[0])
	}
}

// align 寻找首个 CRLF 并丢弃之前的字节。未找到时最多保留一个可能被
// 截断的尾部 '\r'。
func (s *Stream[T]) align() bool {
	if i := bytes.Index(s.buf, []byte{'\r', '\n'}); i >= 0 {
		s.buf = s.buf[i:]
		s.aligned = true
		return true
	}
	if n := len(s.buf); n > 0 && s.buf[n-1] == '\r' {
		s.buf = s.buf[n-1:]
	} else {
		s.buf = s.buf[:0]
	}
	return false
}

// skipHexRun 识别并丢弃二进制 HEX 帧：':' 紧跟大写 'A'，吞到下一个 LF
// 为止（含）。帧间与行间（前导 CRLF 之后）两个位置都可能出现；前导 CRLF
// 属于下一条文本行，保留。跳过的字节不参与文本帧校验。
// 返回 (是否跳过了一段, 是否需要更多数据)。
func (s *Stream[T]) skipHexRun() (bool, bool) {
	off := 0
	if len(s.buf) >= 2 && s.buf[0] == '\r' && s.buf[1] == '\n' {
		off = 2
	}
	if off >= len(s.buf) || s.buf[off] != ':' {
		return false, false
	}
	if off+1 >= len(s.buf) {
		// 可能是 ":A" 被切断，等一个字节再判定
		return false, true
	}
	if s.buf[off+1] != 'A' {
		return false, false
	}
	nl := bytes.IndexByte(s.buf[off:], '\n')
	if nl < 0 {
		// 未见 LF：整段保留，不报错
		return false, true
	}
	s.buf = append(s.buf[:off], s.buf[off+nl+1:]...)
	return true, false
}

// closeBlock 校验行到达，结算当前 Block。
func (s *Stream[T]) closeBlock(checksum byte) {
	if s.sum&0xFF != 0 {
		// 校验失败只废弃本 Block，不触发整体重新同步
		s.events.OnParseError(&ChecksumError{Sum: byte(s.sum & 0xFF)}, s.buf)
		s.discardBlock()
		return
	}

	rec, err := s.mapper.MapFields(s.fields, checksum)
	switch {
	case err == nil:
		s.events.OnBlock(rec)
	default:
		var missing *MissingFieldError
		if errors.As(err, &missing) {
			s.events.OnMissingField(missing.Label)
		} else {
			s.events.OnMappingError(err)
		}
	}
	s.discardBlock()
}

// discardBlock 清空进行中的字段集，缓冲位置保持推进。
func (s *Stream[T]) discardBlock() {
	for k := range s.fields {
		delete(s.fields, k)
	}
	s.sum = 0
}

// reset 语法错误后的完全复位：丢弃缓冲与字段集，下一次 Feed 重新对齐。
func (s *Stream[T]) reset() {
	s.buf = nil
	s.aligned = false
	s.discardBlock()
}

// Buffered 返回当前未消耗的字节数，供指标与测试观察。
func (s *Stream[T]) Buffered() int { return len(s.buf) }
