package vedirect

import "errors"

// ChecksumLabel 保留标签：该行携带单个校验字节并终结一个 Block。
const ChecksumLabel = "Checksum"

// Field 一条 label/value 字段。标签为不含分隔符与控制字节的可见 ASCII
// 片段（允许标点，如 SER#），值为到下一个 CRLF 之前的任意非控制字节。
type Field struct {
	Label string
	Value string
}

// scanLine 从 p 的行首解析一个语法单元。每行以 CRLF 引导：
//
//	普通字段  \r\n <label> \t <value>          （行尾 CRLF 属于下一行）
//	校验行    \r\n Checksum \t <1字节>         （无行尾分隔，帧到此为止）
//
// 返回标签、原始值（校验行时为单个校验字节）与消耗的字节数。
// 缓冲不足以判定完整一行时返回 ErrNeedMoreData 且不消耗任何字节。
func scanLine(p []byte) (label string, value []byte, n int, err error) {
	if len(p) == 0 || (len(p) == 1 && p[0] == '\r') {
		return "", nil, 0, ErrNeedMoreData
	}
	if p[0] != '\r' || p[1] != '\n' {
		return "", nil, 0, &ParseError{Offset: 0, Reason: "expected CRLF at line start"}
	}

	// 标签：到 \t 为止。历史缺陷：按字母数字匹配会拒绝 SER# 这类标签，
	// 这里只排除分隔符与控制字节。
	i := 2
	start := i
	for {
		if i >= len(p) {
			return "", nil, 0, ErrNeedMoreData
		}
		c := p[i]
		if c == '\t' {
			break
		}
		if c < 0x20 || c == 0x7F {
			return "", nil, 0, &ParseError{Offset: i, Reason: "control byte in label"}
		}
		i++
	}
	if i == start {
		return "", nil, 0, &ParseError{Offset: i, Reason: "empty label"}
	}
	label = string(p[start:i])
	i++ // \t

	if label == ChecksumLabel {
		// 校验字节可为任意值 0x00..0xFF，且本身就是帧的最后一个字节
		if i >= len(p) {
			return "", nil, 0, ErrNeedMoreData
		}
		return label, p[i : i+1], i + 1, nil
	}

	vstart := i
	for {
		if i >= len(p) {
			return "", nil, 0, ErrNeedMoreData
		}
		switch p[i] {
		case '\r':
			if i+1 >= len(p) {
				return "", nil, 0, ErrNeedMoreData
			}
			if p[i+1] != '\n' {
				return "", nil, 0, &ParseError{Offset: i, Reason: "bare CR in value"}
			}
			return label, p[vstart:i], i, nil
		case '\n':
			return "", nil, 0, &ParseError{Offset: i, Reason: "bare LF in value"}
		}
		i++
	}
}

// Parse 从帧边界开始解析一个完整 Block：一至多条字段行加一条校验行。
// 返回字段序列、校验字节与未消耗的剩余字节。
// 失败三态相互可区分：
//   - ErrNeedMoreData：输入在完整行判定前耗尽，未消耗任何字节；
//   - *ParseError：结构非法（缺分隔符、裸CR/LF等），调用方需重新同步；
//   - *ChecksumError：结构完整但帧累加校验失败，此时字段与剩余字节照常返回。
func Parse(data []byte) (fields []Field, checksum byte, remainder []byte, err error) {
	off := 0
	for {
		label, value, n, err := scanLine(data[off:])
		if err != nil {
			if errors.Is(err, ErrNeedMoreData) {
				return nil, 0, data, ErrNeedMoreData
			}
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Offset += off
			}
			return nil, 0, data, err
		}
		off += n
		if label != ChecksumLabel {
			fields = append(fields, Field{Label: label, Value: string(value)})
			continue
		}
		if len(fields) == 0 {
			return nil, 0, data, &ParseError{Offset: off, Reason: "checksum line without preceding fields"}
		}
		checksum = value[0]
		if !Verify(data[:off]) {
			return fields, checksum, data[off:], &ChecksumError{Sum: sum256(data[:off])}
		}
		return fields, checksum, data[off:], nil
	}
}

func sum256(data []byte) byte {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return byte(sum & 0xFF)
}
