package vedirect

import "bytes"

// BuildFrame 按给定顺序把字段编码为一个完整文本帧并附加校验字节。
// 供模拟器与测试构造线缆字节，与 Parse 互逆。
func BuildFrame(fields []Field) []byte {
	var b bytes.Buffer
	for _, f := range fields {
		b.WriteString("\r\n")
		b.WriteString(f.Label)
		b.WriteByte('\t')
		b.WriteString(f.Value)
	}
	b.WriteString("\r\n")
	b.WriteString(ChecksumLabel)
	b.WriteByte('\t')
	payload := b.Bytes()
	return Append(payload, Calculate(payload))
}
