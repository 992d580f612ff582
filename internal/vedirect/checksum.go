// Package vedirect 实现 Victron VE.Direct 文本协议的增量解析：
// 行级语法、模256累加校验与跨 Feed 调用的流式 Block 组装。
package vedirect

// Calculate 返回使 data 连同该字节的累加和模256为0的校验字节。
func Calculate(data []byte) byte {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return byte((0x100 - (sum & 0xFF)) & 0xFF)
}

// Verify 校验含校验字节的完整帧：全部字节累加和模256为0即有效。
func Verify(frame []byte) bool {
	var sum uint32
	for _, b := range frame {
		sum += uint32(b)
	}
	return sum&0xFF == 0
}

// Append 在 payload 后附加单个校验字节，返回新切片。
// 供编码与测试路径使用，流式解析自身不依赖它。
func Append(payload []byte, sum byte) []byte {
	out := make([]byte, 0, len(payload)+1)
	out = append(out, payload...)
	return append(out, sum)
}
