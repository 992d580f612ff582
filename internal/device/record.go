// Package device 把 VE.Direct Block 的通用字段集映射为带单位的类型化
// 设备记录，并维护产品ID、状态码等查找表。
package device

// Kind 设备族标识
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindMPPT    Kind = "mppt"    // BlueSolar / SmartSolar 充电控制器
	KindBMV     Kind = "bmv"     // BMV 电池监测仪
	KindPhoenix Kind = "phoenix" // Phoenix 逆变器
)

// Record 一个 Block 映射后的设备记录。封闭和类型：Kind 指明哪个分支非空。
type Record struct {
	Kind    Kind     `json:"kind"`
	MPPT    *MPPT    `json:"mppt,omitempty"`
	BMV     *BMV700  `json:"bmv,omitempty"`
	Phoenix *Phoenix `json:"phoenix,omitempty"`
}

// Serial 返回记录对应设备的序列号字符串；未知族返回空串。
func (r Record) Serial() string {
	switch r.Kind {
	case KindMPPT:
		return r.MPPT.Serial.String()
	case KindBMV:
		return r.BMV.Serial.String()
	case KindPhoenix:
		return r.Phoenix.Serial.String()
	}
	return ""
}

// Product 返回记录对应的产品ID；未知族返回0。
func (r Record) Product() ProductID {
	switch r.Kind {
	case KindMPPT:
		return r.MPPT.Product
	case KindBMV:
		return r.BMV.Product
	case KindPhoenix:
		return r.Phoenix.Product
	}
	return 0
}
