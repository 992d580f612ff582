package device

import "fmt"

// ProductID VE.Direct PID 字段上报的产品ID（十六进制，如 0xA042）。
type ProductID uint32

const (
	ProductBMV700  ProductID = 0x203
	ProductBMV702  ProductID = 0x204
	ProductBMV700H ProductID = 0x205

	ProductBlueSolarMPPT70_15      ProductID = 0x300
	ProductBlueSolarMPPT75_50      ProductID = 0xA040
	ProductBlueSolarMPPT150_35Rev1 ProductID = 0xA041
	ProductBlueSolarMPPT75_15      ProductID = 0xA042
	ProductBlueSolarMPPT100_15     ProductID = 0xA043
	ProductBlueSolarMPPT100_30Rev1 ProductID = 0xA044
	ProductBlueSolarMPPT100_50Rev1 ProductID = 0xA045
	ProductBlueSolarMPPT150_70     ProductID = 0xA046
	ProductBlueSolarMPPT150_100    ProductID = 0xA047
	ProductBlueSolarMPPT100_50Rev2 ProductID = 0xA049
	ProductBlueSolarMPPT100_30Rev2 ProductID = 0xA04A
	ProductBlueSolarMPPT150_35Rev2 ProductID = 0xA04B
	ProductBlueSolarMPPT75_10      ProductID = 0xA04C
	ProductBlueSolarMPPT150_45     ProductID = 0xA04D
	ProductBlueSolarMPPT150_60     ProductID = 0xA04E
	ProductBlueSolarMPPT150_85     ProductID = 0xA04F

	ProductSmartSolarMPPT250_100 ProductID = 0xA050
	ProductSmartSolarMPPT150_100 ProductID = 0xA051

	ProductPhoenix12V250VA ProductID = 0xA201
	ProductPhoenix24V250VA ProductID = 0xA202
	ProductPhoenix48V250VA ProductID = 0xA204
	ProductPhoenix12V375VA ProductID = 0xA211
	ProductPhoenix24V375VA ProductID = 0xA212
	ProductPhoenix48V375VA ProductID = 0xA214
	ProductPhoenix12V500VA ProductID = 0xA221
	ProductPhoenix24V500VA ProductID = 0xA222
	ProductPhoenix48V500VA ProductID = 0xA224
)

var productNames = map[ProductID]string{
	ProductBMV700:  "BMV-700",
	ProductBMV702:  "BMV-702",
	ProductBMV700H: "BMV-700H",

	ProductBlueSolarMPPT70_15:      "BlueSolar MPPT 70/15",
	ProductBlueSolarMPPT75_50:      "BlueSolar MPPT 75/50",
	ProductBlueSolarMPPT150_35Rev1: "BlueSolar MPPT 150/35 rev1",
	ProductBlueSolarMPPT75_15:      "BlueSolar MPPT 75/15",
	ProductBlueSolarMPPT100_15:     "BlueSolar MPPT 100/15",
	ProductBlueSolarMPPT100_30Rev1: "BlueSolar MPPT 100/30 rev1",
	ProductBlueSolarMPPT100_50Rev1: "BlueSolar MPPT 100/50 rev1",
	ProductBlueSolarMPPT150_70:     "BlueSolar MPPT 150/70",
	ProductBlueSolarMPPT150_100:    "BlueSolar MPPT 150/100",
	ProductBlueSolarMPPT100_50Rev2: "BlueSolar MPPT 100/50 rev2",
	ProductBlueSolarMPPT100_30Rev2: "BlueSolar MPPT 100/30 rev2",
	ProductBlueSolarMPPT150_35Rev2: "BlueSolar MPPT 150/35 rev2",
	ProductBlueSolarMPPT75_10:      "BlueSolar MPPT 75/10",
	ProductBlueSolarMPPT150_45:     "BlueSolar MPPT 150/45",
	ProductBlueSolarMPPT150_60:     "BlueSolar MPPT 150/60",
	ProductBlueSolarMPPT150_85:     "BlueSolar MPPT 150/85",

	ProductSmartSolarMPPT250_100: "SmartSolar MPPT 250/100",
	ProductSmartSolarMPPT150_100: "SmartSolar MPPT 150/100",

	ProductPhoenix12V250VA: "Phoenix Inverter 12V 250VA 230V",
	ProductPhoenix24V250VA: "Phoenix Inverter 24V 250VA 230V",
	ProductPhoenix48V250VA: "Phoenix Inverter 48V 250VA 230V",
	ProductPhoenix12V375VA: "Phoenix Inverter 12V 375VA 230V",
	ProductPhoenix24V375VA: "Phoenix Inverter 24V 375VA 230V",
	ProductPhoenix48V375VA: "Phoenix Inverter 48V 375VA 230V",
	ProductPhoenix12V500VA: "Phoenix Inverter 12V 500VA 230V",
	ProductPhoenix24V500VA: "Phoenix Inverter 24V 500VA 230V",
	ProductPhoenix48V500VA: "Phoenix Inverter 48V 500VA 230V",
}

// Name 返回产品名称；未收录的ID回退为 Unknown 变体，不报错。
func (p ProductID) Name() string {
	if name, ok := productNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%X)", uint32(p))
}

// Known 该ID是否在产品表中。
func (p ProductID) Known() bool {
	_, ok := productNames[p]
	return ok
}

// Family 按ID段推断设备族。新发布的同族型号即使不在产品表中也能归族。
func (p ProductID) Family() Kind {
	switch {
	case p >= 0x200 && p <= 0x2FF:
		return KindBMV
	case p == ProductBlueSolarMPPT70_15,
		p >= 0xA000 && p <= 0xA0FF:
		return KindMPPT
	case p >= 0xA200 && p <= 0xA2FF:
		return KindPhoenix
	}
	return KindUnknown
}

func (p ProductID) String() string {
	return fmt.Sprintf("0x%X", uint32(p))
}
