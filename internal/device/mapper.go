package device

import (
	"errors"

	"github.com/taoyao-code/vedirect-server/internal/vedirect"
)

// AutoMapper 按 PID 字段的设备族分发到具体映射器,实现
// vedirect.Mapper[Record]。一条串口链路上的设备型号事先未知时用它;
// 型号已知时直接用族映射器可免去 Record 封装。
type AutoMapper struct {
	mppt    MPPTMapper
	bmv     BMVMapper
	phoenix PhoenixMapper
}

var _ vedirect.Mapper[Record] = AutoMapper{}

var errUnknownFamily = errors.New("product id not in a known device family")

func (a AutoMapper) MapFields(fields map[string]string, checksum byte) (Record, error) {
	raw, ok := fields["PID"]
	if !ok {
		// 无 PID 只可能是老款 BMV。
		b, err := a.bmv.MapFields(fields, checksum)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindBMV, BMV: &b}, nil
	}
	pid, err := fieldPID(fields, "PID")
	if err != nil {
		return Record{}, err
	}
	switch pid.Family() {
	case KindMPPT:
		m, err := a.mppt.MapFields(fields, checksum)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindMPPT, MPPT: &m}, nil
	case KindBMV:
		b, err := a.bmv.MapFields(fields, checksum)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindBMV, BMV: &b}, nil
	case KindPhoenix:
		p, err := a.phoenix.MapFields(fields, checksum)
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindPhoenix, Phoenix: &p}, nil
	}
	return Record{}, &vedirect.ValueError{Label: "PID", Raw: raw, Err: errUnknownFamily}
}
