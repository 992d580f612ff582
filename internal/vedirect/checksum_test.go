package vedirect

import "testing"

func TestCalculate_RoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{0x00},
		{0xFF},
		{0xFF, 0xFF, 0xFF},
		[]byte("\r\nPID\t0xA042\r\nChecksum\t"),
	}
	for _, payload := range cases {
		frame := Append(payload, Calculate(payload))
		if !Verify(frame) {
			t.Fatalf("round trip failed for payload %q", payload)
		}
	}
}

func TestCalculate_EmptyInput(t *testing.T) {
	if got := Calculate(nil); got != 0 {
		t.Fatalf("empty payload checksum = %#02x, want 0", got)
	}
}

func TestCalculate_FullByteDomain(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	if !Verify(Append(data, Calculate(data))) {
		t.Fatalf("round trip failed over full 0..255 domain")
	}
}

// 校验和只取决于字节值，与分组方式无关
func TestCalculate_GroupingIndependent(t *testing.T) {
	a := []byte("\r\nV\t12000")
	b := []byte("\r\nChecksum\t")

	whole := append(append([]byte{}, a...), b...)
	var incremental uint32
	for _, chunk := range [][]byte{a, b} {
		for _, c := range chunk {
			incremental += uint32(c)
		}
	}
	want := byte((0x100 - (incremental & 0xFF)) & 0xFF)
	if got := Calculate(whole); got != want {
		t.Fatalf("grouped calculation diverged: got %#02x want %#02x", got, want)
	}
}

func TestAppend_DoesNotAliasPayload(t *testing.T) {
	payload := make([]byte, 4, 16)
	out := Append(payload, 0x42)
	out[0] = 0xEE
	if payload[0] == 0xEE {
		t.Fatalf("Append must copy the payload")
	}
}

// 每收到一帧都要算一次，保持热路径无分配
func BenchmarkCalculate(b *testing.B) {
	data := make([]byte, 255)
	for i := range data {
		data[i] = byte(i)
	}
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		Calculate(data)
	}
}
