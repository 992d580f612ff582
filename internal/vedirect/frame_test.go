package vedirect

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func validFrame(fields ...Field) []byte {
	return BuildFrame(fields)
}

func TestParse_TwoFields(t *testing.T) {
	frame := validFrame(
		Field{"field1", "value1"},
		Field{"field2", "value2"},
	)
	fields, _, remainder, err := Parse(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("field count = %d, want 2", len(fields))
	}
	if fields[0].Label != "field1" || fields[0].Value != "value1" {
		t.Fatalf("unexpected first field: %+v", fields[0])
	}
	if fields[1].Label != "field2" || fields[1].Value != "value2" {
		t.Fatalf("unexpected second field: %+v", fields[1])
	}
	if len(remainder) != 0 {
		t.Fatalf("remainder = %q, want empty", remainder)
	}
}

// 标签可含标点：按字母数字匹配曾导致 SER# 字段解析失败
func TestParse_PunctuationLabel(t *testing.T) {
	frame := validFrame(Field{"SER#", "HQ1328A1B2C"})
	fields, _, _, err := Parse(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields[0].Label != "SER#" || fields[0].Value != "HQ1328A1B2C" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}
}

func TestParse_EmptyValue(t *testing.T) {
	frame := validFrame(Field{"LOAD", ""}, Field{"V", "0"})
	fields, _, _, err := Parse(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields[0].Value != "" {
		t.Fatalf("empty value not preserved: %+v", fields[0])
	}
}

// 任意前缀截断都必须报 ErrNeedMoreData，包括在校验字节内部截断
func TestParse_IncompleteAtEveryBoundary(t *testing.T) {
	frame := validFrame(Field{"V", "12000"}, Field{"I", "350"})
	for n := 0; n < len(frame); n++ {
		_, _, _, err := Parse(frame[:n])
		if !errors.Is(err, ErrNeedMoreData) {
			t.Fatalf("prefix len %d: got %v, want ErrNeedMoreData", n, err)
		}
	}
}

func TestParse_MissingTab(t *testing.T) {
	_, _, _, err := Parse([]byte("\r\nV 12000\r\nChecksum\tx"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want *ParseError", err)
	}
}

func TestParse_MissingLeadingCRLF(t *testing.T) {
	_, _, _, err := Parse([]byte("V\t12000\r\nChecksum\tx"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want *ParseError", err)
	}
	if pe.Offset != 0 {
		t.Fatalf("offset = %d, want 0", pe.Offset)
	}
}

func TestParse_ChecksumOnlyBlock(t *testing.T) {
	payload := []byte("\r\nChecksum\t")
	frame := Append(payload, Calculate(payload))
	if _, _, _, err := Parse(frame); err == nil {
		t.Fatalf("block without fields must be rejected")
	}
}

func TestParse_ChecksumMismatch(t *testing.T) {
	frame := validFrame(Field{"V", "12000"})
	frame[len(frame)-1]++ // 翻转校验字节

	fields, _, _, err := Parse(frame)
	var ce *ChecksumError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want *ChecksumError", err)
	}
	if ce.Sum != 1 {
		t.Fatalf("frame sum = %#02x, want 0x01", ce.Sum)
	}
	// 字段结构仍可用于诊断
	if len(fields) != 1 || fields[0].Label != "V" {
		t.Fatalf("fields not returned alongside checksum error: %+v", fields)
	}
}

// 校验字节可以是任意值，包括控制字节与 '\r'
func TestParse_ControlByteChecksum(t *testing.T) {
	for target := 0; target < 256; target += 13 {
		// 调整填充字段长度，使校验字节落在目标值上（'U'=85 与 256 互素，必有解）
		var frame []byte
		for pad := 0; pad < 256; pad++ {
			frame = validFrame(Field{"V", "12000"}, Field{"pad", strings.Repeat("U", pad)})
			if frame[len(frame)-1] == byte(target) {
				break
			}
		}
		if frame[len(frame)-1] != byte(target) {
			t.Fatalf("test setup: no padding yields checksum byte %#02x", target)
		}
		if _, _, _, err := Parse(frame); err != nil {
			t.Fatalf("checksum byte %#02x rejected: %v", target, err)
		}
	}
}

func TestParse_Remainder(t *testing.T) {
	first := validFrame(Field{"V", "1"})
	second := validFrame(Field{"V", "2"})
	fields, _, remainder, err := Parse(append(append([]byte{}, first...), second...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields[0].Value != "1" {
		t.Fatalf("wrong frame consumed: %+v", fields)
	}
	if !bytes.Equal(remainder, second) {
		t.Fatalf("remainder mismatch: %q", remainder)
	}
}

func BenchmarkParse(b *testing.B) {
	frame := validFrame(
		Field{"PID", "0xA042"}, Field{"FW", "150"}, Field{"SER#", "HQ1328A1B2C"},
		Field{"V", "12340"}, Field{"I", "1230"}, Field{"VPV", "36630"}, Field{"PPV", "99"},
		Field{"CS", "0"}, Field{"MPPT", "0"}, Field{"OR", "0x00000001"}, Field{"ERR", "0"},
		Field{"H19", "1234"}, Field{"H20", "2345"}, Field{"H21", "99"},
		Field{"H22", "4567"}, Field{"H23", "98"}, Field{"HSDS", "0"},
	)
	b.SetBytes(int64(len(frame)))
	for i := 0; i < b.N; i++ {
		if _, _, _, err := Parse(frame); err != nil {
			b.Fatal(err)
		}
	}
}
