package splat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestReadScalar(t *testing.T) {
	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, int8(-5))
	binary.Write(&body, binary.LittleEndian, uint8(250))
	binary.Write(&body, binary.LittleEndian, int16(-1234))
	binary.Write(&body, binary.LittleEndian, uint16(60000))
	binary.Write(&body, binary.LittleEndian, int32(-70000))
	binary.Write(&body, binary.LittleEndian, uint32(4000000000))
	binary.Write(&body, binary.LittleEndian, float32(1.5))
	binary.Write(&body, binary.LittleEndian, float64(-2.25))

	tests := []struct {
		p    Property
		want float64
	}{
		{Property{Offset: 0, Type: Int8}, -5},
		{Property{Offset: 1, Type: Uint8}, 250},
		{Property{Offset: 2, Type: Int16}, -1234},
		{Property{Offset: 4, Type: Uint16}, 60000},
		{Property{Offset: 6, Type: Int32}, -70000},
		{Property{Offset: 10, Type: Uint32}, 4000000000},
		{Property{Offset: 14, Type: Float32}, 1.5},
		{Property{Offset: 18, Type: Float64}, -2.25},
	}
	for _, tt := range tests {
		if got := ReadScalar(body.Bytes(), body.Len(), 0, tt.p); got != tt.want {
			t.Errorf("ReadScalar(%v at %d) = %v, want %v", tt.p.Type, tt.p.Offset, got, tt.want)
		}
	}
}

func TestReadScalarStride(t *testing.T) {
	body := make([]byte, 3*8)
	for i := range 3 {
		binary.LittleEndian.PutUint32(body[i*8+4:], math.Float32bits(float32(i)+0.5))
	}
	p := Property{Name: "v", Offset: 4, Type: Float32}
	for i := range 3 {
		if got := ReadScalar(body, 8, i, p); got != float64(i)+0.5 {
			t.Errorf("ReadScalar(index %d) = %v, want %v", i, got, float64(i)+0.5)
		}
	}
}

func encodeRecords(t *testing.T, records []Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecoderRecord(t *testing.T) {
	want := Record{
		Position: [3]float64{1, -2, 3.5},
		Rotation: [4]float64{0.25, 0.5, 0.75, 1},
		LogScale: [3]float64{-1, 0, 1},
		SHDC:     [3]float64{0.5, -0.5, 2},
		Opacity:  -3,
	}
	data := encodeRecords(t, []Record{{}, want})
	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	dec, err := NewDecoder(h, data[h.DataOffset:])
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	if dec.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", dec.Count())
	}
	if got := dec.Record(1); got != want {
		t.Errorf("Record(1) = %+v, want %+v", got, want)
	}

	w, err := dec.Property(1, "rot_0")
	if err != nil || w != 1 {
		t.Errorf("Property(1, rot_0) = %v, %v, want 1, nil", w, err)
	}
	if _, err := dec.Property(1, "normal_x"); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("Property(normal_x) error = %v, want ErrUnknownProperty", err)
	}
	if _, err := dec.Property(2, "x"); err == nil {
		t.Errorf("Property(2, x) succeeded, want out of range error")
	}
}

func TestDecodeOverflowingCount(t *testing.T) {
	data := append(splatHeader("200000000000000000"), make([]byte, 56)...)
	h, buf, err := Decode(data, nil)
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("Decode() error = %v, want ErrMalformedHeader", err)
	}
	if h != nil || buf != nil {
		t.Errorf("Decode() returned a header or buffer alongside the error")
	}
}

func TestNewDecoderErrors(t *testing.T) {
	data := encodeRecords(t, []Record{{}, {}})
	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	body := data[h.DataOffset:]

	_, err = NewDecoder(h, body[:len(body)-1])
	var tbe *TruncatedBodyError
	if !errors.As(err, &tbe) {
		t.Fatalf("NewDecoder(short body) error = %v, want *TruncatedBodyError", err)
	}
	if tbe.Want != len(body) || tbe.Got != len(body)-1 {
		t.Errorf("TruncatedBodyError = %+v, want {%d %d}", tbe, len(body), len(body)-1)
	}

	huge := &Header{Count: math.MaxInt/FloatsPerSplat + 1, Stride: FloatsPerSplat * 4, Table: h.Table}
	if _, err := NewDecoder(huge, body); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("NewDecoder(overflowing count) error = %v, want ErrMalformedHeader", err)
	}

	partial := header("ply", "format binary_little_endian 1.0", "element vertex 1", "property float x", "end_header")
	ph, err := ParseHeader(partial)
	if err != nil {
		t.Fatalf("ParseHeader(partial) error = %v", err)
	}
	_, err = NewDecoder(ph, make([]byte, 4))
	var upe *UnknownPropertyError
	if !errors.As(err, &upe) || upe.Name != "y" {
		t.Errorf("NewDecoder(missing fields) error = %v, want unknown property y", err)
	}
}
