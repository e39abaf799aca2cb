package splat

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ReadScalar reads one property value of record index from a fixed-stride body.
// The value is read little-endian at index*stride + p.Offset and widened to float64.
// The caller guarantees the body holds the record.
//
// Parameters:
//   - body: the record bytes, starting at the first record
//   - stride: the record size in bytes
//   - index: the record index
//   - p: the property to read
//
// Returns:
//   - float64: the decoded value
func ReadScalar(body []byte, stride, index int, p Property) float64 {
	b := body[index*stride+p.Offset:]
	switch p.Type {
	case Int8:
		return float64(int8(b[0]))
	case Uint8:
		return float64(b[0])
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case Uint16:
		return float64(binary.LittleEndian.Uint16(b))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case Uint32:
		return float64(binary.LittleEndian.Uint32(b))
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return 0
}

// Field indexes the splat attributes read from every record.
type Field int

const (
	FieldX Field = iota
	FieldY
	FieldZ
	FieldRot0
	FieldRot1
	FieldRot2
	FieldRot3
	FieldScale0
	FieldScale1
	FieldScale2
	FieldDC0
	FieldDC1
	FieldDC2
	FieldOpacity
	NumFields
)

var fieldNames = [NumFields]string{
	"x", "y", "z",
	"rot_0", "rot_1", "rot_2", "rot_3",
	"scale_0", "scale_1", "scale_2",
	"f_dc_0", "f_dc_1", "f_dc_2",
	"opacity",
}

// Name returns the property name the field is read from.
func (f Field) Name() string {
	return fieldNames[f]
}

// Record is one decoded splat, before activation.
type Record struct {
	Position [3]float64
	// Rotation is the quaternion as (x, y, z, w), read from rot_1, rot_2, rot_3, rot_0.
	Rotation [4]float64
	LogScale [3]float64
	// SHDC holds the degree-0 spherical harmonic color coefficients.
	SHDC [3]float64
	// Opacity is the pre-sigmoid opacity logit.
	Opacity float64
}

// Layout is a property table compiled to fixed field slots, so the per-record path does no
// name lookups.
type Layout struct {
	stride int
	slots  [NumFields]Property
}

// NewLayout resolves every splat field against a property table.
//
// Parameters:
//   - table: the parsed vertex property table
//
// Returns:
//   - *Layout: the compiled layout
//   - error: an *UnknownPropertyError naming the first missing field
func NewLayout(table *PropertyTable) (*Layout, error) {
	l := &Layout{stride: table.Stride()}
	for f := Field(0); f < NumFields; f++ {
		p, ok := table.Lookup(f.Name())
		if !ok {
			return nil, &UnknownPropertyError{Name: f.Name()}
		}
		l.slots[f] = p
	}
	return l, nil
}

// Stride returns the record size in bytes.
func (l *Layout) Stride() int {
	return l.stride
}

// Decode reads all splat fields of one record in a single pass.
//
// Parameters:
//   - body: the record bytes, starting at the first record
//   - index: the record index
//
// Returns:
//   - Record: the decoded record
func (l *Layout) Decode(body []byte, index int) Record {
	read := func(f Field) float64 {
		return ReadScalar(body, l.stride, index, l.slots[f])
	}
	return Record{
		Position: [3]float64{read(FieldX), read(FieldY), read(FieldZ)},
		Rotation: [4]float64{read(FieldRot1), read(FieldRot2), read(FieldRot3), read(FieldRot0)},
		LogScale: [3]float64{read(FieldScale0), read(FieldScale1), read(FieldScale2)},
		SHDC:     [3]float64{read(FieldDC0), read(FieldDC1), read(FieldDC2)},
		Opacity:  read(FieldOpacity),
	}
}

// Decoder reads records from a body described by a Header.
type Decoder struct {
	header *Header
	body   []byte
	layout *Layout
}

// NewDecoder binds a header to its body.
//
// Parameters:
//   - h: the parsed header
//   - body: the bytes following the header; extra trailing bytes are ignored
//
// Returns:
//   - *Decoder: the decoder
//   - error: a *MalformedHeaderError if Count*Stride does not fit in an int, a
//     *TruncatedBodyError if body is shorter than h.BodySize(), or an
//     *UnknownPropertyError if a splat field is missing
func NewDecoder(h *Header, body []byte) (*Decoder, error) {
	if h.Count < 0 || h.Stride <= 0 || h.Count > math.MaxInt/h.Stride {
		return nil, &MalformedHeaderError{Reason: fmt.Sprintf("vertex count %d with stride %d is not a valid body size", h.Count, h.Stride)}
	}
	if len(body) < h.BodySize() {
		return nil, &TruncatedBodyError{Want: h.BodySize(), Got: len(body)}
	}
	layout, err := NewLayout(h.Table)
	if err != nil {
		return nil, err
	}
	return &Decoder{header: h, body: body[:h.BodySize()], layout: layout}, nil
}

// Count returns the number of records.
func (d *Decoder) Count() int {
	return d.header.Count
}

// Property reads one named property of record index.
//
// Parameters:
//   - index: the record index
//   - name: the property name
//
// Returns:
//   - float64: the value
//   - error: an *UnknownPropertyError if the name is not declared, or an error if index is out of range
func (d *Decoder) Property(index int, name string) (float64, error) {
	p, ok := d.header.Table.Lookup(name)
	if !ok {
		return 0, &UnknownPropertyError{Name: name}
	}
	if index < 0 || index >= d.header.Count {
		return 0, fmt.Errorf("splat: record index %d out of range [0, %d)", index, d.header.Count)
	}
	return ReadScalar(d.body, d.header.Stride, index, p), nil
}

// Record decodes record index. It panics if index is out of range.
func (d *Decoder) Record(index int) Record {
	return d.layout.Decode(d.body, index)
}
