package splat

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// HeaderSentinel terminates the ASCII header. The binary body starts at the byte after it.
const HeaderSentinel = "end_header\n"

// DefaultMaxHeaderSize is the size of the window scanned for HeaderSentinel.
const DefaultMaxHeaderSize = 10 * 1024

// FormatBinaryLittleEndian is the only body encoding the decoder reads.
const FormatBinaryLittleEndian = "binary_little_endian"

// ScalarType identifies the binary encoding of a single property value.
type ScalarType int

const (
	Int8 ScalarType = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

var scalarTypeNames = [...]string{"int8", "uint8", "int16", "uint16", "int32", "uint32", "float32", "float64"}

var scalarTypeSizes = [...]int{1, 1, 2, 2, 4, 4, 4, 8}

// scalarTypeTokens maps both the classic and the sized header type names.
var scalarTypeTokens = map[string]ScalarType{
	"char": Int8, "int8": Int8,
	"uchar": Uint8, "uint8": Uint8,
	"short": Int16, "int16": Int16,
	"ushort": Uint16, "uint16": Uint16,
	"int": Int32, "int32": Int32,
	"uint": Uint32, "uint32": Uint32,
	"float": Float32, "float32": Float32,
	"double": Float64, "float64": Float64,
}

// ParseScalarType resolves a header type token.
//
// Parameters:
//   - token: the type token from a property line (e.g. "float", "uchar", "int16")
//
// Returns:
//   - ScalarType: the resolved type
//   - bool: false if the token is not recognized
func ParseScalarType(token string) (ScalarType, bool) {
	t, ok := scalarTypeTokens[token]
	return t, ok
}

// Size returns the width of the type in bytes.
func (t ScalarType) Size() int {
	return scalarTypeSizes[t]
}

func (t ScalarType) String() string {
	if t < 0 || int(t) >= len(scalarTypeNames) {
		return "ScalarType(" + strconv.Itoa(int(t)) + ")"
	}
	return scalarTypeNames[t]
}

// Property is a single named field of a fixed-stride record.
type Property struct {
	Name   string
	Offset int
	Type   ScalarType
}

// PropertyTable is the ordered set of properties of one record.
// Offsets are assigned in declaration order. Immutable once parsed.
type PropertyTable struct {
	props  []Property
	byName map[string]int
	stride int
}

func newPropertyTable() *PropertyTable {
	return &PropertyTable{byName: make(map[string]int)}
}

// add appends a property at the current stride. A repeated name still occupies bytes in the
// record; lookups resolve to its first occurrence, or to its last when lastWins is set.
func (t *PropertyTable) add(name string, typ ScalarType, lastWins bool) {
	if _, dup := t.byName[name]; !dup || lastWins {
		t.byName[name] = len(t.props)
	}
	t.props = append(t.props, Property{Name: name, Offset: t.stride, Type: typ})
	t.stride += typ.Size()
}

// Lookup returns the property with the given name.
//
// Parameters:
//   - name: the property name
//
// Returns:
//   - Property: the property, zero value if absent
//   - bool: whether the property exists
func (t *PropertyTable) Lookup(name string) (Property, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Property{}, false
	}
	return t.props[i], true
}

// Properties returns a copy of the properties in declaration order.
func (t *PropertyTable) Properties() []Property {
	out := make([]Property, len(t.props))
	copy(out, t.props)
	return out
}

// Len returns the number of declared properties.
func (t *PropertyTable) Len() int {
	return len(t.props)
}

// Stride returns the byte size of one record.
func (t *PropertyTable) Stride() int {
	return t.stride
}

// Header is the parsed description of a splat file.
type Header struct {
	// Format is the body encoding from the format line, empty if the line is absent.
	Format string
	// Count is the number of vertex records.
	Count int
	// Stride is the byte size of one vertex record.
	Stride int
	// Table holds the vertex properties.
	Table *PropertyTable
	// DataOffset is the index of the first body byte, right after HeaderSentinel.
	DataOffset int
	// Fallbacks lists properties whose type token was unknown and was read as int8 in lenient mode.
	Fallbacks []string
}

// BodySize returns Count*Stride, the number of body bytes the header promises.
func (h *Header) BodySize() int {
	return h.Count * h.Stride
}

type headerParser struct {
	maxHeaderSize int
	lenient       bool
	legacyLayout  bool
}

// ParseHeader parses the ASCII header at the start of data.
// Only the first MaxHeaderSize bytes are scanned for the sentinel, so data may be a prefix of
// the file. Only properties of the vertex element contribute to the record layout unless
// WithLegacyLayout is set.
//
// Parameters:
//   - data: the file bytes, or at least the header prefix
//   - options: functional options such as WithLenientTypes and WithMaxHeaderSize
//
// Returns:
//   - *Header: the parsed header
//   - error: a *MalformedHeaderError when the header cannot be parsed
func ParseHeader(data []byte, options ...HeaderOption) (*Header, error) {
	p := &headerParser{maxHeaderSize: DefaultMaxHeaderSize}
	for _, opt := range options {
		opt(p)
	}

	window := data
	if len(window) > p.maxHeaderSize {
		window = window[:p.maxHeaderSize]
	}
	end := bytes.Index(window, []byte(HeaderSentinel))
	if end < 0 {
		return nil, &MalformedHeaderError{Reason: "missing " + strconv.Quote(HeaderSentinel) + " sentinel"}
	}

	h := &Header{
		Table:      newPropertyTable(),
		DataOffset: end + len(HeaderSentinel),
		Count:      -1,
	}

	element := ""
	lines := strings.Split(string(window[:end]), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		fields := strings.Fields(strings.TrimSuffix(raw, "\r"))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, &MalformedHeaderError{Reason: "format line without encoding", Line: lineNo}
			}
			h.Format = fields[1]
			if h.Format != FormatBinaryLittleEndian && !p.lenient {
				return nil, &MalformedHeaderError{Reason: "unsupported format " + strconv.Quote(h.Format), Line: lineNo}
			}
		case "element":
			if len(fields) < 3 {
				return nil, &MalformedHeaderError{Reason: "element line needs a name and a count", Line: lineNo}
			}
			element = fields[1]
			if element != "vertex" {
				continue
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n <= 0 {
				return nil, &MalformedHeaderError{Reason: "vertex count " + strconv.Quote(fields[2]) + " is not a positive integer", Line: lineNo}
			}
			h.Count = n
		case "property":
			if element != "vertex" && !p.legacyLayout {
				continue
			}
			if len(fields) < 3 {
				return nil, &MalformedHeaderError{Reason: "property line needs a type and a name", Line: lineNo}
			}
			typ, ok := ParseScalarType(fields[1])
			if !ok {
				if !p.lenient {
					return nil, &MalformedHeaderError{Reason: "unknown property type " + strconv.Quote(fields[1]), Line: lineNo}
				}
				typ = Int8
				h.Fallbacks = append(h.Fallbacks, fields[2])
			}
			h.Table.add(fields[2], typ, p.legacyLayout)
		}
	}

	if h.Count < 0 {
		return nil, &MalformedHeaderError{Reason: "missing vertex element count"}
	}
	h.Stride = h.Table.Stride()
	if h.Stride == 0 {
		return nil, &MalformedHeaderError{Reason: "vertex element declares no properties"}
	}
	if h.Count > math.MaxInt/h.Stride {
		return nil, &MalformedHeaderError{Reason: "vertex count overflows body size"}
	}
	return h, nil
}
