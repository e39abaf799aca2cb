package splat

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// encodeOrder is the property order written by Encode, the layout used by common 3D Gaussian
// training tools without the normal and higher order color terms.
var encodeOrder = [...]Field{
	FieldX, FieldY, FieldZ,
	FieldDC0, FieldDC1, FieldDC2,
	FieldOpacity,
	FieldScale0, FieldScale1, FieldScale2,
	FieldRot0, FieldRot1, FieldRot2, FieldRot3,
}

// Encode writes records as a binary little-endian splat file with float properties.
//
// Parameters:
//   - w: destination writer
//   - records: the records to write, in draw order
//
// Returns:
//   - error: any write error
func Encode(w io.Writer, records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("splat: encode: no records")
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ply\nformat %s 1.0\nelement vertex %d\n", FormatBinaryLittleEndian, len(records))
	for _, f := range encodeOrder {
		fmt.Fprintf(bw, "property float %s\n", f.Name())
	}
	bw.WriteString(HeaderSentinel)

	var buf [4]byte
	for _, r := range records {
		for _, f := range encodeOrder {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(recordField(r, f))))
			if _, err := bw.Write(buf[:]); err != nil {
				return fmt.Errorf("splat: encode: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("splat: encode: %w", err)
	}
	return nil
}

func recordField(r Record, f Field) float64 {
	switch f {
	case FieldX, FieldY, FieldZ:
		return r.Position[f-FieldX]
	case FieldRot0:
		return r.Rotation[3]
	case FieldRot1, FieldRot2, FieldRot3:
		return r.Rotation[f-FieldRot1]
	case FieldScale0, FieldScale1, FieldScale2:
		return r.LogScale[f-FieldScale0]
	case FieldDC0, FieldDC1, FieldDC2:
		return r.SHDC[f-FieldDC0]
	case FieldOpacity:
		return r.Opacity
	}
	return 0
}
