package types

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"storevec/pkg/vector"
)

// ParseField reads one serialized field of the given type. width is the
// declared byte width for string columns.
func ParseField(r io.Reader, fieldType Type, width int) (Field, error) {
	switch fieldType {
	case IntType:
		b, err := readBytes(r, 8)
		if err != nil {
			return nil, err
		}
		return NewIntField(int64(binary.BigEndian.Uint64(b))), nil // #nosec G115

	case RealType:
		b, err := readBytes(r, 8)
		if err != nil {
			return nil, err
		}
		return NewFloat64Field(math.Float64frombits(binary.BigEndian.Uint64(b))), nil

	case StringType:
		return parseStringField(r, width)

	case VectorType:
		b, err := readBytes(r, vector.EncodedSize)
		if err != nil {
			return nil, err
		}
		v, err := vector.Decode(b, 0)
		if err != nil {
			return nil, err
		}
		return NewVectorField(v), nil

	default:
		return nil, fmt.Errorf("unsupported field type: %v", fieldType)
	}
}

// parseStringField reads the length-prefixed, zero-padded layout written by
// StringField.Serialize.
func parseStringField(r io.Reader, width int) (*StringField, error) {
	if width < 0 {
		return nil, fmt.Errorf("invalid string width %d", width)
	}

	lb, err := readBytes(r, 4)
	if err != nil {
		return nil, err
	}

	length := int(binary.BigEndian.Uint32(lb))
	if length > width {
		return nil, fmt.Errorf("string length %d exceeds column width %d", length, width)
	}

	body, err := readBytes(r, width)
	if err != nil {
		return nil, err
	}

	return NewStringField(string(body[:length]), width), nil
}
