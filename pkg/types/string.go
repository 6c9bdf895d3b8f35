package types

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"storevec/pkg/primitives"
)

// StringMaxSize defines the default maximum size for string fields in bytes.
const StringMaxSize = 256

// StringField is a string stored in a fixed-width slot of MaxSize bytes.
type StringField struct {
	Value   string
	MaxSize int
}

// NewStringField creates a StringField. Values longer than maxSize bytes are
// truncated on a rune boundary, so the result may be shorter than maxSize.
func NewStringField(value string, maxSize int) *StringField {
	if len(value) > maxSize {
		n := max(maxSize, 0)
		for n > 0 && !utf8.RuneStart(value[n]) {
			n--
		}
		value = value[:n]
	}

	return &StringField{
		Value:   value,
		MaxSize: maxSize,
	}
}

// Serialize writes the string field in binary format:
//  1. 4 bytes for the actual string length (big-endian uint32)
//  2. The string bytes
//  3. Zero padding up to MaxSize
func (s *StringField) Serialize(w io.Writer) error {
	length := min(len(s.Value), s.MaxSize)

	lengthBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lengthBytes, uint32(length)) // #nosec G115

	if _, err := w.Write(lengthBytes); err != nil {
		return err
	}

	if _, err := w.Write([]byte(s.Value[:length])); err != nil {
		return err
	}

	padding := make([]byte, s.MaxSize-length)
	_, err := w.Write(padding)
	return err
}

func (s *StringField) Type() Type {
	return StringType
}

func (s *StringField) String() string {
	return s.Value
}

// Equals compares values only; the slot width is a storage detail.
func (s *StringField) Equals(other Field) bool {
	otherString, ok := other.(*StringField)
	if !ok {
		return false
	}
	return s.Value == otherString.Value
}

func (s *StringField) Hash() primitives.HashCode {
	return fnvHash([]byte(s.Value))
}
