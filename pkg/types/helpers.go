package types

import (
	"encoding/binary"
	"hash/fnv"
	"io"

	"storevec/pkg/primitives"
)

// fnvHash computes an FNV-1a hash of the given byte slice.
func fnvHash(data []byte) primitives.HashCode {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return primitives.HashCode(h.Sum64())
}

// serializeUint64 writes a uint64 value to the writer in big-endian byte order.
func serializeUint64(w io.Writer, v uint64) error {
	_, err := w.Write(toBytes64(v))
	return err
}

// readBytes reads exactly size bytes from the reader.
func readBytes(r io.Reader, size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// toBytes64 converts a uint64 value to an 8-byte big-endian slice.
func toBytes64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
