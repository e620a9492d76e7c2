// Package wireutil holds the length-prefixed big-integer and byte-slice
// encoding helpers; paillier uses them to serialize its public key. It is
// adapted from the threshold package's wire helpers, generalized to
// arbitrary-size Paillier moduli and ciphertexts (which run well past the
// single byte length threshold's big.Int shares used).
package wireutil

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

// DefaultEndian matches the endianness used across the rest of the wire
// encodings in this module.
var DefaultEndian = binary.LittleEndian

// WriteBigInt writes a length-prefixed big-endian encoding of i. The length
// prefix is a uint32 so that Paillier moduli and ciphertexts (which run to
// several hundred bytes) round-trip, unlike a single byte length.
func WriteBigInt(i *big.Int, w io.Writer) error {
	b := i.Bytes()
	if err := binary.Write(w, DefaultEndian, uint32(len(b))); err != nil {
		return errors.Wrap(err, "length")
	}
	_, err := w.Write(b)
	return errors.Wrap(err, "value")
}

// ReadBigInt reads a value written by WriteBigInt.
func ReadBigInt(r io.Reader) (*big.Int, error) {
	var size uint32
	if err := binary.Read(r, DefaultEndian, &size); err != nil {
		return nil, errors.Wrap(err, "length")
	}

	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.Wrap(err, "value")
	}

	return new(big.Int).SetBytes(b), nil
}

// WriteFixedBytes writes b verbatim, with no length prefix, for callers
// that already know the expected size (compressed points, 32-byte nonces).
func WriteFixedBytes(b []byte, w io.Writer) error {
	_, err := w.Write(b)
	return err
}

// ReadFixedBytes reads exactly n bytes.
func ReadFixedBytes(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.Wrap(err, "read fixed bytes")
	}
	return b, nil
}

// WriteBytes writes a length-prefixed byte slice.
func WriteBytes(b []byte, w io.Writer) error {
	if err := binary.Write(w, DefaultEndian, uint32(len(b))); err != nil {
		return errors.Wrap(err, "length")
	}
	_, err := w.Write(b)
	return errors.Wrap(err, "value")
}

// ReadBytes reads a value written by WriteBytes.
func ReadBytes(r io.Reader) ([]byte, error) {
	var size uint32
	if err := binary.Read(r, DefaultEndian, &size); err != nil {
		return nil, errors.Wrap(err, "length")
	}

	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.Wrap(err, "value")
	}
	return b, nil
}

// Buffer is a convenience constructor matching the rest of the pack's
// Serialize(w io.Writer) / Deserialize(r io.Reader) convention, for callers
// that want to build a message into a []byte in one call.
func Buffer() *bytes.Buffer {
	return &bytes.Buffer{}
}
