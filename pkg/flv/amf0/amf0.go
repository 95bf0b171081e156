// SPDX-License-Identifier: GPL-2.0-or-later

// Package amf0 encodes and decodes the subset of AMF0 values that is
// carried in flv script data tags.
package amf0

// Wire layout.
//
// value {
//   marker uint8
//   body   // depends on marker.
// }
//
// number  { float64 }                      marker 0
// boolean { uint8 }                        marker 1, nonzero is true.
// string  { size uint16, text [size]byte } marker 2
// ecma    {                                marker 8
//   count uint32
//   props [count]{ key, value }
//   end   [3]byte{0, 0, 9}
// }
//
// key { size uint16, text [size]byte } // Same as string, without the marker.

import (
	"errors"
	"fmt"
	"io"

	"flvkit/pkg/byteio"
)

// Value type markers.
const (
	MarkerNumber    = uint8(0)
	MarkerBoolean   = uint8(1)
	MarkerString    = uint8(2)
	MarkerEcmaArray = uint8(8)
	MarkerObjectEnd = uint8(9)
)

// objectEnd is the terminator that follows the last property of an array.
const objectEnd = uint32(MarkerObjectEnd)

// Maximum nesting of arrays inside arrays.
const maxDepth = 64

// Errors.
var (
	ErrStringTooLong     = errors.New("string too long")
	ErrInvalidID         = errors.New("invalid value marker")
	ErrInvalidText       = errors.New("invalid utf-8 text")
	ErrInvalidTerminator = errors.New("invalid array terminator")
	ErrTooDeep           = errors.New("arrays nested too deep")
)

// Value is one of Number, Boolean, String or EcmaArray.
type Value interface {
	// Size returns the exact number of bytes the encoded value,
	// including its marker, occupies.
	Size() int

	// Marker returns the type marker written in front of the value.
	Marker() uint8

	encodeBody(w *byteio.Writer)
}

// DecodeValue reads a marker and the value it announces.
func DecodeValue(r io.Reader) (Value, error) {
	return decodeValue(byteio.NewReader(r), 0)
}

func decodeValue(r *byteio.Reader, depth int) (Value, error) {
	marker, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	switch marker {
	case MarkerNumber:
		return decodeNumber(r)
	case MarkerBoolean:
		return decodeBoolean(r)
	case MarkerString:
		return decodeString(r)
	case MarkerEcmaArray:
		return decodeEcmaArray(r, depth+1)
	default:
		return nil, invalidID(marker)
	}
}

// EncodeValue writes the marker and body of v.
func EncodeValue(w io.Writer, v Value) error {
	bw := byteio.NewWriter(w)
	encodeValue(bw, v)
	return bw.TryError
}

func encodeValue(w *byteio.Writer, v Value) {
	w.TryWriteUint8(v.Marker())
	v.encodeBody(w)
}

// expectMarker reads a marker and fails unless it is the expected one.
func expectMarker(r *byteio.Reader, expected uint8) error {
	marker, err := r.ReadUint8()
	if err != nil {
		return err
	}
	if marker != expected {
		return invalidID(marker)
	}
	return nil
}

func invalidID(marker uint8) error {
	return fmt.Errorf("%w: %d", ErrInvalidID, marker)
}
