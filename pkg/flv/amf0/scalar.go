// SPDX-License-Identifier: GPL-2.0-or-later

package amf0

import "flvkit/pkg/byteio"

// Number 8 byte IEEE-754 double.
type Number float64

// Size marshaled size.
func (Number) Size() int { return 1 + 8 }

// Marker .
func (Number) Marker() uint8 { return MarkerNumber }

func (n Number) encodeBody(w *byteio.Writer) {
	w.TryWriteFloat64(float64(n))
}

func decodeNumber(r *byteio.Reader) (Number, error) {
	v, err := r.ReadFloat64()
	if err != nil {
		return 0, err
	}
	return Number(v), nil
}

// Boolean single byte, any nonzero value is true.
type Boolean bool

// Size marshaled size.
func (Boolean) Size() int { return 1 + 1 }

// Marker .
func (Boolean) Marker() uint8 { return MarkerBoolean }

func (b Boolean) encodeBody(w *byteio.Writer) {
	if b {
		w.TryWriteUint8(1)
	} else {
		w.TryWriteUint8(0)
	}
}

func decodeBoolean(r *byteio.Reader) (Boolean, error) {
	v, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
