// SPDX-License-Identifier: GPL-2.0-or-later

package amf0

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"flvkit/pkg/byteio"
)

// String length prefixed text value. Use NewString to create one.
type String struct {
	text string
}

// NewString returns a String, the text must fit in the 16-bit length field.
func NewString(text string) (String, error) {
	if len(text) > math.MaxUint16 {
		return String{}, fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(text))
	}
	return String{text: text}, nil
}

// Text returns the string content.
func (s String) Text() string { return s.text }

func (s String) String() string { return s.text }

// Size marshaled size.
func (s String) Size() int { return 1 + 2 + len(s.text) }

// Marker .
func (String) Marker() uint8 { return MarkerString }

func (s String) encodeBody(w *byteio.Writer) {
	encodeText(w, s.text)
}

// DecodeString reads a marker that must be MarkerString and the string body.
func DecodeString(r io.Reader) (String, error) {
	br := byteio.NewReader(r)
	if err := expectMarker(br, MarkerString); err != nil {
		return String{}, err
	}
	return decodeString(br)
}

func decodeString(r *byteio.Reader) (String, error) {
	text, err := decodeText(r)
	if err != nil {
		return String{}, err
	}
	return String{text: text}, nil
}

// Key property name. It has the same body as a String but is never
// preceded by a marker.
type Key struct {
	text string
}

// NewKey returns a Key, the text must fit in the 16-bit length field.
func NewKey(text string) (Key, error) {
	if len(text) > math.MaxUint16 {
		return Key{}, fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(text))
	}
	return Key{text: text}, nil
}

// Text returns the key content.
func (k Key) Text() string { return k.text }

func (k Key) String() string { return k.text }

// Size marshaled size.
func (k Key) Size() int { return 2 + len(k.text) }

// Encode writes the key.
func (k Key) Encode(w io.Writer) error {
	bw := byteio.NewWriter(w)
	encodeText(bw, k.text)
	return bw.TryError
}

// DecodeKey reads a key.
func DecodeKey(r io.Reader) (Key, error) {
	text, err := decodeText(byteio.NewReader(r))
	if err != nil {
		return Key{}, err
	}
	return Key{text: text}, nil
}

func encodeText(w *byteio.Writer, text string) {
	w.TryWriteUint16(uint16(len(text)))
	w.TryWrite([]byte(text))
}

func decodeText(r *byteio.Reader) (string, error) {
	size, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	raw, err := r.ReadBytes(int(size))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: % x", ErrInvalidText, raw)
	}
	return string(raw), nil
}
