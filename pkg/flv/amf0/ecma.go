// SPDX-License-Identifier: GPL-2.0-or-later

package amf0

import (
	"fmt"
	"io"

	"flvkit/pkg/byteio"
)

// Property named array element.
type Property struct {
	Name  Key
	Value Value
}

// NewProperty creates a property from a plain name.
func NewProperty(name string, value Value) (Property, error) {
	key, err := NewKey(name)
	if err != nil {
		return Property{}, err
	}
	return Property{Name: key, Value: value}, nil
}

// Size marshaled size.
func (p Property) Size() int {
	return p.Name.Size() + p.Value.Size()
}

// EcmaArray ordered associative array. The declared element count is
// not stored, decoding reads exactly that many properties and encoding
// writes len(Props).
type EcmaArray struct {
	Props []Property
}

// NewEcmaArray creates a array from props.
func NewEcmaArray(props ...Property) EcmaArray {
	return EcmaArray{Props: props}
}

// Len number of properties.
func (a EcmaArray) Len() int { return len(a.Props) }

// Size marshaled size.
func (a EcmaArray) Size() int {
	size := 1 + 4 + 3
	for _, p := range a.Props {
		size += p.Size()
	}
	return size
}

// Marker .
func (EcmaArray) Marker() uint8 { return MarkerEcmaArray }

// Get returns the value of the first property with name.
func (a EcmaArray) Get(name string) (Value, bool) {
	for _, p := range a.Props {
		if p.Name.text == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of the first property with name,
// or appends a new property if there is none.
func (a *EcmaArray) Set(name string, value Value) error {
	for i, p := range a.Props {
		if p.Name.text == name {
			a.Props[i].Value = value
			return nil
		}
	}
	prop, err := NewProperty(name, value)
	if err != nil {
		return err
	}
	a.Props = append(a.Props, prop)
	return nil
}

func (a EcmaArray) encodeBody(w *byteio.Writer) {
	w.TryWriteUint32(uint32(len(a.Props)))
	for _, p := range a.Props {
		encodeText(w, p.Name.text)
		encodeValue(w, p.Value)
	}
	w.TryWriteUint24(objectEnd)
}

// DecodeEcmaArray reads a marker that must be MarkerEcmaArray and the array body.
func DecodeEcmaArray(r io.Reader) (EcmaArray, error) {
	br := byteio.NewReader(r)
	if err := expectMarker(br, MarkerEcmaArray); err != nil {
		return EcmaArray{}, err
	}
	return decodeEcmaArray(br, 1)
}

func decodeEcmaArray(r *byteio.Reader, depth int) (EcmaArray, error) {
	if depth > maxDepth {
		return EcmaArray{}, ErrTooDeep
	}

	count, err := r.ReadUint32()
	if err != nil {
		return EcmaArray{}, err
	}

	var props []Property
	for i := uint32(0); i < count; i++ {
		name, err := decodeText(r)
		if err != nil {
			return EcmaArray{}, fmt.Errorf("property %d name: %w", i, err)
		}
		value, err := decodeValue(r, depth)
		if err != nil {
			return EcmaArray{}, fmt.Errorf("property %q: %w", name, err)
		}
		props = append(props, Property{Name: Key{text: name}, Value: value})
	}

	end, err := r.ReadUint24()
	if err != nil {
		return EcmaArray{}, err
	}
	if end != objectEnd {
		return EcmaArray{}, fmt.Errorf("%w: %06x", ErrInvalidTerminator, end)
	}

	return EcmaArray{Props: props}, nil
}
