// SPDX-License-Identifier: GPL-2.0-or-later

// Package metayaml converts script tag metadata to and from YAML.
// Mapping order is kept, so the property order of the array survives
// a round trip through a YAML document.
package metayaml

import (
	"errors"
	"fmt"

	"flvkit/pkg/flv/amf0"

	"gopkg.in/yaml.v2"
)

// ErrUnsupportedValue the YAML value has no amf0 equivalent.
var ErrUnsupportedValue = errors.New("unsupported value")

// Marshal metadata to a YAML document.
func Marshal(metadata amf0.EcmaArray) ([]byte, error) {
	return yaml.Marshal(ToMapSlice(metadata))
}

// Unmarshal a YAML mapping into metadata.
//
// Numbers become amf0.Number, booleans amf0.Boolean,
// strings amf0.String and mappings nested arrays.
func Unmarshal(raw []byte) (amf0.EcmaArray, error) {
	var m yaml.MapSlice
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return amf0.EcmaArray{}, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return FromMapSlice(m)
}

// ToMapSlice converts metadata to a ordered YAML mapping.
func ToMapSlice(metadata amf0.EcmaArray) yaml.MapSlice {
	m := make(yaml.MapSlice, 0, metadata.Len())
	for _, p := range metadata.Props {
		m = append(m, yaml.MapItem{
			Key:   p.Name.Text(),
			Value: toYAMLValue(p.Value),
		})
	}
	return m
}

func toYAMLValue(v amf0.Value) interface{} {
	switch v := v.(type) {
	case amf0.Number:
		return float64(v)
	case amf0.Boolean:
		return bool(v)
	case amf0.String:
		return v.Text()
	case amf0.EcmaArray:
		return ToMapSlice(v)
	default:
		return nil
	}
}

// FromMapSlice converts a ordered YAML mapping to metadata.
func FromMapSlice(m yaml.MapSlice) (amf0.EcmaArray, error) {
	var metadata amf0.EcmaArray
	for _, item := range m {
		name := fmt.Sprint(item.Key)
		value, err := fromYAMLValue(item.Value)
		if err != nil {
			return amf0.EcmaArray{}, fmt.Errorf("%v: %w", name, err)
		}
		prop, err := amf0.NewProperty(name, value)
		if err != nil {
			return amf0.EcmaArray{}, err
		}
		metadata.Props = append(metadata.Props, prop)
	}
	return metadata, nil
}

func fromYAMLValue(v interface{}) (amf0.Value, error) {
	switch v := v.(type) {
	case int:
		return amf0.Number(v), nil
	case int64:
		return amf0.Number(v), nil
	case uint64:
		return amf0.Number(v), nil
	case float64:
		return amf0.Number(v), nil
	case bool:
		return amf0.Boolean(v), nil
	case string:
		return amf0.NewString(v)
	case yaml.MapSlice:
		return FromMapSlice(v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}
