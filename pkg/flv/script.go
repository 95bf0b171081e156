// SPDX-License-Identifier: GPL-2.0-or-later

package flv

import (
	"fmt"

	"flvkit/pkg/byteio"
	"flvkit/pkg/flv/amf0"
)

// OnMetaData name of the script tag that carries stream properties.
const OnMetaData = "onMetaData"

// ScriptData script tag payload.
type ScriptData struct {
	Name     amf0.String
	Metadata amf0.EcmaArray
}

// NewScriptData creates a script payload.
func NewScriptData(name string, metadata amf0.EcmaArray) (*ScriptData, error) {
	amfName, err := amf0.NewString(name)
	if err != nil {
		return nil, err
	}
	return &ScriptData{
		Name:     amfName,
		Metadata: metadata,
	}, nil
}

// TagType .
func (*ScriptData) TagType() TagType { return TagTypeScript }

// Size marshaled size.
func (s *ScriptData) Size() int {
	return s.Name.Size() + s.Metadata.Size()
}

func (s *ScriptData) encode(w *byteio.Writer) {
	if w.TryError != nil {
		return
	}
	if err := amf0.EncodeValue(w, s.Name); err != nil {
		setTryError(w, err)
		return
	}
	if err := amf0.EncodeValue(w, s.Metadata); err != nil {
		setTryError(w, err)
	}
}

// The payload length is defined by its structure, the declared size is not used.
func decodeScriptData(r *byteio.Reader) (*ScriptData, error) {
	name, err := amf0.DecodeString(r)
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	metadata, err := amf0.DecodeEcmaArray(r)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	return &ScriptData{
		Name:     name,
		Metadata: metadata,
	}, nil
}
