// SPDX-License-Identifier: GPL-2.0-or-later

package flv

import (
	"errors"
	"fmt"
	"io"

	"flvkit/pkg/byteio"
)

// Header constants.
const (
	Signature  = uint32(0x464c56) // "FLV"
	Version    = uint8(1)
	HeaderSize = uint32(9)
)

// HeaderFlags announce which streams the file contains.
type HeaderFlags uint8

// Header flags.
const (
	FlagAudio = HeaderFlags(0x1)
	FlagVideo = HeaderFlags(0x4)
)

// Header file header.
type Header struct {
	Signature uint32
	Version   uint8

	// Unknown bits are kept as is.
	Flags HeaderFlags

	// Always HeaderSize after decoding. Ignored when encoding,
	// the offset is derived by the file writer.
	DataOffset uint32
}

// NewHeader creates a valid header.
func NewHeader(hasAudio, hasVideo bool) Header {
	var flags HeaderFlags
	if hasAudio {
		flags |= FlagAudio
	}
	if hasVideo {
		flags |= FlagVideo
	}
	return Header{
		Signature:  Signature,
		Version:    Version,
		Flags:      flags,
		DataOffset: HeaderSize,
	}
}

// HasAudio reports if the audio flag is set.
func (h Header) HasAudio() bool { return h.Flags&FlagAudio != 0 }

// HasVideo reports if the video flag is set.
func (h Header) HasVideo() bool { return h.Flags&FlagVideo != 0 }

// Header errors.
var (
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidVersion    = errors.New("invalid version")
	ErrInvalidDataOffset = errors.New("invalid data offset")
)

// DecodeHeader reads and validates the 9 byte header.
func DecodeHeader(r io.Reader) (*Header, error) {
	return decodeHeader(byteio.NewReader(r))
}

func decodeHeader(r *byteio.Reader) (*Header, error) {
	signature, err := r.ReadUint24()
	if err != nil {
		return nil, fmt.Errorf("read signature: %w", err)
	}
	if signature != Signature {
		return nil, fmt.Errorf("%w: %06x", ErrInvalidSignature, signature)
	}

	version, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}

	flags, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("read flags: %w", err)
	}

	dataOffset, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("read data offset: %w", err)
	}
	if dataOffset != HeaderSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDataOffset, dataOffset)
	}

	return &Header{
		Signature:  signature,
		Version:    version,
		Flags:      HeaderFlags(flags),
		DataOffset: dataOffset,
	}, nil
}

// Encode writes the signature, version and flags. The data offset
// that completes the header is written by Writer and File.Encode.
func (h Header) Encode(w io.Writer) error {
	bw := byteio.NewWriter(w)
	h.encode(bw)
	return bw.TryError
}

func (h Header) encode(w *byteio.Writer) {
	w.TryWriteUint24(h.Signature)
	w.TryWriteUint8(h.Version)
	w.TryWriteUint8(uint8(h.Flags))
}
