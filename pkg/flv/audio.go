// SPDX-License-Identifier: GPL-2.0-or-later

package flv

import (
	"bytes"

	"flvkit/pkg/byteio"

	"github.com/icza/bitio"
)

// Sound formats.
const (
	SoundFormatLinearPCM   = uint8(0)
	SoundFormatADPCM       = uint8(1)
	SoundFormatMP3         = uint8(2)
	SoundFormatLinearPCMLE = uint8(3)
	SoundFormatNellymoser  = uint8(6)
	SoundFormatG711ALaw    = uint8(7)
	SoundFormatG711MuLaw   = uint8(8)
	SoundFormatAAC         = uint8(10)
	SoundFormatSpeex       = uint8(11)
	SoundFormatMP38k       = uint8(14)
)

// Sound rates.
const (
	SoundRate5k  = uint8(0)
	SoundRate11k = uint8(1)
	SoundRate22k = uint8(2)
	SoundRate44k = uint8(3)
)

// Sound sizes.
const (
	SoundSize8Bit  = uint8(0)
	SoundSize16Bit = uint8(1)
)

// Sound types.
const (
	SoundTypeMono   = uint8(0)
	SoundTypeStereo = uint8(1)
)

// AAC packet types.
const (
	AACPacketTypeSequenceHeader = uint8(0)
	AACPacketTypeRaw            = uint8(1)
)

const (
	audioDescriptorSize = 1
	aacHeaderSize       = 1 // packetType.
)

// AudioData audio tag payload.
type AudioData struct {
	SoundFormat uint8 // 4 bits.
	SoundRate   uint8 // 2 bits.
	SoundSize   uint8 // 1 bit.
	SoundType   uint8 // 1 bit.
	Body        AudioBody
}

// AudioBody is either *AACPacket or RawAudio.
type AudioBody interface {
	Size() int
	encode(w *byteio.Writer)
}

// NewAACAudio creates a AAC audio payload. AAC is always
// announced as 44kHz 16-bit stereo, the real values are
// in the sequence header.
func NewAACAudio(packet *AACPacket) *AudioData {
	return &AudioData{
		SoundFormat: SoundFormatAAC,
		SoundRate:   SoundRate44k,
		SoundSize:   SoundSize16Bit,
		SoundType:   SoundTypeStereo,
		Body:        packet,
	}
}

// TagType .
func (*AudioData) TagType() TagType { return TagTypeAudio }

// Size marshaled size.
func (a *AudioData) Size() int {
	if a.Body == nil {
		return audioDescriptorSize
	}
	return audioDescriptorSize + a.Body.Size()
}

func (a *AudioData) encode(w *byteio.Writer) {
	descriptor, err := packAudioDescriptor(a)
	if err != nil {
		setTryError(w, err)
		return
	}
	if a.Body == nil {
		setTryError(w, ErrMissingData)
		return
	}
	w.TryWriteUint8(descriptor)
	a.Body.encode(w)
}

// soundFormat:4 soundRate:2 soundSize:1 soundType:1, most significant first.
func packAudioDescriptor(a *AudioData) (uint8, error) {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)
	w.TryWriteBits(uint64(a.SoundFormat&0x0f), 4)
	w.TryWriteBits(uint64(a.SoundRate&0x03), 2)
	w.TryWriteBits(uint64(a.SoundSize&0x01), 1)
	w.TryWriteBits(uint64(a.SoundType&0x01), 1)
	if w.TryError != nil {
		return 0, w.TryError
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Bytes()[0], nil
}

func unpackAudioDescriptor(descriptor uint8) (*AudioData, error) {
	r := bitio.NewReader(bytes.NewReader([]byte{descriptor}))
	a := &AudioData{
		SoundFormat: uint8(r.TryReadBits(4)),
		SoundRate:   uint8(r.TryReadBits(2)),
		SoundSize:   uint8(r.TryReadBits(1)),
		SoundType:   uint8(r.TryReadBits(1)),
	}
	return a, r.TryError
}

func decodeAudioData(r *byteio.Reader, dataSize uint32) (*AudioData, error) {
	descriptor, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	a, err := unpackAudioDescriptor(descriptor)
	if err != nil {
		return nil, err
	}

	remaining := byteio.SaturatingSub(dataSize, audioDescriptorSize)

	switch a.SoundFormat {
	case SoundFormatAAC:
		a.Body, err = decodeAACPacket(r, remaining)
	default:
		var raw []byte
		raw, err = r.ReadBytes(int(remaining))
		a.Body = RawAudio(raw)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AACPacket AAC audio packet.
type AACPacket struct {
	PacketType uint8

	// AudioSpecificConfig or raw frame.
	Data []byte
}

// Size marshaled size.
func (p *AACPacket) Size() int {
	return aacHeaderSize + len(p.Data)
}

func (p *AACPacket) encode(w *byteio.Writer) {
	w.TryWriteUint8(p.PacketType)
	w.TryWrite(p.Data)
}

// The packet type is always read, the data size is clamped at zero.
func decodeAACPacket(r *byteio.Reader, size uint32) (*AACPacket, error) {
	packetType, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(int(byteio.SaturatingSub(size, aacHeaderSize)))
	if err != nil {
		return nil, err
	}
	return &AACPacket{
		PacketType: packetType,
		Data:       data,
	}, nil
}

// RawAudio payload of formats without a dedicated packet format.
type RawAudio []byte

// Size marshaled size.
func (a RawAudio) Size() int { return len(a) }

func (a RawAudio) encode(w *byteio.Writer) {
	w.TryWrite(a)
}
