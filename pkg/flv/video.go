// SPDX-License-Identifier: GPL-2.0-or-later

package flv

import (
	"bytes"

	"flvkit/pkg/byteio"

	"github.com/icza/bitio"
)

// Video frame types.
const (
	FrameTypeKeyframe             = uint8(1)
	FrameTypeInterFrame           = uint8(2)
	FrameTypeDisposableInterFrame = uint8(3)
	FrameTypeGeneratedKeyframe    = uint8(4)
	FrameTypeInfo                 = uint8(5)
)

// Video codec ids.
const (
	CodecIDJPEG          = uint8(1)
	CodecIDSorensonH263  = uint8(2)
	CodecIDScreenVideo   = uint8(3)
	CodecIDVP6           = uint8(4)
	CodecIDVP6Alpha      = uint8(5)
	CodecIDScreenVideoV2 = uint8(6)
	CodecIDAVC           = uint8(7)
)

// AVC packet types.
const (
	AVCPacketTypeSequenceHeader = uint8(0)
	AVCPacketTypeNALU           = uint8(1)
	AVCPacketTypeEndOfSequence  = uint8(2)
)

const (
	videoDescriptorSize = 1
	avcHeaderSize       = 4 // packetType + compositionTime.
)

// VideoData video tag payload.
type VideoData struct {
	FrameType uint8 // 4 bits.
	CodecID   uint8 // 4 bits.
	Body      VideoBody
}

// VideoBody is either *AVCPacket or RawVideo.
type VideoBody interface {
	Size() int
	encode(w *byteio.Writer)
}

// NewAVCVideo creates a AVC video payload.
func NewAVCVideo(frameType uint8, packet *AVCPacket) *VideoData {
	return &VideoData{
		FrameType: frameType,
		CodecID:   CodecIDAVC,
		Body:      packet,
	}
}

// TagType .
func (*VideoData) TagType() TagType { return TagTypeVideo }

// Size marshaled size.
func (v *VideoData) Size() int {
	if v.Body == nil {
		return videoDescriptorSize
	}
	return videoDescriptorSize + v.Body.Size()
}

// IsKeyframe reports if the frame is a keyframe.
func (v *VideoData) IsKeyframe() bool {
	return v.FrameType == FrameTypeKeyframe || v.FrameType == FrameTypeGeneratedKeyframe
}

func (v *VideoData) encode(w *byteio.Writer) {
	descriptor, err := packVideoDescriptor(v.FrameType, v.CodecID)
	if err != nil {
		setTryError(w, err)
		return
	}
	if v.Body == nil {
		setTryError(w, ErrMissingData)
		return
	}
	w.TryWriteUint8(descriptor)
	v.Body.encode(w)
}

// frameType is the high nibble, codecID the low nibble.
func packVideoDescriptor(frameType, codecID uint8) (uint8, error) {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)
	w.TryWriteBits(uint64(frameType&0x0f), 4)
	w.TryWriteBits(uint64(codecID&0x0f), 4)
	if w.TryError != nil {
		return 0, w.TryError
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Bytes()[0], nil
}

func unpackVideoDescriptor(descriptor uint8) (frameType uint8, codecID uint8, err error) {
	r := bitio.NewReader(bytes.NewReader([]byte{descriptor}))
	frameType = uint8(r.TryReadBits(4))
	codecID = uint8(r.TryReadBits(4))
	return frameType, codecID, r.TryError
}

func decodeVideoData(r *byteio.Reader, dataSize uint32) (*VideoData, error) {
	descriptor, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	frameType, codecID, err := unpackVideoDescriptor(descriptor)
	if err != nil {
		return nil, err
	}

	remaining := byteio.SaturatingSub(dataSize, videoDescriptorSize)

	var body VideoBody
	switch codecID {
	case CodecIDAVC:
		body, err = decodeAVCPacket(r, remaining)
	default:
		var raw []byte
		raw, err = r.ReadBytes(int(remaining))
		body = RawVideo(raw)
	}
	if err != nil {
		return nil, err
	}

	return &VideoData{
		FrameType: frameType,
		CodecID:   codecID,
		Body:      body,
	}, nil
}

// AVCPacket AVC video packet.
type AVCPacket struct {
	PacketType uint8

	// Signed 24-bit offset between decode and presentation time.
	CompositionTime int32

	// Sequence header or NAL units.
	Data []byte
}

// Size marshaled size.
func (p *AVCPacket) Size() int {
	return avcHeaderSize + len(p.Data)
}

func (p *AVCPacket) encode(w *byteio.Writer) {
	w.TryWriteUint8(p.PacketType)
	w.TryWriteInt24(p.CompositionTime)
	w.TryWrite(p.Data)
}

// The packet header is always read, the data size is clamped at zero.
func decodeAVCPacket(r *byteio.Reader, size uint32) (*AVCPacket, error) {
	packetType, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	compositionTime, err := r.ReadInt24()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(int(byteio.SaturatingSub(size, avcHeaderSize)))
	if err != nil {
		return nil, err
	}
	return &AVCPacket{
		PacketType:      packetType,
		CompositionTime: compositionTime,
		Data:            data,
	}, nil
}

// RawVideo payload of codecs without a dedicated packet format.
type RawVideo []byte

// Size marshaled size.
func (v RawVideo) Size() int { return len(v) }

func (v RawVideo) encode(w *byteio.Writer) {
	w.TryWrite(v)
}
