// SPDX-License-Identifier: GPL-2.0-or-later

package flv

import (
	"errors"
	"fmt"
	"io"

	"flvkit/pkg/byteio"
)

// TagType tag type.
type TagType uint8

// Tag types.
const (
	TagTypeAudio  = TagType(8)
	TagTypeVideo  = TagType(9)
	TagTypeScript = TagType(18)
)

func (t TagType) String() string {
	switch t {
	case TagTypeAudio:
		return "audio"
	case TagTypeVideo:
		return "video"
	case TagTypeScript:
		return "script"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// TagHeaderSize size of the tag fields before the data.
const TagHeaderSize = 11

// TagData is either *VideoData, *AudioData or *ScriptData.
type TagData interface {
	TagType() TagType

	// Size returns the exact number of bytes the encoded payload occupies.
	Size() int

	encode(w *byteio.Writer)
}

// Tag errors.
var (
	ErrInvalidTagType  = errors.New("invalid tag type")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrMissingData     = errors.New("missing data")
	ErrInvalidStreamID = errors.New("stream id does not fit in 24 bits")
)

// Tag single flv tag.
type Tag struct {
	// Declared size of Data. Recomputed when encoding.
	DataSize uint32

	// Milliseconds, the upper 8 bits are stored in the extension byte.
	Timestamp uint32

	StreamID uint32 // 24 bits.
	Data     TagData

	// Size of this tag including the header.
	// Written as DataSize + TagHeaderSize when encoding.
	BackPointer uint32
}

// NewTag creates a tag with consistent sizes.
func NewTag(data TagData, timestamp uint32) *Tag {
	size := uint32(data.Size())
	return &Tag{
		DataSize:    size,
		Timestamp:   timestamp,
		Data:        data,
		BackPointer: size + TagHeaderSize,
	}
}

// NewVideoTag creates a video tag.
func NewVideoTag(video *VideoData, timestamp uint32) *Tag {
	return NewTag(video, timestamp)
}

// NewAudioTag creates a audio tag.
func NewAudioTag(audio *AudioData, timestamp uint32) *Tag {
	return NewTag(audio, timestamp)
}

// NewScriptTag creates a script tag.
func NewScriptTag(script *ScriptData, timestamp uint32) *Tag {
	return NewTag(script, timestamp)
}

// Type returns the type of the tag data.
func (t *Tag) Type() TagType {
	return t.Data.TagType()
}

// Size marshaled size of the tag, excluding the back pointer.
func (t *Tag) Size() int {
	return TagHeaderSize + t.Data.Size()
}

// DecodeTag reads a single tag.
//
// The returned error matches io.EOF only if the input ended before the
// first byte of the tag. A tag that ends early is io.ErrUnexpectedEOF.
// The back pointer is returned as read, see Tag.Validate.
func DecodeTag(r io.Reader) (*Tag, error) {
	return decodeTag(byteio.NewReader(r))
}

func decodeTag(r *byteio.Reader) (*Tag, error) {
	tagType, err := r.ReadLeadByte()
	if err != nil {
		return nil, fmt.Errorf("read tag type: %w", err)
	}

	dataSize, err := r.ReadUint24()
	if err != nil {
		return nil, fmt.Errorf("read data size: %w", err)
	}

	timestamp, err := r.ReadUint24()
	if err != nil {
		return nil, fmt.Errorf("read timestamp: %w", err)
	}
	timestampEx, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("read timestamp extension: %w", err)
	}

	streamID, err := r.ReadUint24()
	if err != nil {
		return nil, fmt.Errorf("read stream id: %w", err)
	}

	data, err := decodeTagData(r, TagType(tagType), dataSize)
	if err != nil {
		return nil, err
	}

	backPointer, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("read back pointer: %w", err)
	}

	return &Tag{
		DataSize:    dataSize,
		Timestamp:   uint32(timestampEx)<<24 | timestamp,
		StreamID:    streamID,
		Data:        data,
		BackPointer: backPointer,
	}, nil
}

func decodeTagData(r *byteio.Reader, tagType TagType, dataSize uint32) (TagData, error) {
	switch tagType {
	case TagTypeVideo:
		video, err := decodeVideoData(r, dataSize)
		if err != nil {
			return nil, fmt.Errorf("video: %w", err)
		}
		return video, nil
	case TagTypeAudio:
		audio, err := decodeAudioData(r, dataSize)
		if err != nil {
			return nil, fmt.Errorf("audio: %w", err)
		}
		return audio, nil
	case TagTypeScript:
		script, err := decodeScriptData(r)
		if err != nil {
			return nil, fmt.Errorf("script: %w", err)
		}
		return script, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidTagType, tagType)
	}
}

// Encode writes the tag. The stored DataSize and BackPointer are
// ignored, both are derived from the size of Data.
func (t *Tag) Encode(w io.Writer) error {
	bw := byteio.NewWriter(w)
	if err := t.encode(bw); err != nil {
		return err
	}
	return bw.TryError
}

func (t *Tag) encode(w *byteio.Writer) error {
	if t.Data == nil {
		return ErrMissingData
	}
	size := t.Data.Size()
	if size > byteio.MaxUint24 {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, size)
	}
	if t.StreamID > byteio.MaxUint24 {
		return fmt.Errorf("%w: %d", ErrInvalidStreamID, t.StreamID)
	}

	w.TryWriteUint8(uint8(t.Data.TagType()))
	w.TryWriteUint24(uint32(size))
	w.TryWriteUint24(t.Timestamp & byteio.MaxUint24)
	w.TryWriteUint8(uint8(t.Timestamp >> 24))
	w.TryWriteUint24(t.StreamID)
	t.Data.encode(w)
	w.TryWriteUint32(uint32(size) + TagHeaderSize)
	return nil
}

func setTryError(w *byteio.Writer, err error) {
	if w.TryError == nil {
		w.TryError = err
	}
}
