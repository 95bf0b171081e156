// SPDX-License-Identifier: GPL-2.0-or-later

package flv

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrBackPointerMismatch = errors.New("back pointer mismatch")
	ErrDataSizeMismatch    = errors.New("data size mismatch")
	ErrBodyMismatch        = errors.New("body does not match codec")
	ErrFlagsMismatch       = errors.New("header flags do not match tags")
)

// Validate checks the size fields of the tag against its data.
// Decoding does not validate, so files from slightly broken
// muxers can still be read.
func (t *Tag) Validate() error {
	if t.Data == nil {
		return ErrMissingData
	}
	if t.BackPointer != t.DataSize+TagHeaderSize {
		return fmt.Errorf("%w: data size %d, back pointer %d",
			ErrBackPointerMismatch, t.DataSize, t.BackPointer)
	}
	if size := t.Data.Size(); uint32(size) != t.DataSize {
		return fmt.Errorf("%w: declared %d, actual %d",
			ErrDataSizeMismatch, t.DataSize, size)
	}

	switch data := t.Data.(type) {
	case *VideoData:
		_, isAVC := data.Body.(*AVCPacket)
		if isAVC != (data.CodecID == CodecIDAVC) {
			return fmt.Errorf("%w: video codec %d", ErrBodyMismatch, data.CodecID)
		}
	case *AudioData:
		_, isAAC := data.Body.(*AACPacket)
		if isAAC != (data.SoundFormat == SoundFormatAAC) {
			return fmt.Errorf("%w: sound format %d", ErrBodyMismatch, data.SoundFormat)
		}
	}
	return nil
}

// Validate checks every tag and that the header flags
// announce each kind of stream present in the file.
func (f *File) Validate() error {
	var hasAudio, hasVideo bool
	for i, tag := range f.Tags {
		if err := tag.Validate(); err != nil {
			return fmt.Errorf("tag %d: %w", i, err)
		}
		switch tag.Type() {
		case TagTypeAudio:
			hasAudio = true
		case TagTypeVideo:
			hasVideo = true
		}
	}

	if hasAudio && !f.Header.HasAudio() {
		return fmt.Errorf("%w: audio tags without audio flag", ErrFlagsMismatch)
	}
	if hasVideo && !f.Header.HasVideo() {
		return fmt.Errorf("%w: video tags without video flag", ErrFlagsMismatch)
	}
	return nil
}
