// SPDX-License-Identifier: GPL-2.0-or-later

package flv

import (
	"errors"
	"fmt"
	"io"
	"time"

	"flvkit/pkg/byteio"
	"flvkit/pkg/flv/amf0"
)

// ErrInvalidFile the back pointer before the first tag is not zero.
var ErrInvalidFile = errors.New("invalid file")

// File decoded flv file.
type File struct {
	Header Header
	Tags   []*Tag
}

// Decode reads a whole file. Reading stops without error when the
// input ends between two tags, any other error is returned.
func Decode(in io.Reader) (*File, error) {
	r, header, err := NewReader(in)
	if err != nil {
		return nil, err
	}

	var tags []*Tag
	for {
		tag, err := r.ReadTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		tags = append(tags, tag)
	}

	return &File{
		Header: *header,
		Tags:   tags,
	}, nil
}

// Encode writes the header, data offset, zero back pointer and all tags.
func (f *File) Encode(out io.Writer) error {
	w, err := NewWriter(out, f.Header)
	if err != nil {
		return err
	}
	for _, tag := range f.Tags {
		if err := w.WriteTag(tag); err != nil {
			return err
		}
	}
	return nil
}

// Reader reads tags one at a time.
type Reader struct {
	in       *byteio.Reader
	tagCount int
}

// NewReader reads the header and the zero back pointer that follows it.
func NewReader(in io.Reader) (*Reader, *Header, error) {
	r := byteio.NewReader(in)

	header, err := decodeHeader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("header: %w", err)
	}

	zero, err := r.ReadUint32()
	if err != nil {
		return nil, nil, fmt.Errorf("read first back pointer: %w", err)
	}
	if zero != 0 {
		return nil, nil, fmt.Errorf("%w: first back pointer: %d", ErrInvalidFile, zero)
	}

	return &Reader{in: r}, header, nil
}

// ReadTag reads the next tag. Returns io.EOF at the end of the input.
func (r *Reader) ReadTag() (*Tag, error) {
	tag, err := decodeTag(r.in)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("tag %d: %w", r.tagCount, err)
	}
	r.tagCount++
	return tag, nil
}

// Writer writes tags one at a time.
type Writer struct {
	out *byteio.Writer
}

// NewWriter creates a new Writer and writes the header, the derived
// data offset and the zero back pointer.
func NewWriter(out io.Writer, header Header) (*Writer, error) {
	w := byteio.NewWriter(out)

	header.encode(w)
	w.TryWriteUint32(HeaderSize)
	w.TryWriteUint32(0)
	if w.TryError != nil {
		return nil, fmt.Errorf("write header: %w", w.TryError)
	}

	return &Writer{out: w}, nil
}

// WriteTag writes a single tag.
func (w *Writer) WriteTag(tag *Tag) error {
	if err := tag.encode(w.out); err != nil {
		return err
	}
	if w.out.TryError != nil {
		return fmt.Errorf("write tag: %w", w.out.TryError)
	}
	return nil
}

// Metadata returns the payload of the first onMetaData script tag.
func (f *File) Metadata() (*ScriptData, bool) {
	for _, tag := range f.Tags {
		script, ok := tag.Data.(*ScriptData)
		if ok && script.Name.Text() == OnMetaData {
			return script, true
		}
	}
	return nil, false
}

// SetMetadata replaces the metadata of the first onMetaData script tag,
// or inserts a new script tag in front of all other tags.
func (f *File) SetMetadata(metadata amf0.EcmaArray) error {
	for _, tag := range f.Tags {
		script, ok := tag.Data.(*ScriptData)
		if !ok || script.Name.Text() != OnMetaData {
			continue
		}
		script.Metadata = metadata
		tag.DataSize = uint32(script.Size())
		tag.BackPointer = tag.DataSize + TagHeaderSize
		return nil
	}

	script, err := NewScriptData(OnMetaData, metadata)
	if err != nil {
		return err
	}
	f.Tags = append([]*Tag{NewScriptTag(script, 0)}, f.Tags...)
	return nil
}

// Duration returns the largest tag timestamp.
func (f *File) Duration() time.Duration {
	var last uint32
	for _, tag := range f.Tags {
		if tag.Timestamp > last {
			last = tag.Timestamp
		}
	}
	return time.Duration(last) * time.Millisecond
}
