// SPDX-License-Identifier: GPL-2.0-or-later

// Package byteio reads and writes the big-endian integer fields used by
// the flv container and its amf0 payloads.
package byteio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// MaxUint24 largest value that fits in a 24-bit field.
const MaxUint24 = 1<<24 - 1

// Reader is the big-endian field reader used by every decoder.
//
// Running out of input in the middle of a field, or in the middle of a
// structure that has already been started, is reported as
// io.ErrUnexpectedEOF. Only ReadLeadByte reports a plain io.EOF.
type Reader struct {
	in  io.Reader
	buf [8]byte
}

// NewReader returns a new Reader using the specified io.Reader as the input.
// No read-ahead is done, the input is consumed exactly one field at a time.
func NewReader(in io.Reader) *Reader {
	if r, ok := in.(*Reader); ok {
		return r
	}
	return &Reader{in: in}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	return r.in.Read(p)
}

// ReadFull reads exactly len(p) bytes.
func (r *Reader) ReadFull(p []byte) error {
	_, err := io.ReadFull(r.in, p)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ReadBytes reads n bytes into a new slice. Zero bytes returns a nil slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	p := make([]byte, n)
	if err := r.ReadFull(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadLeadByte reads the first byte of a record. Unlike the other
// methods it returns io.EOF if the input ended before the record began.
func (r *Reader) ReadLeadByte() (uint8, error) {
	_, err := io.ReadFull(r.in, r.buf[:1])
	if err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// ReadUint8 reads 8 bits.
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.ReadFull(r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// ReadUint16 reads 16 bits.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.ReadFull(r.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

// ReadUint24 reads 24 bits.
func (r *Reader) ReadUint24() (uint32, error) {
	if err := r.ReadFull(r.buf[:3]); err != nil {
		return 0, err
	}
	return uint32(r.buf[0])<<16 | uint32(r.buf[1])<<8 | uint32(r.buf[2]), nil
}

// ReadInt24 reads a two's complement signed 24-bit value.
func (r *Reader) ReadInt24() (int32, error) {
	u, err := r.ReadUint24()
	if err != nil {
		return 0, err
	}
	// Sign extend bit 23.
	return int32(u<<8) >> 8, nil
}

// ReadUint32 reads 32 bits.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.ReadFull(r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.buf[:4]), nil
}

// ReadFloat64 reads a IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.ReadFull(r.buf[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(r.buf[:8])), nil
}

// Writer is the big-endian field writer used by every encoder.
type Writer struct {
	out io.Writer
	buf [8]byte

	// TryError holds the first error occurred in TryXXX() methods.
	TryError error
}

// NewWriter returns a new Writer using the specified io.Writer as the output.
func NewWriter(out io.Writer) *Writer {
	if w, ok := out.(*Writer); ok {
		return w
	}
	return &Writer{out: out}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

// WriteUint8 writes 8 bits.
func (w *Writer) WriteUint8(v uint8) error {
	w.buf[0] = v
	_, err := w.out.Write(w.buf[:1])
	return err
}

// WriteUint16 writes 16 bits.
func (w *Writer) WriteUint16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	_, err := w.out.Write(w.buf[:2])
	return err
}

// WriteUint24 writes the low 24 bits of v.
func (w *Writer) WriteUint24(v uint32) error {
	w.buf[0] = byte(v >> 16)
	w.buf[1] = byte(v >> 8)
	w.buf[2] = byte(v)
	_, err := w.out.Write(w.buf[:3])
	return err
}

// WriteInt24 writes v as a two's complement signed 24-bit value.
func (w *Writer) WriteInt24(v int32) error {
	return w.WriteUint24(uint32(v) & MaxUint24)
}

// WriteUint32 writes 32 bits.
func (w *Writer) WriteUint32(v uint32) error {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	_, err := w.out.Write(w.buf[:4])
	return err
}

// WriteFloat64 writes a IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) error {
	binary.BigEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	_, err := w.out.Write(w.buf[:8])
	return err
}

// TryWrite tries to write len(p) bytes.
func (w *Writer) TryWrite(p []byte) {
	if w.TryError == nil {
		_, w.TryError = w.Write(p)
	}
}

// TryWriteUint8 tries to write 8 bits.
func (w *Writer) TryWriteUint8(v uint8) {
	if w.TryError == nil {
		w.TryError = w.WriteUint8(v)
	}
}

// TryWriteUint16 tries to write 16 bits.
func (w *Writer) TryWriteUint16(v uint16) {
	if w.TryError == nil {
		w.TryError = w.WriteUint16(v)
	}
}

// TryWriteUint24 tries to write 24 bits.
func (w *Writer) TryWriteUint24(v uint32) {
	if w.TryError == nil {
		w.TryError = w.WriteUint24(v)
	}
}

// TryWriteInt24 tries to write a signed 24-bit value.
func (w *Writer) TryWriteInt24(v int32) {
	if w.TryError == nil {
		w.TryError = w.WriteInt24(v)
	}
}

// TryWriteUint32 tries to write 32 bits.
func (w *Writer) TryWriteUint32(v uint32) {
	if w.TryError == nil {
		w.TryError = w.WriteUint32(v)
	}
}

// TryWriteFloat64 tries to write a double.
func (w *Writer) TryWriteFloat64(v float64) {
	if w.TryError == nil {
		w.TryError = w.WriteFloat64(v)
	}
}

// SaturatingSub returns a-b, or 0 if b is larger than a.
func SaturatingSub(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}
