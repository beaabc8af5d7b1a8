// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffpack

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the size of an encoded [Header] in bytes.
const HeaderSize = 1 + 4*256

// A Header is the fixed-size prefix of a compressed container.
//
// Wire format:
//
//	padding = uint8, 0..7, number of filler bits in the last payload byte
//	counts  = 256 x uint32 little-endian, for byte values 0 through 255
//
// The payload follows immediately.
type Header struct {
	Padding     uint8
	Frequencies Frequencies
}

// MarshalBinary returns the [HeaderSize]-byte encoding of h.
func (h *Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, 1, HeaderSize)
	b[0] = h.Padding
	for _, c := range h.Frequencies {
		b = binary.LittleEndian.AppendUint32(b, c)
	}
	return b, nil
}

// UnmarshalBinary decodes a header from the first [HeaderSize] bytes of data.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: have %d of %d bytes", ErrHeaderTruncated, len(data), HeaderSize)
	}
	var nh Header
	nh.Padding = data[0]
	for i := range nh.Frequencies {
		nh.Frequencies[i] = binary.LittleEndian.Uint32(data[1+4*i:])
	}
	if err := nh.validate(); err != nil {
		return err
	}
	*h = nh
	return nil
}

func (h *Header) validate() error {
	if h.Padding > 7 {
		return fmt.Errorf("%w: padding count %d", ErrCorruptHeader, h.Padding)
	}
	for s, c := range h.Frequencies {
		if c == 0 {
			return fmt.Errorf("%w: zero count for byte %#02x", ErrCorruptHeader, s)
		}
	}
	return nil
}

// ReadHeader reads and validates a [Header] from r.
// If r ends before [HeaderSize] bytes, it returns an error wrapping [ErrHeaderTruncated].
func ReadHeader(r io.Reader) (*Header, error) {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("%w: read %d of %d bytes", ErrHeaderTruncated, n, HeaderSize)
	}
	if err != nil {
		return nil, fmt.Errorf("huffpack: reading header: %w", err)
	}
	h := &Header{}
	if err := h.UnmarshalBinary(buf[:]); err != nil {
		return nil, err
	}
	return h, nil
}

// Compress reads src from its current offset to EOF, twice, and writes a
// compressed container to dst starting at dst's current offset.
//
// The padding count is not known until the payload is written, so Compress
// writes a placeholder first and seeks back to fill it in. On success dst is
// left positioned after the payload.
func Compress(dst io.WriteSeeker, src io.ReadSeeker) error {
	srcStart, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("huffpack: seeking input: %w", err)
	}
	dstStart, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("huffpack: seeking output: %w", err)
	}

	bw := bufio.NewWriterSize(dst, bufSize)
	// Placeholder for the padding count.
	if err := bw.WriteByte(0); err != nil {
		return fmt.Errorf("huffpack: writing header: %w", err)
	}

	freqs, err := CountFrequencies(src)
	if err != nil {
		return err
	}
	h := Header{Frequencies: *freqs}
	hdr, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := bw.Write(hdr[1:]); err != nil {
		return fmt.Errorf("huffpack: writing header: %w", err)
	}

	code, err := NewCode(freqs)
	if err != nil {
		return err
	}
	if _, err := src.Seek(srcStart, io.SeekStart); err != nil {
		return fmt.Errorf("huffpack: rewinding input: %w", err)
	}
	enc := code.NewEncoder(bw)
	if _, err := io.CopyBuffer(enc, src, make([]byte, bufSize)); err != nil {
		return fmt.Errorf("huffpack: encoding payload: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("huffpack: writing payload: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("huffpack: writing payload: %w", err)
	}

	end, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("huffpack: seeking output: %w", err)
	}
	if _, err := dst.Seek(dstStart, io.SeekStart); err != nil {
		return fmt.Errorf("huffpack: seeking output: %w", err)
	}
	if _, err := dst.Write([]byte{enc.Padding()}); err != nil {
		return fmt.Errorf("huffpack: patching padding: %w", err)
	}
	if _, err := dst.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("huffpack: seeking output: %w", err)
	}
	return nil
}

// Decompress reads a compressed container from src and writes the original
// bytes to dst. It reads src sequentially and never seeks.
func Decompress(dst io.Writer, src io.Reader) error {
	br := bufio.NewReaderSize(src, bufSize)
	h, err := ReadHeader(br)
	if err != nil {
		return err
	}
	if _, err := br.Peek(1); errors.Is(err, io.EOF) && h.Padding != 0 {
		return fmt.Errorf("%w: padding count %d with empty payload", ErrCorruptHeader, h.Padding)
	}
	code, err := NewCode(&h.Frequencies)
	if err != nil {
		return err
	}
	_, err = code.NewDecoder(br, h.Padding).WriteTo(dst)
	return err
}

// Encode returns data compressed into a container.
func Encode(data []byte) ([]byte, error) {
	freqs := NewFrequencies()
	if err := freqs.Add(data); err != nil {
		return nil, err
	}
	code, err := NewCode(freqs)
	if err != nil {
		return nil, err
	}
	h := Header{Frequencies: *freqs}
	hdr, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(hdr)
	enc := code.NewEncoder(buf)
	if _, err := enc.Write(data); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	out[0] = enc.Padding()
	return out, nil
}

// Decode returns the original bytes of a container produced by [Encode] or [Compress].
func Decode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := Decompress(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
