// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffpack

import (
	"bufio"
	"io"
	"math"
)

// A bitWriter packs bits most-significant first into bytes.
// Full bytes are written to its contained [io.ByteWriter].
// Write errors are stored and reported by [bitWriter.Close]
// or [bitWriter.Err].
// When the bitWriter is closed on a non-byte boundary, the last byte
// is zero-padded on the low side and the number of padding bits is recorded.
type bitWriter struct {
	err     error
	out     io.ByteWriter
	wrapper *bufio.Writer // non-nil if the destination is not an io.ByteWriter
	// acc holds unwritten bits in its low nbits bits,
	// the oldest bit being the most significant of those.
	acc     uint64
	nbits   int    // number of bits in acc; always < 8 between calls
	written uint64 // total bits passed to writeBits
	padding uint8
}

func newBitWriter(w io.Writer) *bitWriter {
	bw := &bitWriter{}
	if out, ok := w.(io.ByteWriter); ok {
		bw.out = out
	} else {
		bw.wrapper = bufio.NewWriterSize(w, bufSize)
		bw.out = bw.wrapper
	}
	return bw
}

// writeBits writes the low n bits of b, high bit first.
// n must be at most 64.
func (w *bitWriter) writeBits(b uint64, n int) {
	if w.err != nil {
		return
	}
	if n > 32 {
		w.writeBits(b>>32, n-32)
		b &= math.MaxUint32
		n = 32
	}
	w.written += uint64(n)
	w.acc = w.acc<<n | b
	w.nbits += n
	for w.nbits >= 8 {
		w.nbits -= 8
		w.writeByte(byte(w.acc >> w.nbits))
	}
	w.acc &= 1<<w.nbits - 1
}

// Close writes any partial last byte and flushes.
// It does not close the underlying writer.
func (w *bitWriter) Close() error {
	if w.nbits > 0 {
		w.padding = uint8(8 - w.nbits)
		w.writeByte(byte(w.acc << w.padding))
		w.acc, w.nbits = 0, 0
	}
	if w.wrapper != nil && w.err == nil {
		w.err = w.wrapper.Flush()
	}
	return w.err
}

func (w *bitWriter) writeByte(b byte) {
	if w.err != nil {
		return
	}
	w.err = w.out.WriteByte(b)
}

func (w *bitWriter) Err() error {
	return w.err
}

// A bitReader reads bits most-significant first.
// It looks one byte ahead so that it knows when it holds the last byte,
// whose low padding bits it never returns.
// After the last meaningful bit, readBit returns io.EOF.
type bitReader struct {
	err     error
	r       *bufio.Reader
	padding int
	cur     byte // unread bits, left-aligned
	nbits   int  // number of unread bits in cur
}

func newBitReader(r io.Reader, padding uint8) *bitReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, bufSize)
	}
	return &bitReader{r: br, padding: int(padding)}
}

func (r *bitReader) readBit() (uint64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.nbits == 0 {
		r.fill()
		if r.err != nil {
			return 0, r.err
		}
	}
	bit := uint64(r.cur >> 7)
	r.cur <<= 1
	r.nbits--
	return bit, nil
}

// fill loads the next byte. A clean end of input leaves io.EOF in r.err.
func (r *bitReader) fill() {
	b, err := r.r.ReadByte()
	if err != nil {
		r.err = err
		return
	}
	r.cur = b
	r.nbits = 8
	if _, err := r.r.Peek(1); err == io.EOF {
		r.nbits -= r.padding
	} else if err != nil {
		r.err = err
	}
}
