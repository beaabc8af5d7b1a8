// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Package huffpack implements a static Huffman compressor for bytes.
//
// A compressed container is a 1-byte padding count, a table of 256
// little-endian uint32 byte frequencies, and the Huffman-coded payload
// packed most-significant bit first. The decoder rebuilds the code from
// the stored frequencies, so no other state is needed to decompress.
package huffpack

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxCodeLen is the longest code a [Code] can hold.
// A leaf at depth d needs a total weight of at least Fib(d+1) when every
// count is nonzero, and 256 uint32 counts sum to less than Fib(60),
// so real codes are well under this.
const maxCodeLen = 64

// A Code is a mapping from bytes to bit sequences.
type Code struct {
	codes  [256]bitcode
	maxLen int
}

// bitcode is a code of len bits, right-aligned in val.
type bitcode struct {
	val uint64
	len uint8
}

func (c bitcode) append(bit uint64) bitcode {
	return bitcode{val: c.val<<1 | bit, len: c.len + 1}
}

// NewCode constructs the Huffman [Code] for the given frequencies.
// Every frequency must be nonzero.
func NewCode(f *Frequencies) (*Code, error) {
	for s, n := range f {
		if n == 0 {
			return nil, fmt.Errorf("huffpack.NewCode: zero frequency for byte %#02x", s)
		}
	}
	c := &Code{}
	buildTree(f).walk(func(sym byte, bc bitcode) {
		c.codes[sym] = bc
		c.maxLen = max(c.maxLen, int(bc.len))
	})
	if c.maxLen > maxCodeLen {
		return nil, fmt.Errorf("huffpack.NewCode: code length %d exceeds %d bits", c.maxLen, maxCodeLen)
	}
	return c, nil
}

// Len returns the number of bits in the code for b.
func (c *Code) Len(b byte) int {
	return int(c.codes[b].len)
}

// String returns the code for b as a string of 0s and 1s.
func (c *Code) String(b byte) string {
	bc := c.codes[b]
	var sb strings.Builder
	for i := int(bc.len) - 1; i >= 0; i-- {
		sb.WriteByte('0' + byte(bc.val>>i&1))
	}
	return sb.String()
}

// decodeTable returns the inverse of c: each code mapped to its byte.
func (c *Code) decodeTable() map[bitcode]byte {
	m := make(map[bitcode]byte, len(c.codes))
	for s, bc := range c.codes {
		m[bc] = byte(s)
	}
	return m
}

// An Encoder encodes bytes with a [Code].
type Encoder struct {
	c  *Code
	bw *bitWriter
}

// NewEncoder returns an [Encoder] that writes encoded bits to w.
// The Encoder must be closed to write the final partial byte.
func (c *Code) NewEncoder(w io.Writer) *Encoder {
	return &Encoder{c: c, bw: newBitWriter(w)}
}

// Write encodes p.
func (e *Encoder) Write(p []byte) (int, error) {
	for i, b := range p {
		bc := e.c.codes[b]
		e.bw.writeBits(bc.val, int(bc.len))
		if err := e.bw.Err(); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Close writes the final partial byte, if any, and flushes.
// It does not close the underlying writer.
func (e *Encoder) Close() error {
	return e.bw.Close()
}

// Padding returns the number of zero bits that Close added to fill the last byte.
// It is always between 0 and 7, and is 0 until Close is called.
func (e *Encoder) Padding() uint8 {
	return e.bw.padding
}

// Bits returns the number of code bits written so far, not counting padding.
func (e *Encoder) Bits() uint64 {
	return e.bw.written
}

// A Decoder decodes data encoded by an [Encoder].
type Decoder struct {
	table  map[bitcode]byte
	maxLen int
	br     *bitReader
}

// NewDecoder returns a [Decoder] that reads encoded bits from r.
// The low padding bits of the last byte of r are ignored.
func (c *Code) NewDecoder(r io.Reader, padding uint8) *Decoder {
	return &Decoder{
		table:  c.decodeTable(),
		maxLen: c.maxLen,
		br:     newBitReader(r, padding),
	}
}

// WriteTo decodes the entire input and writes the bytes to w.
// It returns [ErrUnknownCode] if the input holds a bit sequence that
// matches no code, and [ErrTruncatedPayload] if the input ends partway
// through a code.
func (d *Decoder) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriterSize(w, bufSize)
	var (
		cur bitcode
		n   int64
	)
	flushed := func() int64 { return n - int64(bw.Buffered()) }
	for {
		bit, err := d.br.readBit()
		if err == io.EOF {
			if cur.len != 0 {
				return flushed(), fmt.Errorf("%w: %d bits left over after %d bytes", ErrTruncatedPayload, cur.len, n)
			}
			break
		}
		if err != nil {
			return flushed(), fmt.Errorf("huffpack: reading payload: %w", err)
		}
		cur = cur.append(bit)
		if s, ok := d.table[cur]; ok {
			if err := bw.WriteByte(s); err != nil {
				return flushed(), fmt.Errorf("huffpack: writing output: %w", err)
			}
			n++
			cur = bitcode{}
		} else if int(cur.len) >= d.maxLen {
			return flushed(), fmt.Errorf("%w: after %d bytes", ErrUnknownCode, n)
		}
	}
	if err := bw.Flush(); err != nil {
		return flushed(), fmt.Errorf("huffpack: writing output: %w", err)
	}
	return n, nil
}
