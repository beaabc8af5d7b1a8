// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffpack

import (
	"fmt"
	"io"
	"math"
)

// bufSize is the size of the working buffer used for every pass over the data.
const bufSize = 64 << 10

// Frequencies holds one count per byte value, indexed by the byte.
// Every count starts at 1, so each of the 256 byte values gets a code
// whether or not it appears in the input.
type Frequencies [256]uint32

// NewFrequencies returns a table with every count set to 1.
func NewFrequencies() *Frequencies {
	var f Frequencies
	for i := range f {
		f[i] = 1
	}
	return &f
}

// Add counts each byte of p.
// It returns [ErrCountOverflow] if a count would exceed math.MaxUint32;
// counts for bytes before the offending one have already been added.
func (f *Frequencies) Add(p []byte) error {
	for _, b := range p {
		if f[b] == math.MaxUint32 {
			return fmt.Errorf("%w: byte %#02x", ErrCountOverflow, b)
		}
		f[b]++
	}
	return nil
}

// Total returns the sum of all counts.
func (f *Frequencies) Total() uint64 {
	var t uint64
	for _, c := range f {
		t += uint64(c)
	}
	return t
}

// CountFrequencies reads r to EOF and returns the byte counts,
// each seeded with 1.
func CountFrequencies(r io.Reader) (*Frequencies, error) {
	f := NewFrequencies()
	buf := make([]byte, bufSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if aerr := f.Add(buf[:n]); aerr != nil {
				return nil, aerr
			}
		}
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, fmt.Errorf("huffpack: reading input: %w", err)
		}
	}
}
