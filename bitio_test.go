// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffpack

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"testing/iotest"
)

func TestWriteBits(t *testing.T) {
	const N = 128
	for range 100 {
		// Two of every width from 1 to 64, in random order.
		var bs [N]uint64
		var ns [N]int
		for i := range 64 {
			ns[i] = i + 1
			bs[i] = masklow(rand.Uint64(), ns[i])
			ns[i+64] = i + 1
			bs[i+64] = masklow(rand.Uint64(), ns[i+64])
		}
		rand.Shuffle(N, func(i, j int) {
			bs[i], bs[j] = bs[j], bs[i]
			ns[i], ns[j] = ns[j], ns[i]
		})

		testBitWriter(t, bs[:], ns[:])
	}

	testBitWriter(t, []uint64{17, 1232323, 1 << 31}, []int{32, 32, 32})
	testBitWriter(t, []uint64{0, 1, 1, 1, 0, 1}, []int{1, 1, 1, 1, 1, 1})
	testBitWriter(t, []uint64{0xab, 0xcd}, []int{8, 8})
	testBitWriter(t, []uint64{1}, []int{1})
	testBitWriter(t, nil, nil)
}

// preserve only the low-order n bits of u.
func masklow(u uint64, n int) uint64 {
	return u & ((uint64(1) << n) - 1)
}

func testBitWriter(t *testing.T, bs []uint64, ns []int) {
	t.Helper()
	var buf bytes.Buffer
	bw := newBitWriter(&buf)
	total := 0
	for i := range len(bs) {
		if masklow(bs[i], ns[i]) != bs[i] {
			t.Fatalf("bad value: %d does not fit in %d bits", bs[i], ns[i])
		}
		bw.writeBits(bs[i], ns[i])
		total += ns[i]
	}
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}
	got := byteString(buf.Bytes())
	want := bitstring(bs, ns)
	if got != want {
		t.Errorf("\ngot  %s\nwant %s", got, want)
	}
	if g, w := int(bw.padding), (8-total%8)%8; g != w {
		t.Errorf("padding: got %d, want %d", g, w)
	}
	if g, w := bw.written, uint64(total); g != w {
		t.Errorf("written: got %d, want %d", g, w)
	}
}

func byteString(bs []byte) string {
	var sb strings.Builder
	for i, b := range bs {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%08b", b)
	}
	return sb.String()
}

// bitstring renders the values most-significant bit first, split into
// bytes, with the last byte zero-filled on the right.
func bitstring(bs []uint64, ns []int) string {
	var sb strings.Builder
	for i, b := range bs {
		s := fmt.Sprintf("%064b", b)
		sb.WriteString(s[len(s)-ns[i]:])
	}
	s := sb.String()
	var bytes []string
	for len(s) > 0 {
		if len(s) < 8 {
			s += strings.Repeat("0", 8-len(s))
		}
		bytes = append(bytes, s[:8])
		s = s[8:]
	}
	return strings.Join(bytes, ":")
}

func TestBitWriterNotByteWriter(t *testing.T) {
	var buf bytes.Buffer
	// Hide buf's WriteByte method.
	bw := newBitWriter(struct{ io.Writer }{&buf})
	if bw.wrapper == nil {
		t.Fatal("expected a bufio wrapper")
	}
	bw.writeBits(0b101, 3)
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}
	if got, want := byteString(buf.Bytes()), "10100000"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestReadBits(t *testing.T) {
	for _, nbits := range []int{0, 1, 7, 8, 9, 15, 16, 17, 1000, 4099} {
		bits := make([]uint64, nbits)
		for i := range bits {
			bits[i] = uint64(rand.IntN(2))
		}
		var buf bytes.Buffer
		bw := newBitWriter(&buf)
		for _, b := range bits {
			bw.writeBits(b, 1)
		}
		if err := bw.Close(); err != nil {
			t.Fatal(err)
		}
		encoded := buf.Bytes()

		for _, r := range []io.Reader{
			bytes.NewReader(encoded),
			iotest.OneByteReader(bytes.NewReader(encoded)),
		} {
			got := readAllBits(t, newBitReader(r, bw.padding))
			if !slices.Equal(got, bits) {
				t.Errorf("%d bits: got %d bits back, mismatch", nbits, len(got))
			}
		}
	}
}

func readAllBits(t *testing.T, br *bitReader) []uint64 {
	t.Helper()
	var got []uint64
	for {
		b, err := br.readBit()
		if err == io.EOF {
			return got
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, b)
	}
}

func TestReadBitsPadding(t *testing.T) {
	// Only the last byte loses its low padding bits.
	br := newBitReader(bytes.NewReader([]byte{0b10110011, 0b01011111}), 5)
	var sb strings.Builder
	for _, b := range readAllBits(t, br) {
		sb.WriteByte('0' + byte(b))
	}
	if got, want := sb.String(), "10110011"+"010"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestReadBitsError(t *testing.T) {
	errBoom := fmt.Errorf("boom")
	br := newBitReader(iotest.ErrReader(errBoom), 0)
	if _, err := br.readBit(); err != errBoom {
		t.Errorf("got %v, want %v", err, errBoom)
	}
}
