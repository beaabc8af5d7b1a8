// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffpack

import "errors"

var (
	// ErrHeaderTruncated is returned when the input ends before a full
	// [HeaderSize]-byte header could be read.
	ErrHeaderTruncated = errors.New("huffpack: header truncated")

	// ErrCorruptHeader is returned for a header that no encoder could have
	// written: a padding count above 7, a zero frequency, or a nonzero
	// padding count with no payload.
	ErrCorruptHeader = errors.New("huffpack: corrupt header")

	// ErrUnknownCode is returned when the payload contains a bit sequence
	// longer than any code without matching one.
	ErrUnknownCode = errors.New("huffpack: unrecognized code")

	// ErrTruncatedPayload is returned when the payload ends in the middle of a code.
	ErrTruncatedPayload = errors.New("huffpack: payload ends inside a code")

	// ErrCountOverflow is returned when a byte value occurs too often
	// for its count to fit in the header.
	ErrCountOverflow = errors.New("huffpack: frequency count overflows uint32")
)
