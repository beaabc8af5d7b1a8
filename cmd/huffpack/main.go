// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Huffpack compresses and decompresses files with a static Huffman code.
//
// Usage:
//
//	huffpack c input output
//	huffpack d input output
//
// After each run it logs the input and output sizes, the elapsed time,
// and an XXH64 digest of the uncompressed file. The digest printed when
// compressing a file matches the one printed when decompressing its container.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/jba/huffpack"
	"github.com/jba/huffpack/internal/logger"
)

const usage = `usage:
  huffpack c input output    compress input into output
  huffpack d input output    decompress input into output
`

var errUsage = errors.New("usage")

func main() {
	lg := logger.New(os.Stderr)
	if err := run(os.Args[1:], lg); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		lg.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(args []string, lg logger.Logger) error {
	if len(args) != 3 {
		return errUsage
	}
	mode, inPath, outPath := args[0], args[1], args[2]
	var (
		op    func(out, in *os.File) error
		plain string // path of the uncompressed side
	)
	switch mode {
	case "c":
		op = func(out, in *os.File) error { return huffpack.Compress(out, in) }
		plain = inPath
	case "d":
		op = func(out, in *os.File) error { return huffpack.Decompress(out, in) }
		plain = outPath
	default:
		return errUsage
	}

	start := time.Now()
	if err := convert(op, inPath, outPath); err != nil {
		return err
	}
	elapsed := time.Since(start)

	inSize, err := fileSize(inPath)
	if err != nil {
		return err
	}
	outSize, err := fileSize(outPath)
	if err != nil {
		return err
	}
	lg.Infof("%d bytes -> %d bytes in %v", inSize, outSize, elapsed.Round(time.Microsecond))

	sum, err := digest(plain)
	if err != nil {
		return err
	}
	lg.Infof("xxh64 %016x %s", sum, plain)
	return nil
}

// convert runs op from inPath to outPath.
// If op fails, the partial output file is removed.
func convert(op func(out, in *os.File) error, inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := checkDistinct(in, outPath); err != nil {
		return err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := op(out, in); err != nil {
		out.Close()
		os.Remove(outPath)
		return fmt.Errorf("%s: %w", inPath, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return err
	}
	return nil
}

// checkDistinct returns an error if outPath names the already-open input file,
// which os.Create would truncate.
func checkDistinct(in *os.File, outPath string) error {
	ofi, err := os.Stat(outPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	ifi, err := in.Stat()
	if err != nil {
		return err
	}
	if os.SameFile(ifi, ofi) {
		return fmt.Errorf("%s: input and output are the same file", outPath)
	}
	return nil
}

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func digest(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return h.Sum64(), nil
}
