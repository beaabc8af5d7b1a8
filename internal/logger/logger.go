// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Package logger provides the status logger used by the huffpack command.
package logger

import (
	"io"
	"log"
)

type Logger interface {
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

type stdLogger struct {
	l *log.Logger
}

// New returns a Logger that writes timestamped lines to w.
func New(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags)}
}

func (l *stdLogger) Infof(format string, v ...any)  { l.l.Printf("[INFO] "+format, v...) }
func (l *stdLogger) Errorf(format string, v ...any) { l.l.Printf("[ERROR] "+format, v...) }
