// Package logging routes the standard logger to stderr and, optionally, to a
// size-rotated log file.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for the log file.
const (
	MaxSizeMB  = 15
	MaxBackups = 3
	MaxAgeDays = 28
)

// Setup points the standard logger at stderr plus logFile when it is set.
// The returned closer releases the file; it is a no-op without a file.
func Setup(logFile string) io.Closer {
	return setup(log.Default(), os.Stderr, logFile)
}

func setup(logger *log.Logger, console io.Writer, logFile string) io.Closer {
	logger.SetFlags(log.LstdFlags)
	if logFile == "" {
		logger.SetOutput(console)
		return nopCloser{}
	}

	rotating := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(console, rotating))
	return rotating
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
