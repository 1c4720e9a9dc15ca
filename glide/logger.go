package glide

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger interface for Glide protocol logging
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// NoopLogger does nothing
type NoopLogger struct{}

func (NoopLogger) Debug(format string, args ...interface{}) {}
func (NoopLogger) Info(format string, args ...interface{})  {}
func (NoopLogger) Error(format string, args ...interface{}) {}

// LogrusLogger adapts a logrus entry to the Logger interface. Fields
// attached to the entry (session id, remote address) appear on every line.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger creates a Logger backed by the given logrus entry.
// A nil entry uses the logrus standard logger.
func NewLogrusLogger(entry *logrus.Entry) *LogrusLogger {
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	return &LogrusLogger{entry: entry}
}

func (l *LogrusLogger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *LogrusLogger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *LogrusLogger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// LoggingStream wraps a stream and logs all reads and writes.
// Payload chunks are truncated to keep the log readable.
type LoggingStream struct {
	stream Stream
	logger Logger
	name   string
}

// NewLoggingStream wraps stream so that every read and write is reported
// to logger at debug level.
func NewLoggingStream(stream Stream, logger Logger, name string) *LoggingStream {
	return &LoggingStream{
		stream: stream,
		logger: logger,
		name:   name,
	}
}

func (ls *LoggingStream) Read(p []byte) (int, error) {
	n, err := ls.stream.Read(p)
	if ls.logger != nil && n > 0 {
		data := p[:n]
		if n > 128 {
			ls.logger.Debug("%s: Read %d bytes: %q...[truncated]", ls.name, n, data[:128])
		} else {
			ls.logger.Debug("%s: Read %d bytes: %q", ls.name, n, data)
		}
	}
	if err != nil && err != io.EOF && ls.logger != nil {
		ls.logger.Error("%s: Read error: %v", ls.name, err)
	}
	return n, err
}

func (ls *LoggingStream) Write(p []byte) (int, error) {
	n, err := ls.stream.Write(p)
	if ls.logger != nil && n > 0 {
		data := p[:n]
		if n > 128 {
			ls.logger.Debug("%s: Wrote %d bytes: %q...[truncated]", ls.name, n, data[:128])
		} else {
			ls.logger.Debug("%s: Wrote %d bytes: %q", ls.name, n, data)
		}
	}
	if err != nil && ls.logger != nil {
		ls.logger.Error("%s: Write error: %v", ls.name, err)
	}
	return n, err
}
