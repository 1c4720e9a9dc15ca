package glide

import (
	"bufio"
	"io"
	"path"
	"strconv"
	"strings"
)

// Stream is the duplex byte stream carrying a session. net.Conn satisfies
// it, as does the client half of an SSH tunnel or an in-memory pipe.
type Stream interface {
	io.Reader
	io.Writer
}

// Conn frames discrete protocol messages over a raw byte stream.
//
// The protocol is strictly lockstep, so every logical message is flushed
// on its own boundary: WriteFrame never returns success on a partial
// write, and no two messages share a flush. Reads fill a fixed-size
// buffer; a zero-byte read means the peer closed the connection and is
// always surfaced as ErrConnectionClosed.
type Conn struct {
	stream Stream
	w      *bufio.Writer
	rbuf   []byte
}

// NewConn creates a framing codec over stream. chunkSize bounds every read
// and every payload chunk; values <= 0 use DefaultChunkSize.
func NewConn(stream Stream, chunkSize int) *Conn {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Conn{
		stream: stream,
		w:      bufio.NewWriterSize(stream, chunkSize),
		rbuf:   make([]byte, chunkSize),
	}
}

// ChunkSize returns the bounded read/write unit for this connection.
func (c *Conn) ChunkSize() int {
	return len(c.rbuf)
}

// WriteFrame writes one logical message and flushes it to the peer.
func (c *Conn) WriteFrame(p []byte) error {
	if _, err := c.w.Write(p); err != nil {
		return Errorf(ErrConnectionClosed, "write failed: %v", err)
	}
	if err := c.w.Flush(); err != nil {
		return Errorf(ErrConnectionClosed, "flush failed: %v", err)
	}
	return nil
}

// WriteString writes one logical text message and flushes it.
func (c *Conn) WriteString(s string) error {
	return c.WriteFrame([]byte(s))
}

// ReadFrame performs one bounded read and returns the bytes received.
// The returned slice aliases the connection's read buffer and is only
// valid until the next read.
func (c *Conn) ReadFrame() ([]byte, error) {
	n, err := c.stream.Read(c.rbuf)
	if n == 0 {
		if err == nil || err == io.EOF {
			return nil, NewError(ErrConnectionClosed, "connection closed by peer")
		}
		return nil, Errorf(ErrConnectionClosed, "read failed: %v", err)
	}
	return c.rbuf[:n], nil
}

// TransferMetadata announces a file payload: its name and the number of
// bytes that will be streamed after the metadata frame.
type TransferMetadata struct {
	Filename string
	Size     int64
}

// EncodeMetadata renders m as the "<filename>:<size>" wire form. The
// filename is reduced to its base name; the sender never leaks local
// directory structure.
func EncodeMetadata(m TransferMetadata) []byte {
	return []byte(path.Base(m.Filename) + MetadataSeparator + strconv.FormatInt(m.Size, 10))
}

// DecodeMetadata parses a "<filename>:<size>" frame. It fails with
// ErrMalformedFrame when splitting on the separator does not yield exactly
// two fields or the size field is not a non-negative integer.
//
// The whole frame must arrive within a single bounded read, which caps
// filename length plus size digits at the chunk size. The sender flushes
// the metadata frame on its own boundary to keep it in one read.
func DecodeMetadata(p []byte) (TransferMetadata, error) {
	text := string(p)
	parts := strings.Split(text, MetadataSeparator)
	if len(parts) != 2 {
		return TransferMetadata{}, Errorf(ErrMalformedFrame, "metadata %q: want 2 fields, got %d", text, len(parts))
	}
	size, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil || size < 0 {
		return TransferMetadata{}, Errorf(ErrMalformedFrame, "metadata %q: bad size field", text)
	}
	return TransferMetadata{
		Filename: strings.TrimSpace(parts[0]),
		Size:     size,
	}, nil
}
