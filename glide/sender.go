package glide

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

// Sender streams a local file to the peer: one metadata frame announcing
// the basename and byte count, then the payload in fixed-size chunks.
type Sender struct {
	conn             *Conn
	callbacks        *Callbacks
	logger           Logger
	progressInterval time.Duration
}

func newSender(conn *Conn, callbacks *Callbacks, logger Logger, progressInterval time.Duration) *Sender {
	return &Sender{
		conn:             conn,
		callbacks:        callbacks,
		logger:           logger,
		progressInterval: progressInterval,
	}
}

// SendFile uploads the file at path. The caller has already confirmed
// path names an existing regular file and the peer has acknowledged the
// glide request. The declared size is captured at the leading stat; if
// the file shrinks underneath the chunk loop the transfer stops short
// without an error (see SendStream).
func (s *Sender) SendFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return Errorf(ErrLocalIO, "stat %s: %v", path, err)
	}
	file, err := os.Open(path)
	if err != nil {
		return Errorf(ErrLocalIO, "open %s: %v", path, err)
	}
	defer file.Close()

	return s.SendStream(file, filepath.Base(path), info.Size())
}

// SendStream streams size bytes from r to the peer under the given name:
// one metadata frame, then exactly ChunkCount(size) chunk writes.
//
// If r runs dry before the loop completes, the transfer stops without an
// error: fewer bytes than the metadata declared may have been sent, and
// the condition is logged rather than masked.
func (s *Sender) SendStream(r io.Reader, name string, size int64) error {
	if err := s.conn.WriteFrame(EncodeMetadata(TransferMetadata{Filename: name, Size: size})); err != nil {
		return err
	}
	s.logger.Debug("upload %s: metadata sent (%d bytes declared)", name, size)

	chunkSize := s.conn.ChunkSize()
	chunks := ChunkCount(size, chunkSize)

	s.callbacks.OnTransferStart(name, size)
	tracker := NewProgressTracker(s.callbacks.OnProgress, s.progressInterval)
	tracker.Start(name, chunks)

	buf := make([]byte, chunkSize)
	var chunksSent, bytesSent int64
	for i := int64(0); i < chunks; i++ {
		n, readErr := r.Read(buf)
		if n == 0 {
			if readErr != nil && readErr != io.EOF {
				return Errorf(ErrLocalIO, "read %s: %v", name, readErr)
			}
			// File shrank after the stat. Tolerated short transfer.
			break
		}
		if err := s.conn.WriteFrame(buf[:n]); err != nil {
			return err
		}
		chunksSent++
		bytesSent += int64(n)
		tracker.Update(chunksSent)
	}

	if bytesSent < size {
		s.logger.Error("upload %s: short transfer, declared %d bytes but sent %d", name, size, bytesSent)
	}

	duration := tracker.Complete()
	s.logger.Info("upload %s: %d/%d chunks, %d bytes in %v", name, chunksSent, chunks, bytesSent, duration)
	s.callbacks.OnTransferComplete(name, bytesSent, duration)

	return nil
}
