package glide

import (
	"os"
	"path/filepath"
	"time"
)

// Receiver accepts an incoming file: one metadata frame, then payload
// chunks appended to the destination until the declared size is reached.
type Receiver struct {
	conn             *Conn
	callbacks        *Callbacks
	logger           Logger
	downloadDir      string
	progressInterval time.Duration
}

func newReceiver(conn *Conn, callbacks *Callbacks, logger Logger, downloadDir string, progressInterval time.Duration) *Receiver {
	return &Receiver{
		conn:             conn,
		callbacks:        callbacks,
		logger:           logger,
		downloadDir:      downloadDir,
		progressInterval: progressInterval,
	}
}

// ReceiveFile downloads one file after the peer has confirmed the
// accepted request. It returns the destination path and the byte count
// received.
//
// The destination is named exactly as the metadata frame declares, with
// no collision check and no path sanitization; the name is logged before
// the file is created. A peer close before the declared size arrives
// leaves the truncated file on disk and returns ErrConnectionClosed.
func (r *Receiver) ReceiveFile() (string, int64, error) {
	frame, err := r.conn.ReadFrame()
	if err != nil {
		return "", 0, err
	}
	meta, err := DecodeMetadata(frame)
	if err != nil {
		return "", 0, err
	}

	dest := meta.Filename
	if r.downloadDir != "" {
		dest = filepath.Join(r.downloadDir, meta.Filename)
	}
	r.logger.Info("download %s: %d bytes declared, writing to %s", meta.Filename, meta.Size, dest)

	file, err := os.Create(dest)
	if err != nil {
		return "", 0, Errorf(ErrLocalIO, "create %s: %v", dest, err)
	}
	defer file.Close()

	r.callbacks.OnTransferStart(meta.Filename, meta.Size)
	tracker := NewProgressTracker(r.callbacks.OnProgress, r.progressInterval)
	tracker.Start(meta.Filename, meta.Size)

	var received int64
	for received < meta.Size {
		chunk, err := r.conn.ReadFrame()
		if err != nil {
			r.logger.Error("download %s: peer closed after %d/%d bytes", meta.Filename, received, meta.Size)
			return dest, received, err
		}
		if _, err := file.Write(chunk); err != nil {
			return dest, received, Errorf(ErrLocalIO, "write %s: %v", dest, err)
		}
		received += int64(len(chunk))
		tracker.Update(received)
	}

	duration := tracker.Complete()
	r.logger.Info("download %s: %d bytes in %v", meta.Filename, received, duration)
	r.callbacks.OnTransferComplete(meta.Filename, received, duration)

	return dest, received, nil
}
