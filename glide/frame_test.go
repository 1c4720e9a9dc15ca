package glide

import (
	"bytes"
	"net"
	"testing"
)

func TestMetadataRoundTrip(t *testing.T) {
	meta := TransferMetadata{Filename: "notes.txt", Size: 2500}
	encoded := EncodeMetadata(meta)
	if string(encoded) != "notes.txt:2500" {
		t.Fatalf("EncodeMetadata = %q", encoded)
	}

	decoded, err := DecodeMetadata(encoded)
	if err != nil {
		t.Fatalf("DecodeMetadata failed: %v", err)
	}
	if decoded != meta {
		t.Errorf("round trip yielded %+v, want %+v", decoded, meta)
	}
}

func TestEncodeMetadataUsesBasename(t *testing.T) {
	encoded := EncodeMetadata(TransferMetadata{Filename: "/home/alice/docs/notes.txt", Size: 10})
	if string(encoded) != "notes.txt:10" {
		t.Errorf("EncodeMetadata = %q, want basename only", encoded)
	}
}

func TestDecodeMetadataMalformed(t *testing.T) {
	inputs := []string{
		"no separator here",
		"too:many:fields",
		"name:",
		"name:notanumber",
		"name:-5",
		"name:12.5",
	}
	for _, in := range inputs {
		if _, err := DecodeMetadata([]byte(in)); !IsMalformedFrame(err) {
			t.Errorf("DecodeMetadata(%q) err = %v, want malformed frame", in, err)
		}
	}
}

func TestDecodeMetadataZeroSize(t *testing.T) {
	meta, err := DecodeMetadata([]byte("empty.bin:0"))
	if err != nil {
		t.Fatalf("DecodeMetadata failed: %v", err)
	}
	if meta.Size != 0 {
		t.Errorf("Size = %d, want 0", meta.Size)
	}
}

func TestConnFrameExchange(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := NewConn(client, 64)
	s := NewConn(server, 64)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.WriteString("list")
	}()

	frame, err := s.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if string(frame) != "list" {
		t.Errorf("ReadFrame = %q, want %q", frame, "list")
	}
	if err := <-errCh; err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
}

func TestConnFramesNotCoalesced(t *testing.T) {
	// Each logical message gets its own flush boundary; two writes must
	// arrive as two reads on a synchronous pipe.
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := NewConn(client, 64)
	s := NewConn(server, 64)

	go func() {
		c.WriteString("first")
		c.WriteString("second")
	}()

	frame, err := s.ReadFrame()
	if err != nil {
		t.Fatalf("first ReadFrame failed: %v", err)
	}
	if string(frame) != "first" {
		t.Errorf("first frame = %q", frame)
	}

	frame, err = s.ReadFrame()
	if err != nil {
		t.Fatalf("second ReadFrame failed: %v", err)
	}
	if string(frame) != "second" {
		t.Errorf("second frame = %q", frame)
	}
}

func TestReadFrameSurfacesPeerClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	s := NewConn(server, 64)
	client.Close()

	if _, err := s.ReadFrame(); !IsConnectionClosed(err) {
		t.Fatalf("ReadFrame err = %v, want connection closed", err)
	}
}

func TestReadFrameBoundedByChunkSize(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	s := NewConn(server, 8)
	payload := bytes.Repeat([]byte("x"), 20)
	go client.Write(payload)

	var got []byte
	for len(got) < len(payload) {
		frame, err := s.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame failed: %v", err)
		}
		if len(frame) > 8 {
			t.Fatalf("frame of %d bytes exceeds chunk size", len(frame))
		}
		got = append(got, frame...)
	}
	if !bytes.Equal(got, payload) {
		t.Error("reassembled payload differs")
	}
}
