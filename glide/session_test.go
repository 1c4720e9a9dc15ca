package glide

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// testSession builds a session over one end of an in-memory pipe with a
// notice recorder, returning the session, the peer end, and the recorder.
func testSession(t *testing.T) (*Session, net.Conn, func() string) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	var mu sync.Mutex
	var notices []string
	session := NewSession(client, WithCallbacks(&Callbacks{
		OnNotice: func(msg string) {
			mu.Lock()
			notices = append(notices, msg)
			mu.Unlock()
		},
	}))

	return session, server, func() string {
		mu.Lock()
		defer mu.Unlock()
		return strings.Join(notices, "\n")
	}
}

func TestExecuteList(t *testing.T) {
	session, server, notices := testSession(t)

	scriptedPeer(t, server, []ServerResponse{
		{Kind: ResponseConnectedUsers, Users: []string{"alice", "bob"}},
	})

	outcome := session.Execute("list")
	if outcome.Err != nil {
		t.Fatalf("Execute(list) err = %v", outcome.Err)
	}
	if outcome.Response.Kind != ResponseConnectedUsers {
		t.Fatalf("response kind = %v", outcome.Response.Kind)
	}
	if len(outcome.Response.Users) != 2 {
		t.Errorf("users = %v", outcome.Response.Users)
	}
	if !strings.Contains(notices(), "@alice") || !strings.Contains(notices(), "@bob") {
		t.Errorf("user list not reported: %q", notices())
	}
}

func TestExecuteRequests(t *testing.T) {
	session, server, notices := testSession(t)

	scriptedPeer(t, server, []ServerResponse{
		{Kind: ResponseIncomingRequests, Requests: []IncomingRequest{
			{From: "alice", Filename: "notes.txt"},
		}},
	})

	outcome := session.Execute("reqs")
	if outcome.Err != nil {
		t.Fatalf("Execute(reqs) err = %v", outcome.Err)
	}
	if !strings.Contains(notices(), "From: alice, File: notes.txt") {
		t.Errorf("requests not reported: %q", notices())
	}
}

func TestExecuteInvalidCommandStaysLocal(t *testing.T) {
	// No peer is wired up at all: a locally rejected command must never
	// touch the network, or Execute would block on the pipe forever.
	session, _, notices := testSession(t)

	outcome := session.Execute("ok bob")
	if e, ok := outcome.Err.(*Error); !ok || e.Type != ErrValidationRejected {
		t.Fatalf("err = %v, want validation rejected", outcome.Err)
	}
	if !strings.Contains(notices(), "Invalid command") {
		t.Errorf("rejection not reported: %q", notices())
	}
}

func TestExecuteGlideMissingFileStaysLocal(t *testing.T) {
	session, _, notices := testSession(t)

	outcome := session.Execute("glide /no/such/file.txt @bob")
	if e, ok := outcome.Err.(*Error); !ok || e.Type != ErrLocalIO {
		t.Fatalf("err = %v, want local I/O error", outcome.Err)
	}
	if !strings.Contains(notices(), "does not exist") {
		t.Errorf("missing file not reported: %q", notices())
	}
}

func TestExecuteServerUnknownCommand(t *testing.T) {
	session, server, notices := testSession(t)

	scriptedPeer(t, server, []ServerResponse{
		{Kind: ResponseUnknownCommand},
	})

	outcome := session.Execute("list")
	if e, ok := outcome.Err.(*Error); !ok || e.Type != ErrServerRejected {
		t.Fatalf("err = %v, want server rejected", outcome.Err)
	}
	if !IsRecoverable(outcome.Err) {
		t.Error("server rejection must not end the session")
	}
	if !strings.Contains(notices(), "Invalid command") {
		t.Errorf("rejection not reported: %q", notices())
	}
}

func TestExecuteGlideRejectedByServer(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	session, server, notices := testSession(t)
	scriptedPeer(t, server, []ServerResponse{
		{Kind: ResponseFailure, Message: "no such user"},
	})

	outcome := session.Execute("glide " + src + " @ghost")
	if e, ok := outcome.Err.(*Error); !ok || e.Type != ErrServerRejected {
		t.Fatalf("err = %v, want server rejected", outcome.Err)
	}
	if !strings.Contains(notices(), "no such user") {
		t.Errorf("reason not reported: %q", notices())
	}
}

func TestExecuteOkMalformedMetadataAbortsCommandOnly(t *testing.T) {
	session, server, _ := testSession(t)

	go func() {
		buf := make([]byte, DefaultChunkSize)
		if _, err := server.Read(buf); err != nil {
			return
		}
		server.Write(ServerResponse{Kind: ResponseOkSuccess}.Encode())
		// The metadata frame that follows is garbage.
		server.Write([]byte("not metadata at all"))
	}()

	outcome := session.Execute("ok @alice")
	if !IsMalformedFrame(outcome.Err) {
		t.Fatalf("err = %v, want malformed frame", outcome.Err)
	}
	if !IsRecoverable(outcome.Err) {
		t.Error("malformed frame must abort the command, not the session")
	}
}

func TestRunExitsCleanly(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	scriptedPeer(t, server, []ServerResponse{
		{Kind: ResponseUsernameOk},
		{Kind: ResponseConnectedUsers, Users: []string{"alice"}},
	})

	lines := []string{"list", "exit"}
	i := 0
	var mu sync.Mutex
	var notices []string
	session := NewSession(client, WithCallbacks(&Callbacks{
		OnUsernamePrompt: func() (string, error) { return "alice", nil },
		OnCommandPrompt: func() (string, error) {
			mu.Lock()
			defer mu.Unlock()
			line := lines[i]
			i++
			return line, nil
		},
		OnNotice: func(msg string) {
			mu.Lock()
			notices = append(notices, msg)
			mu.Unlock()
		},
	}))

	if err := session.Run(); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	joined := strings.Join(notices, "\n")
	if !strings.Contains(joined, "Connected users:") {
		t.Errorf("list output missing: %q", joined)
	}
	if !strings.Contains(joined, "Goodbye") {
		t.Errorf("exit notice missing: %q", joined)
	}
}

func TestRunEndsOnPeerClose(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close() })

	go func() {
		buf := make([]byte, DefaultChunkSize)
		server.Read(buf)
		server.Write(ServerResponse{Kind: ResponseUsernameOk}.Encode())
		server.Read(buf)
		server.Close()
	}()

	session := NewSession(client, WithCallbacks(&Callbacks{
		OnUsernamePrompt: func() (string, error) { return "alice", nil },
		OnCommandPrompt:  func() (string, error) { return "list", nil },
	}))

	err := session.Run()
	if !IsConnectionClosed(err) {
		t.Fatalf("Run err = %v, want connection closed", err)
	}
}
