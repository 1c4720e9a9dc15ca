package glide

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds session configuration.
type Config struct {
	// ChunkSize bounds every protocol read and every payload chunk.
	ChunkSize int

	// DownloadDir is where received files land. Empty means the working
	// directory, with the peer-supplied name used verbatim.
	DownloadDir string

	// ProgressInterval throttles progress callbacks. Zero reports every
	// chunk.
	ProgressInterval time.Duration
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:        DefaultChunkSize,
		DownloadDir:      "",
		ProgressInterval: 0,
	}
}

// Option configures a Session.
type Option func(*Session)

// WithConfig sets the session configuration.
func WithConfig(config *Config) Option {
	return func(s *Session) {
		s.config = config
	}
}

// WithCallbacks sets the session callbacks.
func WithCallbacks(callbacks *Callbacks) Option {
	return func(s *Session) {
		s.callbacks = mergeCallbacks(callbacks)
	}
}

// WithLogger sets a logger for protocol debugging. Wire traffic is logged
// through a LoggingStream wrapper.
func WithLogger(logger Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithContext sets the session context. Cancellation is observed between
// commands; an in-flight transfer always runs to completion or failure.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		s.ctx = ctx
	}
}

// Session owns one authenticated connection to a Glide server and drives
// the lockstep command loop over it. The connection is never touched from
// more than one goroutine: Run's dispatcher is the only code on the wire,
// and the operator goroutine only exchanges command text and outcomes
// with it over a single-slot handoff.
type Session struct {
	id        uuid.UUID
	conn      *Conn
	config    *Config
	callbacks *Callbacks
	logger    Logger
	ctx       context.Context
	username  string

	sender   *Sender
	receiver *Receiver
}

// NewSession creates a session over stream. The handshake has not run
// yet; call Handshake or Run.
func NewSession(stream Stream, opts ...Option) *Session {
	s := &Session{
		id:        uuid.New(),
		config:    DefaultConfig(),
		callbacks: defaultCallbacks(),
		logger:    NoopLogger{},
		ctx:       context.Background(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if _, noop := s.logger.(NoopLogger); !noop {
		stream = NewLoggingStream(stream, s.logger, "conn")
	}

	s.conn = NewConn(stream, s.config.ChunkSize)
	s.sender = newSender(s.conn, s.callbacks, s.logger, s.config.ProgressInterval)
	s.receiver = newReceiver(s.conn, s.callbacks, s.logger, s.config.DownloadDir, s.config.ProgressInterval)

	s.logger.Debug("session %s created", s.id)
	return s
}

// ID returns the session identifier used in log correlation.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Username returns the accepted username, or "" before the handshake.
func (s *Session) Username() string {
	return s.username
}

// Outcome reports the result of one dispatched command.
type Outcome struct {
	Command  Command
	Response ServerResponse
	Err      error
}

// commandLine carries one prompt result across the operator/connection
// handoff.
type commandLine struct {
	text string
	err  error
}

// Run performs the handshake, then loops: one command in, one classified
// response out, until the operator exits or the peer closes the
// connection.
//
// Two goroutines share the work. The operator goroutine produces command
// lines through OnCommandPrompt; the dispatcher (this goroutine) owns the
// connection. They meet on an unbuffered channel pair, so at most one
// command is ever in flight and the dispatcher never blocks on terminal
// I/O mid-protocol.
func (s *Session) Run() error {
	if _, err := s.Handshake(); err != nil {
		s.callbacks.OnNotice("Connection lost during handshake: " + err.Error())
		return err
	}

	cmdCh := make(chan commandLine)
	outCh := make(chan Outcome)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			line, err := s.callbacks.OnCommandPrompt()
			select {
			case cmdCh <- commandLine{text: line, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
			select {
			case <-outCh:
			case <-done:
				return
			}
		}
	}()

	for {
		var line commandLine
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case line = <-cmdCh:
		}

		if line.err != nil {
			// Prompt source went away; treat as a clean exit.
			s.logger.Info("session %s: prompt closed: %v", s.id, line.err)
			return nil
		}

		text := strings.TrimSpace(line.text)
		if text == "exit" {
			s.callbacks.OnNotice("Thank you for using Glide. Goodbye!")
			return nil
		}

		outcome := s.Execute(text)
		if !IsRecoverable(outcome.Err) {
			s.callbacks.OnNotice("Server disconnected unexpectedly.")
			return outcome.Err
		}

		select {
		case outCh <- outcome:
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
}

// Execute dispatches one command line: parse, validate locally, send,
// classify the reply, and hand off to the transfer engine when the
// command moves a file. Every failure is reported through OnNotice; only
// a closed connection comes back as a fatal error.
func (s *Session) Execute(line string) Outcome {
	cmd := ParseCommand(line)

	if !cmd.Validate() {
		s.callbacks.OnNotice(fmt.Sprintf("Invalid command '%s'. Use 'help' to see more", strings.TrimSpace(line)))
		return Outcome{
			Command: cmd,
			Err:     Errorf(ErrValidationRejected, "invalid command %q", strings.TrimSpace(line)),
		}
	}

	// A glide that cannot be satisfied locally never reaches the server.
	if cmd.Kind == CmdGlide {
		info, err := os.Stat(cmd.Path)
		if err != nil || !info.Mode().IsRegular() {
			s.callbacks.OnNotice(fmt.Sprintf("Path '%s' is invalid. File does not exist", cmd.Path))
			return Outcome{
				Command: cmd,
				Err:     Errorf(ErrLocalIO, "no regular file at %q", cmd.Path),
			}
		}
	}

	if err := s.conn.WriteString(cmd.Encode()); err != nil {
		return Outcome{Command: cmd, Err: err}
	}
	frame, err := s.conn.ReadFrame()
	if err != nil {
		return Outcome{Command: cmd, Err: err}
	}
	response := ClassifyResponse(frame)

	if response.Kind == ResponseUnknownCommand {
		s.callbacks.OnNotice(fmt.Sprintf("Invalid command '%s'. Use 'help' to see more", cmd.Encode()))
		return Outcome{
			Command:  cmd,
			Response: response,
			Err:      Errorf(ErrServerRejected, "server did not recognize %q", cmd.Encode()),
		}
	}

	outcome := Outcome{Command: cmd, Response: response}

	switch cmd.Kind {
	case CmdGlide:
		if response.Kind != ResponseGlideRequestSent {
			outcome.Err = Errorf(ErrServerRejected, "glide request failed: %s", response)
			s.callbacks.OnNotice("Glide request failed! " + response.String())
			break
		}
		if err := s.sender.SendFile(cmd.Path); err != nil {
			outcome.Err = err
			if IsRecoverable(err) {
				s.callbacks.OnNotice("Upload failed: " + err.Error())
			}
			break
		}
		s.callbacks.OnNotice("File upload completed successfully!")

	case CmdOk:
		if response.Kind != ResponseOkSuccess {
			outcome.Err = Errorf(ErrServerRejected, "ok failed: %s", response)
			s.callbacks.OnNotice("`ok` failed: " + response.String())
			break
		}
		s.callbacks.OnNotice("Getting file...")
		dest, _, err := s.receiver.ReceiveFile()
		if err != nil {
			outcome.Err = err
			if IsRecoverable(err) {
				s.callbacks.OnNotice("Download failed: " + err.Error())
			}
			break
		}
		s.callbacks.OnNotice("File transfer completed: " + dest)

	case CmdList:
		if response.Kind != ResponseConnectedUsers {
			outcome.Err = Errorf(ErrServerRejected, "list failed: %s", response)
			s.callbacks.OnNotice("Command failed: " + response.String())
			break
		}
		var b strings.Builder
		b.WriteString("Connected users:")
		for _, user := range response.Users {
			b.WriteString("\n @" + user)
		}
		s.callbacks.OnNotice(b.String())

	case CmdRequests:
		if response.Kind != ResponseIncomingRequests {
			outcome.Err = Errorf(ErrServerRejected, "reqs failed: %s", response)
			s.callbacks.OnNotice("Command failed: " + response.String())
			break
		}
		var b strings.Builder
		b.WriteString("Incoming requests:")
		for _, req := range response.Requests {
			b.WriteString(fmt.Sprintf("\n From: %s, File: %s", req.From, req.Filename))
		}
		s.callbacks.OnNotice(b.String())

	case CmdNo:
		// No dedicated response variant; report whatever came back.
		s.callbacks.OnNotice(response.String())
	}

	return outcome
}
