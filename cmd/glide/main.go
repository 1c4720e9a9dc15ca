package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/drunlade/go-glide/glide"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var (
	verbose     = flag.Bool("v", false, "verbose protocol logging")
	quiet       = flag.Bool("q", false, "quiet mode (no progress output)")
	logFile     = flag.String("log", "", "protocol log file (for debugging)")
	downloadDir = flag.String("dir", "", "directory for received files (default: working directory)")
	sshAddr     = flag.String("ssh", "", "SSH bastion (user@host:port) to tunnel the connection through")
	sshPassword = flag.String("ssh-password", "", "SSH password (or GLIDE_SSH_PASSWORD env var)")
	help        = flag.Bool("h", false, "show help")
)

const helpText = `Available commands:
  list               show connected users
  reqs               show incoming glide requests
  glide <path> @user offer to send a file to a user
  ok @user           accept a pending request from a user
  no @user           refuse a pending request from a user
  help               show this text
  exit               leave`

func showUsage(exitCode int) {
	fmt.Fprintf(os.Stderr, `Usage: %s [options] <host> <port>

Options:
  -v                verbose protocol logging
  -q                quiet mode (no progress output)
  -log file         protocol log file for debugging
  -dir path         directory for received files
  -ssh user@host:port  SSH bastion to tunnel through
  -ssh-password     SSH password (or GLIDE_SSH_PASSWORD env var)
  -h                show help

Example:
  %s 192.168.1.10 5123
  %s -ssh ops@bastion:22 -ssh-password secret 10.0.0.5 5123
`, os.Args[0], os.Args[0], os.Args[0])
	os.Exit(exitCode)
}

func main() {
	flag.Parse()

	if *help {
		showUsage(0)
	}

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <host> <port>\n", os.Args[0])
		os.Exit(1)
	}
	address := net.JoinHostPort(args[0], args[1])

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := signalContext(sigChan)
	defer cancel()

	logger := buildLogger(address)

	conn, cleanup, err := dial(address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	fmt.Printf("Connected to server at %s!\n", address)

	ui, restore, err := newUI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Terminal setup failed: %v\n", err)
		os.Exit(1)
	}
	defer restore()
	go func() {
		// Put the terminal back before dying on a second signal.
		<-ctx.Done()
		restore()
	}()

	callbacks := &glide.Callbacks{
		OnUsernamePrompt: func() (string, error) {
			return ui.ReadLine("Enter your username: ")
		},
		OnCommandPrompt: func() (string, error) {
			for {
				line, err := ui.ReadLine("glide> ")
				if err != nil {
					return "", err
				}
				if strings.TrimSpace(line) == "help" {
					ui.Print(helpText)
					continue
				}
				return line, nil
			}
		},
		OnNotice: func(message string) {
			ui.Print(message)
		},
		OnProgress: func(filename string, done, total int64, rate float64) {
			if *quiet {
				return
			}
			percent := float64(0)
			if total > 0 {
				percent = float64(done) / float64(total) * 100
			}
			ui.Printf("\r%s: %d/%d (%.0f%%)", filename, done, total, percent)
		},
		OnTransferStart: func(filename string, size int64) {
			if !*quiet {
				ui.Printf("Transferring: %s (%d bytes)\n", filename, size)
			}
		},
		OnTransferComplete: func(filename string, transferred int64, duration time.Duration) {
			if !*quiet {
				ui.Printf("\n%s: %d bytes in %v\n", filename, transferred, duration)
			}
		},
	}

	session := glide.NewSession(conn,
		glide.WithConfig(&glide.Config{
			ChunkSize:        glide.DefaultChunkSize,
			DownloadDir:      *downloadDir,
			ProgressInterval: 100 * time.Millisecond,
		}),
		glide.WithCallbacks(callbacks),
		glide.WithLogger(logger),
		glide.WithContext(ctx),
	)

	ui.Print("Type 'help' to see available commands.")
	if err := session.Run(); err != nil {
		restore()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildLogger wires logrus when -v or -log is given, NoopLogger otherwise.
func buildLogger(address string) glide.Logger {
	if !*verbose && *logFile == "" {
		return glide.NoopLogger{}
	}

	ll := logrus.New()
	if *verbose {
		ll.SetLevel(logrus.DebugLevel)
	}
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open log file: %v\n", err)
			os.Exit(1)
		}
		ll.SetOutput(f)
	} else {
		ll.SetOutput(os.Stderr)
	}
	return glide.NewLogrusLogger(ll.WithFields(logrus.Fields{"server": address}))
}

// dial connects to the server, through the SSH bastion when one is given.
func dial(address string) (net.Conn, func(), error) {
	if *sshAddr == "" {
		conn, err := net.Dial("tcp", address)
		if err != nil {
			return nil, nil, err
		}
		return conn, func() { conn.Close() }, nil
	}

	user, bastion, ok := strings.Cut(*sshAddr, "@")
	if !ok {
		return nil, nil, fmt.Errorf("-ssh wants user@host:port, got %q", *sshAddr)
	}
	password := *sshPassword
	if password == "" {
		password = os.Getenv("GLIDE_SSH_PASSWORD")
	}
	if password == "" {
		return nil, nil, fmt.Errorf("-ssh-password or GLIDE_SSH_PASSWORD is required with -ssh")
	}

	tunnel, err := glide.DialTunnel(glide.TunnelConfig{
		Addr:     bastion,
		User:     user,
		Password: password,
	})
	if err != nil {
		return nil, nil, err
	}
	conn, err := tunnel.Dial(address)
	if err != nil {
		tunnel.Close()
		return nil, nil, err
	}
	return conn, func() {
		conn.Close()
		tunnel.Close()
	}, nil
}

func signalContext(sigChan chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

// ui abstracts line input and status output so the session engine works
// the same against a real terminal and a dumb pipe.
type ui interface {
	ReadLine(prompt string) (string, error)
	Print(message string)
	Printf(format string, args ...interface{})
}

// newUI picks terminal line editing under a raw-mode guard when stdin is
// a terminal, plain buffered reads otherwise. The returned restore func
// is safe to call more than once.
func newUI() (ui, func(), error) {
	fd := int(os.Stdin.Fd())
	if !glide.IsTerminal(fd) {
		return &plainUI{reader: bufio.NewReader(os.Stdin)}, func() {}, nil
	}

	guard, err := glide.MakeRaw(fd)
	if err != nil {
		return nil, nil, err
	}
	t := term.NewTerminal(stdio{}, "")
	return &termUI{terminal: t}, func() { guard.Restore() }, nil
}

// stdio joins stdin and stdout into the io.ReadWriter term.NewTerminal
// wants.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

type termUI struct {
	terminal *term.Terminal
}

func (u *termUI) ReadLine(prompt string) (string, error) {
	u.terminal.SetPrompt(prompt)
	line, err := u.terminal.ReadLine()
	if err == io.EOF {
		return "", io.EOF
	}
	return line, err
}

func (u *termUI) Print(message string) {
	u.terminal.Write([]byte(message + "\n"))
}

func (u *termUI) Printf(format string, args ...interface{}) {
	fmt.Fprintf(u.terminal, format, args...)
}

type plainUI struct {
	reader *bufio.Reader
}

func (u *plainUI) ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := u.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (u *plainUI) Print(message string) {
	fmt.Println(message)
}

func (u *plainUI) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}
