package glide

import (
	"net"
	"time"

	"golang.org/x/crypto/ssh"
)

// TunnelConfig describes an SSH bastion used to reach a Glide server that
// is not directly routable. The protocol inside the tunnel is unchanged.
type TunnelConfig struct {
	// Addr is the bastion address (hostname:port).
	Addr string

	// User is the SSH username.
	User string

	// Password is the SSH password.
	Password string

	// Timeout bounds the SSH dial. Zero means 10 seconds.
	Timeout time.Duration

	// HostKeyCallback verifies the bastion's host key. Nil accepts any
	// key, which is only acceptable for trusted networks.
	HostKeyCallback ssh.HostKeyCallback
}

// Tunnel is an established SSH connection through which server
// connections are dialed.
type Tunnel struct {
	client *ssh.Client
}

// DialTunnel connects to the bastion described by cfg.
func DialTunnel(cfg TunnelConfig) (*Tunnel, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	hostKey := cfg.HostKeyCallback
	if hostKey == nil {
		hostKey = ssh.InsecureIgnoreHostKey()
	}

	clientConfig := &ssh.ClientConfig{
		User: cfg.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
		},
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}

	client, err := ssh.Dial("tcp", cfg.Addr, clientConfig)
	if err != nil {
		return nil, err
	}
	return &Tunnel{client: client}, nil
}

// Dial opens a connection to target (host:port) through the tunnel.
func (t *Tunnel) Dial(target string) (net.Conn, error) {
	return t.client.Dial("tcp", target)
}

// Close tears down the SSH connection.
func (t *Tunnel) Close() error {
	return t.client.Close()
}
