// Package sshtest provides an in-process SSH server for exercising the
// SSH-facing packages without a real remote host. Each exec request is
// dispatched to a caller-supplied handler that controls output bytes, timing,
// and the exit status, which is exactly what streaming tests need.
package sshtest

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

// Handler receives the parsed exec command and the raw SSH channel. It is
// responsible for writing stdout/stderr and sending the exit status before
// returning.
type Handler func(cmd string, ch ssh.Channel)

// Server is a minimal SSH server accepting password and public-key auth.
type Server struct {
	Addr     string // host:port the server listens on
	User     string
	Password string

	listener net.Listener

	mu       sync.Mutex
	commands []string // every exec command received, in order
}

// Commands returns the exec commands received so far, in arrival order.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// CommandCount returns how many exec requests the server has received.
func (s *Server) CommandCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commands)
}

// Close stops the listener. Established connections are torn down by the
// clients closing their end.
func (s *Server) Close() {
	s.listener.Close()
}

// Start launches a test SSH server that invokes handler for every exec
// request. Authentication accepts the returned Server's User/Password pair.
func Start(t *testing.T, handler Handler) *Server {
	t.Helper()

	_, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate host key: %v", err)
	}
	hostSigner, err := ssh.NewSignerFromKey(hostPriv)
	if err != nil {
		t.Fatalf("create host signer: %v", err)
	}

	srv := &Server{
		User:     "mc",
		Password: "hunter2",
	}

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(conn ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if conn.User() == srv.User && bytes.Equal(password, []byte(srv.Password)) {
				return &ssh.Permissions{}, nil
			}
			return nil, fmt.Errorf("wrong credentials")
		},
	}
	cfg.AddHostKey(hostSigner)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv.listener = listener
	srv.Addr = listener.Addr().String()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go srv.handleConn(conn, cfg, handler)
		}
	}()

	t.Cleanup(srv.Close)
	return srv
}

// Dial connects an SSH client to the test server using password auth.
func (s *Server) Dial(t *testing.T) *ssh.Client {
	t.Helper()

	cfg := &ssh.ClientConfig{
		User:            s.User,
		Auth:            []ssh.AuthMethod{ssh.Password(s.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}
	client, err := ssh.Dial("tcp", s.Addr, cfg)
	if err != nil {
		t.Fatalf("dial test SSH server: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func (s *Server) handleConn(netConn net.Conn, config *ssh.ServerConfig, handler Handler) {
	defer netConn.Close()
	srvConn, chans, reqs, err := ssh.NewServerConn(netConn, config)
	if err != nil {
		return
	}
	defer srvConn.Close()
	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, requests, err := newChan.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(ch, requests, handler)
	}
}

func (s *Server) handleSession(ch ssh.Channel, reqs <-chan *ssh.Request, handler Handler) {
	defer ch.Close()

	for req := range reqs {
		switch req.Type {
		case "exec":
			if len(req.Payload) < 4 {
				req.Reply(false, nil)
				continue
			}
			cmdLen := int(req.Payload[0])<<24 | int(req.Payload[1])<<16 | int(req.Payload[2])<<8 | int(req.Payload[3])
			if len(req.Payload) < 4+cmdLen {
				req.Reply(false, nil)
				continue
			}
			cmd := string(req.Payload[4 : 4+cmdLen])
			req.Reply(true, nil)

			s.mu.Lock()
			s.commands = append(s.commands, cmd)
			s.mu.Unlock()

			handler(cmd, ch)
			return

		default:
			if req.WantReply {
				req.Reply(false, nil)
			}
		}
	}
}

// SendExitStatus sends an exit-status request on the SSH channel.
func SendExitStatus(ch ssh.Channel, exitCode int) {
	payload := ssh.Marshal(struct{ Status uint32 }{uint32(exitCode)})
	ch.SendRequest("exit-status", false, payload)
}

// BlockUntilClosed reads from the channel until the client closes it.
// Useful for simulating tail -F, which never exits on its own.
func BlockUntilClosed(ch ssh.Channel) {
	buf := make([]byte, 1)
	for {
		if _, err := ch.Read(buf); err != nil {
			return
		}
	}
}
