// Package session owns operator SSH sessions. A Session binds an opaque id
// to exactly one live *ssh.Client; the Registry is the only shared mutable
// structure in the process and guards its table with a mutex so inserts,
// lookups, and removals are atomic with respect to each other.
//
// Session ids are UUIDv4 (crypto/rand). The id is the sole authorization
// token for the operator's remote shell, so it must not be guessable.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
)

// ErrNotFound is returned for ids that were never issued, were disconnected,
// or whose transport died. Handlers map it to 404.
var ErrNotFound = errors.New("session not found")

// AuthError wraps a failure to reach or authenticate to the remote host.
type AuthError struct {
	Host string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Host, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Credential holds one of the supported SSH auth methods.
type Credential struct {
	Password   string
	PrivateKey string // PEM-encoded
}

// Session is one operator's authenticated connection to a managed host.
// The Session exclusively owns its client; other components borrow it for
// the duration of a single call and must tolerate it disappearing.
type Session struct {
	ID         string
	RemoteHost string
	RemoteUser string

	client *ssh.Client

	mu       sync.Mutex
	lastUsed time.Time
}

// Client returns the underlying SSH connection and marks the session used.
func (s *Session) Client() *ssh.Client {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
	return s.client
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Registry is a concurrency-safe table of live sessions.
type Registry struct {
	connectTimeout time.Duration
	idleTimeout    time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session

	sweepCancel context.CancelFunc
}

// Option configures a Registry.
type Option func(*Registry)

// WithConnectTimeout bounds the SSH dial and handshake.
func WithConnectTimeout(d time.Duration) Option {
	return func(r *Registry) { r.connectTimeout = d }
}

// WithIdleTimeout destroys sessions unused for longer than d. Zero disables
// the sweeper.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) { r.idleTimeout = d }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		connectTimeout: 25 * time.Second,
		sessions:       make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create opens a new SSH connection to host:port as user and registers a
// session for it. On auth or network failure an *AuthError is returned.
func (r *Registry) Create(ctx context.Context, host string, port int, user string, cred Credential) (*Session, error) {
	var methods []ssh.AuthMethod
	if cred.PrivateKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(cred.PrivateKey))
		if err != nil {
			return nil, &AuthError{Host: host, Err: fmt.Errorf("parse private key: %w", err)}
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cred.Password != "" {
		methods = append(methods, ssh.Password(cred.Password))
	}
	if len(methods) == 0 {
		return nil, &AuthError{Host: host, Err: errors.New("no credential provided")}
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         r.connectTimeout,
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	dialer := net.Dialer{Timeout: r.connectTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &AuthError{Host: host, Err: fmt.Errorf("dial: %w", err)}
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, cfg)
	if err != nil {
		netConn.Close()
		return nil, &AuthError{Host: host, Err: fmt.Errorf("ssh handshake: %w", err)}
	}
	client := ssh.NewClient(sshConn, chans, reqs)

	sess := &Session{
		ID:         uuid.NewString(),
		RemoteHost: host,
		RemoteUser: user,
		client:     client,
		lastUsed:   time.Now(),
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	// Reactive teardown: when the transport ends for any reason (remote
	// closed, network drop, our own Close), drop the table entry so later
	// lookups fail with ErrNotFound instead of returning a dead handle.
	go func() {
		err := client.Wait()
		if r.remove(sess.ID) {
			log.Printf("SSH connection to %s ended (%v), session %s removed", host, err, shortID(sess.ID))
		}
	}()

	log.Printf("SSH connected to %s as %s, session %s", addr, user, shortID(sess.ID))
	return sess, nil
}

// Get looks up a live session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Destroy closes the session's transport and removes it. Idempotent: unknown
// ids are a no-op.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if ok {
		sess.client.Close()
		log.Printf("Session %s destroyed", shortID(id))
	}
}

// CloseAll tears down every session. Used during shutdown.
func (r *Registry) CloseAll() {
	if r.sweepCancel != nil {
		r.sweepCancel()
	}

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.client.Close()
	}
	log.Printf("All sessions closed (%d total)", len(sessions))
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StartIdleSweeper begins periodically destroying sessions idle for longer
// than the configured idle timeout. No-op when the timeout is zero.
func (r *Registry) StartIdleSweeper(ctx context.Context) {
	if r.idleTimeout <= 0 {
		return
	}
	sweepCtx, cancel := context.WithCancel(ctx)
	r.sweepCancel = cancel

	go func() {
		ticker := time.NewTicker(r.idleTimeout / 4)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				r.sweepIdle()
			}
		}
	}()
}

func (r *Registry) sweepIdle() {
	cutoff := time.Now().Add(-r.idleTimeout)

	r.mu.RLock()
	var stale []string
	for id, sess := range r.sessions {
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range stale {
		log.Printf("Session %s idle for over %s, destroying", shortID(id), r.idleTimeout)
		r.Destroy(id)
	}
}

// remove deletes the entry without closing the client (the transport is
// already gone). Reports whether the entry was present.
func (r *Registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
