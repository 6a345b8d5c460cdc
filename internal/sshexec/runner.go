// Package sshexec executes single shell commands over an established SSH
// connection. Every call opens a fresh ssh.Session, so commands against the
// same connection never share remote state and can run concurrently (SSH
// multiplexes channels over one TCP connection).
//
// A non-zero remote exit code is data, not an error: Result.ExitCode carries
// it and err stays nil. An error is returned only for transport-level
// failures (session cannot be opened, command cannot be started, connection
// died mid-run).
package sshexec

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// Result holds the outcome of one remote command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Run executes cmd over client and buffers stdout/stderr fully.
func Run(ctx context.Context, client *ssh.Client, cmd string) (Result, error) {
	return RunStreaming(ctx, client, cmd, nil)
}

// RunStreaming executes cmd like Run but additionally copies every chunk of
// stdout and stderr to sink in arrival order as it is received. The full
// buffered Result is still returned after the remote process exits.
//
// When ctx is cancelled the SSH session is closed, which aborts the remote
// read; the accumulated output up to that point is returned along with the
// context error.
func RunStreaming(ctx context.Context, client *ssh.Client, cmd string, sink io.Writer) (Result, error) {
	start := time.Now()

	session, err := client.NewSession()
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("open ssh session: %w", err)
	}
	defer session.Close()

	// stdout and stderr arrive on separate goroutines; a shared mutex keeps
	// sink writes whole and ordered.
	var mu sync.Mutex
	out := teeBuffer{mu: &mu, sink: sink}
	errOut := teeBuffer{mu: &mu, sink: sink}
	session.Stdout = &out
	session.Stderr = &errOut

	if err := session.Start(cmd); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("start command: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	var runErr error
	select {
	case runErr = <-done:
	case <-ctx.Done():
		// Closing the session unblocks Wait; the remote side receives the
		// channel close and terminates the command.
		session.Close()
		<-done
		return Result{ExitCode: -1, Stdout: out.String(), Stderr: errOut.String()}, ctx.Err()
	}

	elapsed := time.Since(start)
	cmdLabel := cmd
	if len(cmdLabel) > 80 {
		cmdLabel = cmdLabel[:80] + "..."
	}
	if elapsed > 500*time.Millisecond {
		log.Printf("[sshexec] SLOW command (%s): %s", elapsed, cmdLabel)
	}

	res := Result{Stdout: out.String(), Stderr: errOut.String()}
	if runErr != nil {
		if exitErr, ok := runErr.(*ssh.ExitError); ok {
			res.ExitCode = exitErr.ExitStatus()
			return res, nil
		}
		res.ExitCode = -1
		return res, fmt.Errorf("run command: %w", runErr)
	}
	return res, nil
}

// WriteStdin runs cmd with input piped to its stdin and waits for completion.
// Used for writes where the payload must never pass through shell quoting.
func WriteStdin(ctx context.Context, client *ssh.Client, cmd string, input []byte) error {
	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("open ssh session: %w", err)
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	var mu sync.Mutex
	errOut := teeBuffer{mu: &mu}
	session.Stderr = &errOut

	if err := session.Start(cmd); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	if _, err := stdin.Write(input); err != nil {
		return fmt.Errorf("write to stdin: %w", err)
	}
	stdin.Close()

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			if exitErr, ok := err.(*ssh.ExitError); ok {
				return fmt.Errorf("command exited %d: %s", exitErr.ExitStatus(), errOut.String())
			}
			return err
		}
		return nil
	case <-ctx.Done():
		session.Close()
		<-done
		return ctx.Err()
	}
}

// teeBuffer accumulates writes and optionally mirrors them to a sink first,
// preserving arrival order for streaming consumers.
type teeBuffer struct {
	mu   *sync.Mutex
	buf  []byte
	sink io.Writer
}

func (t *teeBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sink != nil {
		// Mirror before buffering so the live consumer never lags the
		// transcript. Sink errors (client went away) are ignored: the
		// remote command keeps running and the transcript stays complete.
		t.sink.Write(p)
	}
	t.buf = append(t.buf, p...)
	return len(p), nil
}

func (t *teeBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
