// Package streamop runs long multi-step remote scripts (install, backup,
// restore, uninstall) while forwarding their combined output live to a sink,
// and decides success by scanning the transcript for a completion sentinel.
//
// The sentinel is the only success signal: a zero exit code without the
// marker is still a failure, because set -e scripts can be killed between
// steps without a non-zero status reaching us. The full transcript is kept
// on the remote side (the scripts append to a log file) so a client that
// missed the live stream can retrieve it afterwards.
package streamop

import (
	"context"
	"io"

	"github.com/craftops/panel/internal/sshexec"
	"golang.org/x/crypto/ssh"
)

// Result is the outcome of one streamed operation.
type Result struct {
	// Done reports whether the completion sentinel appeared in the output.
	Done bool
	// Fields holds the key=value pairs embedded in the sentinel line.
	Fields map[string]string
	// Transcript is the full combined stdout+stderr of the script.
	Transcript string
	// ExitCode is the remote script's exit status (-1 on transport failure).
	ExitCode int
}

// Run executes script over the session's connection, mirroring all output to
// sink in arrival order, then scans the transcript for marker.
//
// A transport-level failure is returned as err; a script that ran but never
// printed the sentinel yields Result.Done == false with err == nil. Closing
// the sink's consumer does not stop the remote script: it keeps running to
// completion and the transcript remains complete (install survives the
// browser tab closing).
func Run(ctx context.Context, client *ssh.Client, script string, sink io.Writer, marker Marker) (Result, error) {
	res, err := sshexec.RunStreaming(ctx, client, script, sink)
	if err != nil {
		return Result{ExitCode: res.ExitCode, Transcript: res.Stdout + res.Stderr}, err
	}

	transcript := res.Stdout + res.Stderr
	out := Result{
		Transcript: transcript,
		ExitCode:   res.ExitCode,
	}
	if fields, ok := marker.Find(transcript); ok {
		out.Done = true
		out.Fields = fields
	}
	return out, nil
}

// Stream runs a script with live output but no completion sentinel. Success
// is the script's exit status alone; Result.Done is always false.
func Stream(ctx context.Context, client *ssh.Client, script string, sink io.Writer) (Result, error) {
	res, err := sshexec.RunStreaming(ctx, client, script, sink)
	return Result{
		Transcript: res.Stdout + res.Stderr,
		ExitCode:   res.ExitCode,
	}, err
}
