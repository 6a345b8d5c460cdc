// Package sshtail relays newly appended lines of remote files to a channel,
// via tail -F executed over an SSH session.
//
// Lines are reassembled with bufio.Scanner, so a line split across two read
// chunks is buffered until its newline arrives rather than being emitted in
// pieces. Blank lines are dropped.
package sshtail

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"path"
	"regexp"
	"strings"

	"golang.org/x/crypto/ssh"
)

// NoFileMarker is printed by the remote probe when none of the requested
// files exist. Subscribers receive a diagnostic event instead of the marker.
const NoFileMarker = "__NO_LOG_FILE__"

// Diagnostic events (remote stderr, missing files) are forwarded on the same
// channel as data lines, prefixed so subscribers can distinguish them.
const errPrefix = "[ERROR] "

// tail prints these section headers when following multiple files.
var multiHeaderRe = regexp.MustCompile(`^==> (.*) <==$`)

// Follow starts tailing the first file in paths that exists, emitting each
// non-blank appended line on the returned channel. The remote command falls
// back through paths in order; if none exist a single diagnostic event is
// emitted and the channel closes.
//
// The channel is closed when ctx is cancelled (the remote tail process is
// killed by closing its SSH session) or when the remote process exits.
func Follow(ctx context.Context, client *ssh.Client, tailLines int, paths ...string) (<-chan string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to follow")
	}
	return follow(ctx, client, fallbackCommand(tailLines, paths), nil)
}

// FollowMulti tails every path in paths that exists with a single remote
// tail process. When tail interleaves several files it prints
// "==> /path/to/file <==" section headers; those are rewritten to
// "[basename]" events so subscribers can label the source. If none of the
// paths exist a diagnostic event is emitted and the channel closes.
func FollowMulti(ctx context.Context, client *ssh.Client, tailLines int, paths ...string) (<-chan string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to follow")
	}
	transform := func(line string) string {
		if m := multiHeaderRe.FindStringSubmatch(line); m != nil {
			return "[" + path.Base(m[1]) + "]"
		}
		return line
	}
	return follow(ctx, client, combinedCommand(tailLines, paths), transform)
}

func follow(ctx context.Context, client *ssh.Client, cmd string, transform func(string) string) (<-chan string, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("open ssh session: %w", err)
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := session.StderrPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := session.Start(cmd); err != nil {
		session.Close()
		return nil, fmt.Errorf("start tail command: %w", err)
	}

	ch := make(chan string, 100)
	lines := make(chan string, 100)
	errLines := make(chan string, 10)

	// stdout reader: reassembles lines across chunk boundaries.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			select {
			case <-ctx.Done():
			default:
				log.Printf("[sshtail] scanner error: %v", err)
			}
		}
	}()

	// stderr reader: forwarded as diagnostic events.
	go func() {
		defer close(errLines)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			errLines <- scanner.Text()
		}
	}()

	go func() {
		defer close(ch)
		defer session.Close()

		for lines != nil || errLines != nil {
			select {
			case line, ok := <-lines:
				if !ok {
					lines = nil
					continue
				}
				line = strings.TrimRight(line, "\r")
				if strings.TrimSpace(line) == "" {
					continue
				}
				if strings.TrimSpace(line) == NoFileMarker {
					emit(ctx, ch, errPrefix+"log file not found")
					return
				}
				if transform != nil {
					line = transform(line)
				}
				if !emit(ctx, ch, line) {
					return
				}
			case line, ok := <-errLines:
				if !ok {
					errLines = nil
					continue
				}
				if strings.TrimSpace(line) == "" {
					continue
				}
				if !emit(ctx, ch, errPrefix+line) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Cancellation closes the session, which kills the remote tail and
	// unblocks both scanners.
	go func() {
		<-ctx.Done()
		session.Close()
	}()

	return ch, nil
}

func emit(ctx context.Context, ch chan<- string, line string) bool {
	select {
	case ch <- line:
		return true
	case <-ctx.Done():
		return false
	}
}

// fallbackCommand tails the first existing path, falling back through the
// rest, and prints NoFileMarker when none exist. tail -F follows by name so
// log rotation is handled.
func fallbackCommand(tailLines int, paths []string) string {
	var b strings.Builder
	for i, p := range paths {
		if i > 0 {
			b.WriteString("el")
		}
		fmt.Fprintf(&b, "if [ -f %s ]; then tail -n %d -F %s; ", shellQuote(p), tailLines, shellQuote(p))
	}
	fmt.Fprintf(&b, "else echo '%s'; fi", NoFileMarker)
	return b.String()
}

// combinedCommand tails every existing path with one tail process, printing
// NoFileMarker when none exist.
func combinedCommand(tailLines int, paths []string) string {
	var b strings.Builder
	// Paths are fixed panel-owned locations without whitespace, so the
	// unquoted $FILES expansion below is safe.
	b.WriteString(`FILES=""; `)
	for _, p := range paths {
		fmt.Fprintf(&b, `[ -f %s ] && FILES="$FILES %s"; `, shellQuote(p), p)
	}
	fmt.Fprintf(&b, `if [ -n "$FILES" ]; then tail -n %d -F $FILES; else echo '%s'; fi`, tailLines, NoFileMarker)
	return b.String()
}

// shellQuote wraps a string in single quotes, escaping any embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
