package sshtail

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/craftops/panel/internal/sshtest"
)

func collect(t *testing.T, ch <-chan string, n int) []string {
	t.Helper()
	var got []string
	timeout := time.After(3 * time.Second)
	for len(got) < n {
		select {
		case line, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed after %d lines, want %d", len(got), n)
			}
			got = append(got, line)
		case <-timeout:
			t.Fatalf("timed out after %d lines, want %d", len(got), n)
		}
	}
	return got
}

func TestFollowEmitsLines(t *testing.T) {
	srv := sshtest.Start(t, func(cmd string, ch ssh.Channel) {
		ch.Write([]byte("[12:00:01] Server started\n"))
		ch.Write([]byte("[12:00:02] Player joined\n"))
		sshtest.BlockUntilClosed(ch)
	})
	client := srv.Dial(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines, err := Follow(ctx, client, 100, "/home/mc/minecraft-server/screen.log")
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	got := collect(t, lines, 2)
	if got[0] != "[12:00:01] Server started" || got[1] != "[12:00:02] Player joined" {
		t.Errorf("lines = %v", got)
	}
}

func TestFollowReassemblesSplitLines(t *testing.T) {
	srv := sshtest.Start(t, func(cmd string, ch ssh.Channel) {
		// One logical line delivered in two chunks.
		ch.Write([]byte("[12:00:01] Partial "))
		time.Sleep(50 * time.Millisecond)
		ch.Write([]byte("line done\n[12:00:02] Next\n"))
		sshtest.BlockUntilClosed(ch)
	})
	client := srv.Dial(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines, err := Follow(ctx, client, 50, "/tmp/a.log")
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	got := collect(t, lines, 2)
	if got[0] != "[12:00:01] Partial line done" {
		t.Errorf("split line emitted in pieces: %q", got[0])
	}
	if got[1] != "[12:00:02] Next" {
		t.Errorf("second line = %q", got[1])
	}
}

func TestFollowDropsBlankLinesAndTrimsCR(t *testing.T) {
	srv := sshtest.Start(t, func(cmd string, ch ssh.Channel) {
		ch.Write([]byte("first\r\n\n   \nsecond\n"))
		sshtest.BlockUntilClosed(ch)
	})
	client := srv.Dial(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines, err := Follow(ctx, client, 10, "/tmp/a.log")
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	got := collect(t, lines, 2)
	if got[0] != "first" || got[1] != "second" {
		t.Errorf("lines = %v", got)
	}
}

func TestFollowMissingFileDiagnostic(t *testing.T) {
	srv := sshtest.Start(t, func(cmd string, ch ssh.Channel) {
		ch.Write([]byte(NoFileMarker + "\n"))
		sshtest.SendExitStatus(ch, 0)
	})
	client := srv.Dial(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines, err := Follow(ctx, client, 10, "/tmp/absent.log")
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	got := collect(t, lines, 1)
	if !strings.HasPrefix(got[0], "[ERROR] ") {
		t.Errorf("missing-file event = %q, want diagnostic", got[0])
	}
	select {
	case _, ok := <-lines:
		if ok {
			t.Error("channel should close after the diagnostic")
		}
	case <-time.After(2 * time.Second):
		t.Error("channel not closed after the diagnostic")
	}
}

func TestFollowCancelTearsDownRemote(t *testing.T) {
	closed := make(chan struct{})
	srv := sshtest.Start(t, func(cmd string, ch ssh.Channel) {
		ch.Write([]byte("running\n"))
		sshtest.BlockUntilClosed(ch)
		close(closed)
	})
	client := srv.Dial(t)

	ctx, cancel := context.WithCancel(context.Background())
	lines, err := Follow(ctx, client, 10, "/tmp/a.log")
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	collect(t, lines, 1)

	cancel()

	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("remote tail not torn down after cancel")
	}
}

func TestFollowMultiRewritesHeaders(t *testing.T) {
	srv := sshtest.Start(t, func(cmd string, ch ssh.Channel) {
		ch.Write([]byte("==> /home/mc/install.log <==\n"))
		ch.Write([]byte("installer line\n"))
		ch.Write([]byte("==> /home/mc/minecraft-server/screen.log <==\n"))
		ch.Write([]byte("console line\n"))
		sshtest.BlockUntilClosed(ch)
	})
	client := srv.Dial(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines, err := FollowMulti(ctx, client, 100,
		"/home/mc/install.log", "/home/mc/minecraft-server/screen.log")
	if err != nil {
		t.Fatalf("FollowMulti: %v", err)
	}
	got := collect(t, lines, 4)
	want := []string{"[install.log]", "installer line", "[screen.log]", "console line"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFallbackCommandShape(t *testing.T) {
	cmd := fallbackCommand(100, []string{"/a/screen.log", "/a/screenlog.0"})
	for _, want := range []string{
		"if [ -f '/a/screen.log' ]",
		"elif [ -f '/a/screenlog.0' ]",
		"tail -n 100 -F",
		NoFileMarker,
	} {
		if !strings.Contains(cmd, want) {
			t.Errorf("command missing %q: %s", want, cmd)
		}
	}
}
