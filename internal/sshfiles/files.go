// Package sshfiles provides SFTP-based file operations against a managed
// host. Reads and writes go through the SFTP subsystem rather than shell
// commands, so file contents never need shell escaping.
//
// Each call opens and closes its own SFTP client; the underlying SSH
// connection is borrowed from the caller's session and multiplexes the SFTP
// channel alongside any running commands.
package sshfiles

import (
	"fmt"
	"io"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// ReadFile returns the full contents of a remote file.
func ReadFile(client *ssh.Client, path string) ([]byte, error) {
	sc, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("open sftp: %w", err)
	}
	defer sc.Close()

	f, err := sc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// WriteFile replaces the contents of a remote file, creating it if needed.
func WriteFile(client *ssh.Client, path string, data []byte) error {
	sc, err := sftp.NewClient(client)
	if err != nil {
		return fmt.Errorf("open sftp: %w", err)
	}
	defer sc.Close()

	f, err := sc.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Stream copies a remote file to w without buffering it in memory. Returns
// the number of bytes copied.
func Stream(client *ssh.Client, path string, w io.Writer) (int64, error) {
	sc, err := sftp.NewClient(client)
	if err != nil {
		return 0, fmt.Errorf("open sftp: %w", err)
	}
	defer sc.Close()

	f, err := sc.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("stream %s: %w", path, err)
	}
	return n, nil
}

// Remove deletes a remote file. Missing files are not an error.
func Remove(client *ssh.Client, path string) error {
	sc, err := sftp.NewClient(client)
	if err != nil {
		return fmt.Errorf("open sftp: %w", err)
	}
	defer sc.Close()

	if err := sc.Remove(path); err != nil {
		if _, statErr := sc.Stat(path); statErr != nil {
			return nil
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
