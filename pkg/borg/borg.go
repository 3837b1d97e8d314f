// Package borg drives the external deduplicating archiver and its ssh
// transport as supervised child processes.
package borg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config is the remote repository configuration. It is read fresh from the
// environment for every command and never persisted.
type Config struct {
	Host       string
	User       string
	Port       string
	Password   string
	RepoPath   string
	Passphrase string
}

// Environment variables consumed by ConfigFromEnv.
const (
	EnvRemoteHost     = "BACKUP_SYNC_REMOTE_HOST"
	EnvRemoteUser     = "BACKUP_SYNC_REMOTE_USER"
	EnvRemotePort     = "BACKUP_SYNC_REMOTE_PORT"
	EnvRemotePassword = "BACKUP_SYNC_REMOTE_PASSWORD"
	EnvRepoPath       = "BACKUP_SYNC_REPO_PATH"
	EnvPassphrase     = "BACKUP_SYNC_PASSPHRASE"
)

// ConfigFromEnv reads the repository configuration from the environment.
func ConfigFromEnv() Config {
	port := os.Getenv(EnvRemotePort)
	if port == "" {
		port = "22"
	}
	return Config{
		Host:       os.Getenv(EnvRemoteHost),
		User:       os.Getenv(EnvRemoteUser),
		Port:       port,
		Password:   os.Getenv(EnvRemotePassword),
		RepoPath:   os.Getenv(EnvRepoPath),
		Passphrase: os.Getenv(EnvPassphrase),
	}
}

// RepoURL renders the ssh repository location.
func (c Config) RepoURL() string {
	return fmt.Sprintf("ssh://%s@%s:%s%s", c.User, c.Host, c.Port, c.RepoPath)
}

// environ builds the child process environment. The passphrase and the
// transport command only ever live here, not on the command line.
func (c Config) environ() []string {
	env := append([]string{}, os.Environ()...)
	env = append(env,
		"BORG_PASSPHRASE="+c.Passphrase,
		fmt.Sprintf("BORG_RSH=sshpass -p %s ssh -p %s -o StrictHostKeyChecking=accept-new", c.Password, c.Port),
		"SSHPASS="+c.Password,
	)
	return env
}

const (
	binArchiver  = "borg"
	binTransport = "sshpass"
)

// Client runs archiver commands. One Client is safe for sequential use by a
// single sync run.
type Client struct {
	logger *zap.Logger
}

func NewClient(lg *zap.Logger) *Client {
	return &Client{logger: lg}
}

// CheckInstalled verifies the archiver and its secure-transport helper are
// on PATH.
func (c *Client) CheckInstalled() error {
	for _, bin := range []string{binArchiver, binTransport} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("required tool %q is not installed: %w", bin, err)
		}
	}
	return nil
}

// InitRepo ensures the remote repository exists. Init is idempotent: a
// repository that already exists is success, not an error.
func (c *Client) InitRepo(ctx context.Context, cfg Config, timeout time.Duration) error {
	out, err := c.run(ctx, cfg, timeout, nil,
		"init", "--encryption", "repokey-blake2", cfg.RepoURL())
	if err != nil {
		if strings.Contains(out, "repository already exists") ||
			strings.Contains(out, "A repository already exists") {
			return nil
		}
		return fmt.Errorf("repository init failed: %s", firstNonEmptyLine(out, err))
	}
	return nil
}

// CreateArchive creates archive from sourceDir, streaming every progress
// line to onLine as it arrives. limitKbps caps the remote transfer rate in
// KiB/s; 0 means unlimited.
func (c *Client) CreateArchive(ctx context.Context, cfg Config, archive, sourceDir string, limitKbps int, timeout time.Duration, onLine func(string)) error {
	args := []string{"create", "--progress", "--stats"}
	if limitKbps > 0 {
		args = append(args, "--remote-ratelimit", fmt.Sprintf("%d", limitKbps))
	}
	args = append(args, cfg.RepoURL()+"::"+archive, sourceDir)

	out, err := c.run(ctx, cfg, timeout, onLine, args...)
	if err != nil {
		return fmt.Errorf("archive create failed: %s", firstNonEmptyLine(out, err))
	}
	return nil
}

// Prune removes archives older than the daily/weekly/monthly retention,
// scoped to archives with the given name prefix.
func (c *Client) Prune(ctx context.Context, cfg Config, prefix string, daily, weekly, monthly int, timeout time.Duration) error {
	out, err := c.run(ctx, cfg, timeout, nil,
		"prune",
		"--glob-archives", prefix+"-*",
		"--keep-daily", fmt.Sprintf("%d", daily),
		"--keep-weekly", fmt.Sprintf("%d", weekly),
		"--keep-monthly", fmt.Sprintf("%d", monthly),
		cfg.RepoURL())
	if err != nil {
		return fmt.Errorf("prune failed: %s", firstNonEmptyLine(out, err))
	}
	return nil
}

// Compact reclaims repository space freed by pruning.
func (c *Client) Compact(ctx context.Context, cfg Config, timeout time.Duration) error {
	out, err := c.run(ctx, cfg, timeout, nil, "compact", cfg.RepoURL())
	if err != nil {
		return fmt.Errorf("compact failed: %s", firstNonEmptyLine(out, err))
	}
	return nil
}

// run executes one archiver command under a deadline. The archiver writes
// progress to stderr line by line; every line is forwarded to onLine and
// collected for error reporting.
func (c *Client) run(ctx context.Context, cfg Config, timeout time.Duration, onLine func(string), args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binArchiver, args...)
	cmd.Env = cfg.environ()

	var collected bytes.Buffer
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", err
	}
	cmd.Stdout = &collected

	if err := cmd.Start(); err != nil {
		return "", err
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		line := scanner.Text()
		collected.WriteString(line)
		collected.WriteString("\n")
		if onLine != nil && line != "" {
			onLine(line)
		}
	}

	err = cmd.Wait()
	if runCtx.Err() == context.DeadlineExceeded {
		return collected.String(), fmt.Errorf("command timed out after %s", timeout)
	}
	if err != nil {
		return collected.String(), err
	}
	return collected.String(), nil
}

// scanProgressLines terminates tokens on \n or \r. The archiver rewrites
// its progress line in place with bare carriage returns when stderr is not
// a terminal, so splitting on \n alone would batch updates until the pipe
// buffer flushes.
func scanProgressLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' && advance < len(data) && data[advance] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func firstNonEmptyLine(out string, fallback error) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return fallback.Error()
}
