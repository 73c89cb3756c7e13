package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"inkwell/internal/logger"
)

const (
	// DefaultLocalCommand is the executable invocation used when the
	// settings leave the local command blank.
	DefaultLocalCommand = "opencode run"

	localTimeout   = 60 * time.Second
	maxLocalOutput = 10 << 20 // 10 MiB
)

var errOutputLimit = errors.New("output limit exceeded")

// LocalClient shells out to a local AI executable, passing the prompt
// as the final argument. Terminal escape sequences are stripped from
// the captured output.
type LocalClient struct {
	command string
	workdir string
	timeout time.Duration
}

// NewLocalClient creates a client for the given command line, run from
// workdir. An empty command falls back to DefaultLocalCommand.
func NewLocalClient(command, workdir string) *LocalClient {
	if strings.TrimSpace(command) == "" {
		command = DefaultLocalCommand
	}
	return &LocalClient{
		command: command,
		workdir: workdir,
		timeout: localTimeout,
	}
}

// Name returns the provider name for this client.
func (c *LocalClient) Name() string {
	return "local"
}

// capWriter accumulates stdout up to a byte limit. A write past the
// limit aborts the copy, which kills the child process.
type capWriter struct {
	buf      bytes.Buffer
	limit    int
	exceeded bool
}

func (w *capWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.limit {
		w.exceeded = true
		return 0, errOutputLimit
	}
	return w.buf.Write(p)
}

// Send runs the local executable with the user message appended as the
// last argument. A non-zero exit that still produced output is treated
// as a valid reply; timing out or exceeding the output cap is not.
func (c *LocalClient) Send(ctx context.Context, req Request) (string, error) {
	fields := strings.Fields(c.command)
	if len(fields) == 0 {
		return "", fmt.Errorf("local command not configured")
	}
	args := append(fields[1:], req.UserMessage)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, fields[0], args...)
	cmd.Dir = c.workdir

	out := &capWriter{limit: maxLocalOutput}
	cmd.Stdout = out

	logger.Debug("Running local executable", "command", fields[0], "workdir", c.workdir)
	runErr := cmd.Run()

	if out.exceeded {
		return "", fmt.Errorf("local executable output exceeded %d bytes", maxLocalOutput)
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("local executable timed out after %s", c.timeout)
	}

	cleaned := strings.TrimSpace(ansi.Strip(out.buf.String()))
	if runErr != nil {
		// Some executables exit non-zero after printing a usable
		// answer; the output wins over the exit code.
		if cleaned != "" {
			logger.Debug("Local executable exited non-zero with output", "error", runErr)
			return cleaned, nil
		}
		logger.Error("Local executable failed", "error", runErr)
		return "", fmt.Errorf("local executable failed: %w", runErr)
	}
	return cleaned, nil
}
