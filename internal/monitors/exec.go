package monitors

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 2 * time.Second

// execWithTimeout runs a shell command with a timeout and returns its
// trimmed output.
func execWithTimeout(command string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("command failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// haveCommand reports whether a tool is present on PATH
func haveCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
