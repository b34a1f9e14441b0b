package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Version runs "<command> --version" and returns the first line of output,
// e.g. "mkvmerge v81.0 ('Milliontown') 64-bit". It returns "" when the command
// fails or prints nothing within two seconds.
func Version(ctx context.Context, command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, command, "--version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(line)
}
