package generator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultFormatCommand formats in place using the project's .clang-format
const DefaultFormatCommand = "clang-format -i -style=file"

// Formatter rewrites generated files in place. Failures never block generation.
type Formatter interface {
	Format(ctx context.Context, paths ...string) error
}

// CommandFormatter runs an external formatter once per file, appending the path to Command
type CommandFormatter struct {
	Command string
}

func NewCommandFormatter(command string) *CommandFormatter {
	return &CommandFormatter{Command: command}
}

func (cf *CommandFormatter) Format(ctx context.Context, paths ...string) error {
	fields := strings.Fields(cf.Command)
	if len(fields) == 0 {
		return fmt.Errorf("empty format command")
	}

	binary, err := exec.LookPath(fields[0])
	if err != nil {
		return fmt.Errorf("formatter %q not available: %w", fields[0], err)
	}

	var failed []string
	for _, path := range paths {
		args := append(append([]string{}, fields[1:]...), path)
		cmd := exec.CommandContext(ctx, binary, args...)

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			failed = append(failed, fmt.Sprintf("%s (%v: %s)", path, err, strings.TrimSpace(stderr.String())))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("formatting failed for %s", strings.Join(failed, ", "))
	}
	return nil
}
