// Package action runs the configured review command for a file.
package action

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// Runner invokes the review action for a single file path.
//
// When Template contains a {file} placeholder, the placeholder is
// replaced with the shell-quoted path and the whole string is
// tokenized as a command line. Otherwise the path is appended as a
// trailing argument. An empty Template falls back to a diff against
// the main branch.
type Runner struct {
	Template string

	// run executes the command with inherited stdio; replaceable in tests.
	run func(name string, args ...string) error
}

// NewRunner returns a Runner for the given on-review command template.
func NewRunner(template string) *Runner {
	return &Runner{Template: template, run: runPassthrough}
}

func runPassthrough(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Review runs the review action for path.
func (r *Runner) Review(path string) error {
	args, err := r.commandLine(path)
	if err != nil {
		return err
	}
	return r.run(args[0], args[1:]...)
}

func (r *Runner) commandLine(path string) ([]string, error) {
	if r.Template == "" {
		return []string{"git", "diff", "main", "--", path}, nil
	}

	if strings.Contains(r.Template, "{file}") {
		line := strings.ReplaceAll(r.Template, "{file}", quote(path))
		args, err := shlex.Split(line)
		if err != nil {
			return nil, fmt.Errorf("parse on_review command: %w", err)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("on_review command is empty")
		}
		return args, nil
	}

	args, err := shlex.Split(r.Template)
	if err != nil {
		return nil, fmt.Errorf("parse on_review command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("on_review command is empty")
	}
	return append(args, path), nil
}

// quote wraps s in single quotes so the tokenizer treats it as one
// word regardless of spaces or metacharacters in the path.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
