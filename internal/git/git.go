package git

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Client defines the interface for git operations. Methods take no path
// because cr always operates on the repository containing the cwd.
type Client interface {
	RepoRoot() (string, error)
	CurrentBranch() (string, error)
}

// RealClient implements Client using real git commands.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RepoRoot returns the top-level repo directory, falling back to the
// current working directory when not inside a repository.
func (c *RealClient) RepoRoot() (string, error) {
	root, err := gitCmd("rev-parse", "--show-toplevel")
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return "", cwdErr
		}
		return cwd, nil
	}
	return root, nil
}

func (c *RealClient) CurrentBranch() (string, error) {
	return gitCmd("rev-parse", "--abbrev-ref", "HEAD")
}
