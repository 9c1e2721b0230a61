package git

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// PRFile is one changed file within a pull request.
type PRFile struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// PRView is the metadata cr needs about the current pull request.
type PRView struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Files  []PRFile `json:"files"`
}

// GitHubClient wraps the gh CLI for pull-request metadata.
type GitHubClient interface {
	CurrentPRNumber() (int, error)
	CurrentPRView() (*PRView, error)
}

// RealGitHubClient implements GitHubClient using the gh CLI.
type RealGitHubClient struct{}

// NewGitHubClient returns a new RealGitHubClient.
func NewGitHubClient() *RealGitHubClient {
	return &RealGitHubClient{}
}

func ghCmd(args ...string) (string, error) {
	out, err := exec.Command("gh", args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("gh %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("gh %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentPRNumber returns the number of the PR associated with the
// current branch.
func (c *RealGitHubClient) CurrentPRNumber() (int, error) {
	out, err := ghCmd("pr", "view", "--json", "number")
	if err != nil {
		return 0, err
	}

	var v struct {
		Number int `json:"number"`
	}
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		return 0, fmt.Errorf("parse PR number: %w", err)
	}
	return v.Number, nil
}

// CurrentPRView returns title, body, and changed files for the PR
// associated with the current branch.
func (c *RealGitHubClient) CurrentPRView() (*PRView, error) {
	out, err := ghCmd("pr", "view", "--json", "number,title,body,files")
	if err != nil {
		return nil, err
	}

	var v PRView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		return nil, fmt.Errorf("parse PR view: %w", err)
	}
	return &v, nil
}
