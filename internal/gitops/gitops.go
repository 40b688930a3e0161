package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// RepoNameFromURL derives the repository directory name from a clone URL.
func RepoNameFromURL(repoURL string) string {
	name := strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git")
	if idx := strings.LastIndexAny(name, "/:"); idx != -1 {
		name = name[idx+1:]
	}
	if name == "" {
		name = "repo"
	}
	return name
}

// Clone clones repoURL into targetDir. When targetDir is empty a fresh
// temp directory is used. An existing target is removed first (the original
// overwrote stale clones the same way). Returns the checkout path.
func Clone(ctx context.Context, repoURL, targetDir, branch string) (string, error) {
	if targetDir == "" {
		tmpDir, err := os.MkdirTemp("", "testgen-")
		if err != nil {
			return "", fmt.Errorf("create temp dir: %w", err)
		}
		targetDir = filepath.Join(tmpDir, RepoNameFromURL(repoURL))
	}

	if _, err := os.Stat(targetDir); err == nil {
		logrus.WithField("dir", targetDir).Info("Removing existing clone target")
		if err := os.RemoveAll(targetDir); err != nil {
			return "", fmt.Errorf("remove existing target: %w", err)
		}
	}

	args := []string{"clone"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, repoURL, targetDir)

	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return targetDir, nil
}

// CurrentBranch returns the active branch of a checkout.
func CurrentBranch(repoPath string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// CreateBranch creates and checks out a branch, or switches to it when it
// already exists.
func CreateBranch(repoPath, branch string) error {
	check := exec.Command("git", "rev-parse", "--verify", branch)
	check.Dir = repoPath
	if check.Run() == nil {
		logrus.WithField("branch", branch).Info("Branch exists, switching to it")
		cmd := exec.Command("git", "checkout", branch)
		cmd.Dir = repoPath
		return runGit(cmd)
	}

	cmd := exec.Command("git", "checkout", "-b", branch)
	cmd.Dir = repoPath
	return runGit(cmd)
}

// Stage adds the given files (paths relative to the repo root) to the index.
func Stage(repoPath string, files []string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, files...)
	cmd := exec.Command("git", args...)
	cmd.Dir = repoPath
	return runGit(cmd)
}

// Commit commits staged changes. A clean index is not an error.
func Commit(repoPath, message string) error {
	status := exec.Command("git", "diff", "--cached", "--quiet")
	status.Dir = repoPath
	if status.Run() == nil {
		logrus.Info("No staged changes to commit")
		return nil
	}

	cmd := exec.Command("git", "commit", "-m", message)
	cmd.Dir = repoPath
	return runGit(cmd)
}

// Push pushes the given branch to origin.
func Push(repoPath, branch string) error {
	cmd := exec.Command("git", "push", "-u", "origin", branch)
	cmd.Dir = repoPath
	return runGit(cmd)
}

// Cleanup removes a cloned checkout from disk.
func Cleanup(repoPath string) error {
	if repoPath == "" {
		return nil
	}
	return os.RemoveAll(repoPath)
}

func runGit(cmd *exec.Cmd) error {
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(cmd.Args[1:], " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
