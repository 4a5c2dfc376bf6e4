package source

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
)

// currentBranch returns the checked out branch of the repository at
// repoPath, or detached@<commit> for a detached HEAD
func currentBranch(ctx context.Context, repoPath string) (string, error) {
	gitDir := filepath.Join(repoPath, ".git")

	output, err := exec.CommandContext(ctx, "git", "--git-dir", gitDir, "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return "", err
	}

	branch := strings.TrimSpace(string(output))
	if branch == "HEAD" {
		output, err = exec.CommandContext(ctx, "git", "--git-dir", gitDir, "rev-parse", "--short", "HEAD").Output()
		if err != nil {
			return "detached", nil
		}
		branch = "detached@" + strings.TrimSpace(string(output))
	}
	return branch, nil
}
