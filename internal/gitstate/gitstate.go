// Package gitstate derives the repository identity the selection cache is
// keyed on: which .git directory backs a checkout (collapsing worktree
// redirection) and the current short commit.
package gitstate

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tsel/internal/errors"
)

// NoCommitPlaceholder is used in cache keys when HEAD cannot be resolved
// (fresh repo, detached environment, or no git at all).
const NoCommitPlaceholder = "nogit"

// shortCommitLen matches the abbreviation git is asked for.
const shortCommitLen = 12

// Identity returns the stable identity string for the repository at
// repoRoot. For a normal checkout that is the absolute path of
// <repoRoot>/.git. For a linked worktree, the `gitdir:` redirection file is
// followed and a .git/worktrees/<name> target is collapsed to the shared
// .git directory, so every worktree of one repository shares a cache file.
// Non-git trees fall back to the repo root path itself.
func Identity(repoRoot string) string {
	gitPath := filepath.Join(repoRoot, ".git")

	info, err := os.Stat(gitPath)
	if err != nil {
		return repoRoot
	}

	if info.IsDir() {
		return gitPath
	}

	// .git is a file: worktree or submodule redirection
	data, err := os.ReadFile(gitPath)
	if err != nil {
		return repoRoot
	}

	target := parseGitdirFile(string(data))
	if target == "" {
		return repoRoot
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(repoRoot, target)
	}
	target = filepath.Clean(target)

	return collapseWorktree(target)
}

// parseGitdirFile extracts the target from a "gitdir: <path>" file.
func parseGitdirFile(content string) string {
	line := strings.TrimSpace(content)
	if !strings.HasPrefix(line, "gitdir:") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "gitdir:"))
}

// collapseWorktree maps <repo>/.git/worktrees/<name> to <repo>/.git.
func collapseWorktree(gitDir string) string {
	parent := filepath.Dir(gitDir)
	if filepath.Base(parent) != "worktrees" {
		return gitDir
	}
	shared := filepath.Dir(parent)
	if filepath.Base(shared) != ".git" {
		return gitDir
	}
	return shared
}

// ShortCommit returns the abbreviated HEAD commit for repoRoot, or
// NoCommitPlaceholder when it cannot be determined. Cache keys must never
// fail just because a repository has no commits yet.
func ShortCommit(repoRoot string) string {
	out, err := runGit(repoRoot, "rev-parse", "--short=12", "HEAD")
	if err != nil {
		return NoCommitPlaceholder
	}
	commit := strings.TrimSpace(out)
	if commit == "" {
		return NoCommitPlaceholder
	}
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	return commit
}

// ChangedFiles returns the repo-relative paths git reports as changed
// against base (default HEAD), plus untracked files. Used by the CLI when
// no explicit seed files are given.
func ChangedFiles(repoRoot string, base string) ([]string, error) {
	if base == "" {
		base = "HEAD"
	}

	diffOut, err := runGit(repoRoot, "diff", "--name-only", base)
	if err != nil {
		return nil, errors.New(errors.InternalError, "git diff failed", err)
	}

	untrackedOut, err := runGit(repoRoot, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, errors.New(errors.InternalError, "git ls-files failed", err)
	}

	seen := make(map[string]bool)
	var files []string
	for _, out := range []string{diffOut, untrackedOut} {
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || seen[line] {
				continue
			}
			seen[line] = true
			files = append(files, line)
		}
	}
	return files, nil
}

// RepoRoot finds the git repository root from the given directory.
func RepoRoot(startPath string) (string, error) {
	out, err := runGit(startPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.New(errors.RepoNotFound, "not a git repository", err)
	}
	return strings.TrimSpace(out), nil
}

// runGit executes a git subcommand in dir and returns stdout.
func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}
