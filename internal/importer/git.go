package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// SyncGit clones url into a directory under reposDir, or pulls it when the clone already
// exists, and returns the local path of the clone.
func SyncGit(url, reposDir string, logger *zap.Logger) (string, error) {
	localPath := filepath.Join(reposDir, repoName(url))

	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		logger.Info("Cloning dataset repository", zap.String("url", url), zap.String("path", localPath))
		if _, err := git.PlainClone(localPath, false, &git.CloneOptions{URL: url}); err != nil {
			return "", fmt.Errorf("clone %s: %w", url, err)
		}
	case err == nil:
		logger.Info("Pulling dataset repository", zap.String("path", localPath))
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return "", fmt.Errorf("open repo at %s: %w", localPath, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return "", fmt.Errorf("worktree for %s: %w", localPath, err)
		}
		err = worktree.Pull(&git.PullOptions{RemoteName: "origin"})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return "", fmt.Errorf("pull %s: %w", localPath, err)
		}
	default:
		return "", fmt.Errorf("check %s: %w", localPath, err)
	}

	return localPath, nil
}

func repoName(url string) string {
	name := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "dataset"
	}
	return name
}
