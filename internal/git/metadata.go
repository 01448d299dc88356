package git

import (
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// RepositoryMetadata describes the audited checkout, for the report header.
type RepositoryMetadata struct {
	BranchName *string
	CommitHash *string
	Subfolder  string
	RootFolder string
}

// CollectRepositoryMetadata resolves branch and commit of the repository
// containing sourceFolder. A non-git folder returns an error the caller may
// treat as informational.
func CollectRepositoryMetadata(sourceFolder string) (*RepositoryMetadata, error) {
	if sourceFolder == "" {
		return &RepositoryMetadata{}, fmt.Errorf("source folder is not set")
	}

	if abs, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = abs
	}

	md := &RepositoryMetadata{RootFolder: filepath.Clean(sourceFolder)}

	rootFolder, err := findGitRepositoryPath(sourceFolder)
	if err != nil {
		return md, err
	}
	md.RootFolder = filepath.Clean(rootFolder)

	repo, err := git.PlainOpen(rootFolder)
	if err != nil {
		return md, fmt.Errorf("failed to open repository: %w", err)
	}

	if rel, err := filepath.Rel(rootFolder, sourceFolder); err == nil && rel != "." {
		md.Subfolder = filepath.ToSlash(rel)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branch := head.Name().Short()
			md.BranchName = &branch
		}
		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	return md, nil
}

// findGitRepositoryPath walks up from folder to the nearest .git directory.
func findGitRepositoryPath(folder string) (string, error) {
	current := folder
	for {
		if info, err := os.Stat(filepath.Join(current, ".git")); err == nil && info.IsDir() {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no git repository found above %q", folder)
		}
		current = parent
	}
}
