package git

import (
	"context"
	"fmt"

	"github.com/gitsight/go-vcsurl"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CloneRepository clones cloneURL into targetFolder, checking out branch
// when given. An existing clone is opened and left as-is.
func (c *Client) CloneRepository(cloneURL, branch, targetFolder string) (string, error) {
	info, err := vcsurl.Parse(cloneURL)
	if err != nil {
		c.logger.Error("failed to parse VCS URL", "url", cloneURL, "error", err)
		return "", fmt.Errorf("failed to parse VCS URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	options := &git.CloneOptions{
		Auth:  c.auth,
		URL:   cloneURL,
		Depth: c.depth,
	}
	if branch != "" {
		options.ReferenceName = plumbing.NewBranchReferenceName(branch)
		options.SingleBranch = true
	}

	c.logger.Debug("starting repository clone", "repository", info.Name, "branch", branch, "target", targetFolder)
	_, err = git.PlainCloneContext(ctx, targetFolder, false, options)
	if err != nil {
		if err == git.ErrRepositoryAlreadyExists {
			c.logger.Info("repository already exists, reusing", "target", targetFolder)
			return targetFolder, nil
		}
		c.logger.Error("error occurred during clone", "error", err, "target", targetFolder)
		return "", fmt.Errorf("error occurred during clone: %w", err)
	}

	return targetFolder, nil
}
