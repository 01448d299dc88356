package fetch

import (
	"fmt"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/files"
)

// validateFetchArgs validates the arguments provided to the fetch command.
func validateFetchArgs(allArgumentsFetch *RunOptionsFetch, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("a repository URL must be specified")
	}
	if len(args) > 1 {
		return fmt.Errorf("only one repository URL may be specified")
	}
	allArgumentsFetch.CloneURL = args[0]

	if allArgumentsFetch.TargetFolder == "" {
		return fmt.Errorf("the 'output' flag must be specified")
	}

	if allArgumentsFetch.SSHKey != "" {
		sshKey, err := files.ExpandPath(allArgumentsFetch.SSHKey)
		if err != nil {
			return fmt.Errorf("failed to expand the ssh key path: %w", err)
		}
		if err := files.ValidatePath(sshKey); err != nil {
			return fmt.Errorf("the ssh key is not usable: %w", err)
		}
		allArgumentsFetch.SSHKey = sshKey
	}

	return nil
}

// Initialize flags for the fetch command.
func init() {
	FetchCmd.Flags().StringVarP(&fetchOptions.Branch, "branch", "b", "", "Branch to fetch. Defaults to the remote default branch.")
	FetchCmd.Flags().BoolP("help", "h", false, "Show help for the fetch command.")
	FetchCmd.Flags().StringVarP(&fetchOptions.TargetFolder, "output", "o", "", "Folder the repository will be cloned into.")
	FetchCmd.Flags().StringVarP(&fetchOptions.SSHKey, "ssh-key", "k", "", "Path to the SSH private key used for cloning.")
}
