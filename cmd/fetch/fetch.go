package fetch

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/git"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/logger"
)

// RunOptionsFetch holds the arguments for the fetch command.
type RunOptionsFetch struct {
	CloneURL     string
	Branch       string
	SSHKey       string
	TargetFolder string
}

// Global variables for configuration and command arguments
var (
	AppConfig         *config.Config
	fetchOptions      RunOptionsFetch
	exampleFetchUsage = `  # Fetching a repository over HTTPS into a target folder
  dotnet-auditor fetch --output /tmp/legacy-project https://github.com/org/legacy-project

  # Fetching a specific branch
  dotnet-auditor fetch -b release/2019 --output /tmp/legacy-project https://github.com/org/legacy-project

  # Fetching over SSH with a key
  dotnet-auditor fetch --ssh-key ~/.ssh/id_ed25519 --output /tmp/legacy-project git@github.com:org/legacy-project.git

  # Fetching a private repository with a token from the environment
  AUDITOR_GIT_TOKEN=... dotnet-auditor fetch --output /tmp/legacy-project https://github.com/org/legacy-project`
)

// FetchCmd represents the fetch command.
var FetchCmd = &cobra.Command{
	Use:                   "fetch [--ssh-key/-k PATH] [-b BRANCH] --output/-o PATH URL",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFetchUsage,
	Short:                 "Fetches repository code so it can be audited locally",
	RunE:                  runFetchCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runFetchCommand executes the fetch command.
func runFetchCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-fetch")

	if err := validateFetchArgs(&fetchOptions, args); err != nil {
		logger.Error("invalid fetch arguments", "error", err)
		return err
	}

	client, err := git.NewClient(AppConfig, git.AuthOptions{
		SSHKeyPath:     fetchOptions.SSHKey,
		SSHKeyPassword: os.Getenv("AUDITOR_SSH_KEY_PASSWORD"),
		Username:       os.Getenv("AUDITOR_GIT_USERNAME"),
		Token:          os.Getenv("AUDITOR_GIT_TOKEN"),
	}, logger)
	if err != nil {
		logger.Error("failed to set up the git client", "error", err)
		return err
	}

	targetFolder, err := client.CloneRepository(fetchOptions.CloneURL, fetchOptions.Branch, fetchOptions.TargetFolder)
	if err != nil {
		logger.Error("fetch command failed", "error", err)
		return err
	}

	logger.Info("fetch command completed successfully", "path", targetFolder)
	return nil
}
