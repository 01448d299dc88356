package upload

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/review"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/logger"
)

// RunOptionsUpload holds the arguments for the upload command.
type RunOptionsUpload struct {
	ReportPath   string
	ProjectName  string
	ReportFormat string
	URL          string
}

// Global variables for configuration and command arguments
var (
	AppConfig          *config.Config
	uploadOptions      RunOptionsUpload
	exampleUploadUsage = `  # Uploading a markdown report to the configured review service
  dotnet-auditor upload --project legacy-project /path/to/AUDIT_REPORT.md

  # Uploading a SARIF report to an explicit review service URL
  dotnet-auditor upload --project legacy-project --format sarif --url https://review.example.com /path/to/audit.sarif`
)

// UploadCmd represents the upload command.
var UploadCmd = &cobra.Command{
	Use:                   "upload --project/-p NAME [--format/-f markdown|sarif] [--url URL] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleUploadUsage,
	Short:                 "Uploads an audit report to a review service",
	RunE:                  runUploadCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runUploadCommand executes the upload command.
func runUploadCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-upload")

	if err := validateUploadArgs(&uploadOptions, args); err != nil {
		logger.Error("invalid upload arguments", "error", err)
		return err
	}

	token := ""
	if AppConfig.Review.TokenEnv != "" {
		token = os.Getenv(AppConfig.Review.TokenEnv)
	}

	client := review.New(AppConfig.HttpClient, uploadOptions.URL, token)
	if err := client.Ping(); err != nil {
		logger.Error("review service is not reachable", "url", uploadOptions.URL, "error", err)
		return err
	}

	submission, err := client.UploadReport(uploadOptions.ProjectName, uploadOptions.ReportPath, uploadOptions.ReportFormat)
	if err != nil {
		logger.Error("upload command failed", "error", err)
		return err
	}

	logger.Info("upload command completed successfully", "submission_id", submission.ID)
	return nil
}
