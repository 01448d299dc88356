package upload

import (
	"fmt"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/files"
)

// validateUploadArgs validates the arguments provided to the upload command.
func validateUploadArgs(allArgumentsUpload *RunOptionsUpload, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("a report path must be specified")
	}
	if len(args) > 1 {
		return fmt.Errorf("only one report path may be specified")
	}

	reportPath, err := files.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand the report path: %w", err)
	}
	if err := files.ValidatePath(reportPath); err != nil {
		return fmt.Errorf("the report path is not usable: %w", err)
	}
	allArgumentsUpload.ReportPath = reportPath

	if allArgumentsUpload.ProjectName == "" {
		return fmt.Errorf("the 'project' flag must be specified")
	}

	switch allArgumentsUpload.ReportFormat {
	case "":
		allArgumentsUpload.ReportFormat = "markdown"
	case "markdown", "sarif":
	default:
		return fmt.Errorf("unsupported report format '%s', expected 'markdown' or 'sarif'", allArgumentsUpload.ReportFormat)
	}

	if allArgumentsUpload.URL == "" {
		allArgumentsUpload.URL = AppConfig.Review.URL
	}
	if allArgumentsUpload.URL == "" {
		return fmt.Errorf("a review service URL must be set via the 'url' flag or the config file")
	}

	return nil
}

// Initialize flags for the upload command.
func init() {
	UploadCmd.Flags().StringVarP(&uploadOptions.ReportFormat, "format", "f", "", "Format of the report being uploaded (markdown or sarif).")
	UploadCmd.Flags().BoolP("help", "h", false, "Show help for the upload command.")
	UploadCmd.Flags().StringVarP(&uploadOptions.ProjectName, "project", "p", "", "Project name the report belongs to.")
	UploadCmd.Flags().StringVar(&uploadOptions.URL, "url", "", "Base URL of the review service. Defaults to the configured value.")
}
