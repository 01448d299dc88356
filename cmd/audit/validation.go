package audit

import (
	"fmt"
	"path/filepath"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/files"
)

// validateAuditArgs validates the arguments provided to the audit command.
func validateAuditArgs(allArgumentsAudit *RunOptionsAudit, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("a target path must be specified")
	}
	if len(args) > 1 {
		return fmt.Errorf("only one target path may be specified")
	}

	targetPath, err := files.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand the target path: %w", err)
	}
	if err := files.ValidateDir(targetPath); err != nil {
		return fmt.Errorf("the target path is not usable: %w", err)
	}
	allArgumentsAudit.TargetPath = targetPath

	switch allArgumentsAudit.ReportFormat {
	case "", FormatMarkdown:
		allArgumentsAudit.ReportFormat = FormatMarkdown
	case FormatSarif:
	default:
		return fmt.Errorf("unsupported report format '%s', expected '%s' or '%s'",
			allArgumentsAudit.ReportFormat, FormatMarkdown, FormatSarif)
	}

	if allArgumentsAudit.Threads < 0 {
		return fmt.Errorf("the 'threads' flag must be a positive integer")
	}

	if allArgumentsAudit.Watch && allArgumentsAudit.ReportFormat == FormatSarif {
		return fmt.Errorf("watch mode only supports the markdown report format")
	}

	return nil
}

// resolveOutputPath picks the report destination when no output flag is set.
func resolveOutputPath(options *RunOptionsAudit) string {
	if options.OutputPath != "" {
		return options.OutputPath
	}
	name := "AUDIT_REPORT.md"
	if options.ReportFormat == FormatSarif {
		name = "audit.sarif"
	}
	return filepath.Join(options.TargetPath, name)
}

// Initialize flags for the audit command.
func init() {
	AuditCmd.Flags().StringVarP(&auditOptions.OutputPath, "output", "o", "", "Path to the file where the report will be saved. Defaults to a file inside the audited project.")
	AuditCmd.Flags().StringVarP(&auditOptions.ReportFormat, "format", "f", "", "Format for the report with results (markdown or sarif).")
	AuditCmd.Flags().BoolP("help", "h", false, "Show help for the audit command.")
	AuditCmd.Flags().IntVarP(&auditOptions.Threads, "threads", "j", 0, "Number of concurrent analysis threads. Defaults to the configured value.")
	AuditCmd.Flags().BoolVar(&auditOptions.DatabaseHotspots, "database-hotspots", false, "Trace controller to repository call chains and flag endpoints with repeated database access.")
	AuditCmd.Flags().BoolVar(&auditOptions.Watch, "watch", false, "Keep running and re-audit whenever source files change.")
}
