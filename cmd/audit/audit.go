package audit

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/audit"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/git"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/markdown"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/sarif"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/logger"
)

const (
	FormatMarkdown = "markdown"
	FormatSarif    = "sarif"
)

// RunOptionsAudit holds the arguments for the audit command.
type RunOptionsAudit struct {
	TargetPath       string
	OutputPath       string
	ReportFormat     string
	Threads          int
	DatabaseHotspots bool
	Watch            bool
}

// Global variables for configuration and command arguments
var (
	AppConfig         *config.Config
	auditOptions      RunOptionsAudit
	exampleAuditUsage = `  # Auditing a project and writing the markdown report next to it
  dotnet-auditor audit /path/to/legacy-project

  # Auditing a project and writing the report to a specific file
  dotnet-auditor audit --output /path/to/reports/audit.md /path/to/legacy-project

  # Producing a SARIF report for CI upload
  dotnet-auditor audit --format sarif --output audit.sarif /path/to/legacy-project

  # Auditing with database hotspot analysis and multiple concurrent threads
  dotnet-auditor audit --database-hotspots -j 8 /path/to/legacy-project

  # Re-auditing automatically whenever source files change
  dotnet-auditor audit --watch /path/to/legacy-project`
)

// AuditCmd represents the audit command.
var AuditCmd = &cobra.Command{
	Use:                   "audit [--output/-o PATH] [--format/-f markdown|sarif] [-j THREADS_NUMBER] [--database-hotspots] [--watch] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAuditUsage,
	Short:                 "Audits a .NET source tree for modernization risks and writes a report",
	RunE:                  runAuditCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runAuditCommand executes the audit command.
func runAuditCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-audit")

	if err := validateAuditArgs(&auditOptions, args); err != nil {
		logger.Error("invalid audit arguments", "error", err)
		return err
	}

	if auditOptions.Threads > 0 {
		AppConfig.Analyzer.Threads = auditOptions.Threads
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if metadata, err := git.CollectRepositoryMetadata(auditOptions.TargetPath); err == nil {
		if metadata.BranchName != nil && metadata.CommitHash != nil {
			logger.Info("auditing repository checkout", "branch", *metadata.BranchName, "commit", *metadata.CommitHash)
		}
	}

	if auditOptions.Watch {
		return runWatchedAudit(ctx, logger, &auditOptions)
	}

	if err := runSingleAudit(ctx, logger, &auditOptions); err != nil {
		logger.Error("audit command failed", "error", err)
		return err
	}

	logger.Info("audit command completed successfully")
	return nil
}

func runSingleAudit(ctx context.Context, log hclog.Logger, options *RunOptionsAudit) error {
	files, err := scanner.New(options.TargetPath, AppConfig, log).Scan()
	if err != nil {
		return err
	}
	log.Info("scan completed", "files", len(files))

	runner := audit.NewRunner(AppConfig, log)
	report, err := runner.Run(ctx, options.TargetPath, files, audit.RunOptions{
		DatabaseHotspots: options.DatabaseHotspots,
	})
	if err != nil {
		return err
	}
	log.Info("analysis completed",
		"findings", report.Counts.Total,
		"critical", report.Counts.BySeverity[findings.SeverityCritical],
		"high", report.Counts.BySeverity[findings.SeverityHigh],
	)

	outputPath := resolveOutputPath(options)
	if options.ReportFormat == FormatSarif {
		if err := sarif.WriteFile(report, outputPath); err != nil {
			return err
		}
	} else {
		if err := markdown.Write(report, outputPath); err != nil {
			return err
		}
	}
	log.Info("report written", "path", outputPath, "format", options.ReportFormat)
	return nil
}
