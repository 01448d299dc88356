// Package sarif exports an audit report as a SARIF 2.1.0 document so the
// findings can flow into code scanning dashboards.
package sarif

import (
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/audit"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
)

const (
	toolName           = "legacy-dotnet-auditor"
	toolInformationURI = "https://github.com/RoastedBrotato/legacy-dotnet-auditor"
)

// ruleHelp gives each finding kind a short SARIF rule description.
var ruleHelp = map[findings.Kind]string{
	findings.LargeFile:                  "File exceeds the configured size threshold",
	findings.DatabaseInLoop:             "Database operation executed inside a loop",
	findings.NPlusOneQuery:              "Per-iteration database query (N+1 shape)",
	findings.SynchronousBlocking:        "Synchronous blocking on an asynchronous result",
	findings.SequentialHttpCalls:        "Sequential outbound HTTP calls that could run concurrently",
	findings.SynchronousIO:              "Blocking I/O outside an async context",
	findings.DuplicateSignature:         "Method signature duplicated across files",
	findings.DuplicateRepositoryPattern: "Repository access pattern duplicated across repositories",
	findings.PollingOpportunity:         "Polling loop that could be push-based",
	findings.QueueCandidate:             "Slow synchronous operation in a request handler",
}

// Convert builds a SARIF report from an audit report.
func Convert(report *audit.Report) (*sarif.Report, error) {
	out, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)

	seenRules := map[findings.Kind]bool{}
	for _, f := range report.Findings {
		if !seenRules[f.Kind] {
			run.AddRule(string(f.Kind)).
				WithDescription(ruleHelp[f.Kind]).
				WithProperties(sarif.Properties{"severity": string(f.Severity)})
			seenRules[f.Kind] = true
		}

		region := sarif.NewSimpleRegion(f.StartLine, f.EndLine)
		location := sarif.NewLocationWithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(f.FilePath)).
				WithRegion(region),
		)

		run.CreateResultForRule(string(f.Kind)).
			WithLevel(severityToLevel(f.Severity)).
			WithMessage(sarif.NewTextMessage(f.Description)).
			WithLocations([]*sarif.Location{location})
	}

	out.AddRun(run)
	return out, nil
}

// WriteFile converts and saves the report to path.
func WriteFile(report *audit.Report, path string) error {
	converted, err := Convert(report)
	if err != nil {
		return err
	}
	if err := converted.WriteFile(path); err != nil {
		return fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return nil
}

// severityToLevel maps finding severities onto SARIF result levels.
func severityToLevel(severity findings.Severity) string {
	switch severity {
	case findings.SeverityCritical, findings.SeverityHigh:
		return "error"
	case findings.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
