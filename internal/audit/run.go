package audit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/analyzer"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/hotspot"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/errors"
)

// FileSummary is the per-file line in the report's structure section.
type FileSummary struct {
	Path      string          `json:"path"`
	LineCount int             `json:"line_count"`
	Role      classifier.Role `json:"role"`
}

// Endpoint is an inferred controller action. Best-effort from naming
// convention, not a router evaluation.
type Endpoint struct {
	Controller string `json:"controller"`
	Action     string `json:"action"`
	Route      string `json:"route"`
	File       string `json:"file"`
}

// Report is the aggregate audit model. Built once per run, read-only after
// construction.
type Report struct {
	RunID              string                      `json:"run_id"`
	GeneratedAt        time.Time                   `json:"generated_at"`
	ProjectPath        string                      `json:"project_path"`
	TotalFiles         int                         `json:"total_files"`
	AnalyzedFiles      int                         `json:"analyzed_files"`
	Files              []FileSummary               `json:"files"`
	Classifications    []classifier.Classification `json:"classifications"`
	Findings           []findings.Finding          `json:"findings"`
	Endpoints          []Endpoint                  `json:"endpoints"`
	Counts             findings.Counts             `json:"counts"`
	AsyncOpportunities []string                    `json:"async_opportunities,omitempty"`
	Hotspots           *hotspot.Analysis           `json:"hotspots,omitempty"`
}

// RoleCounts tallies classifications by role.
func (r *Report) RoleCounts() map[classifier.Role]int {
	out := map[classifier.Role]int{}
	for _, c := range r.Classifications {
		out[c.Role]++
	}
	return out
}

// FindingsOfKind returns the report findings of one kind, preserving order.
func (r *Report) FindingsOfKind(kind findings.Kind) []findings.Finding {
	var out []findings.Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// RunOptions selects optional pipeline stages.
type RunOptions struct {
	DatabaseHotspots bool
}

// Runner drives one audit over an already-scanned file set.
type Runner struct {
	cfg    *config.Config
	logger hclog.Logger
}

func NewRunner(cfg *config.Config, logger hclog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// fileResult is the per-file output of the parallel stage, slotted by index
// so the merge stays in file order regardless of worker scheduling.
type fileResult struct {
	class         classifier.Classification
	findings      []findings.Finding
	partial       *analyzer.PartialIndex
	opportunities []string
	done          bool
}

// Run executes the full pipeline: classification and the single-file
// detectors in a bounded worker pool, a barrier, then the whole-project
// structural pass, then deterministic aggregation. Cancellation between
// files keeps completed per-file results valid.
func (r *Runner) Run(ctx context.Context, projectPath string, scannedFiles []scanner.ScannedFile, opts RunOptions) (*Report, error) {
	detectorOpts := analyzer.Options{
		LargeFileThreshold:  r.cfg.Analyzer.LargeFileThreshold,
		SequentialProximity: r.cfg.Analyzer.SequentialProximity,
		SnippetContext:      r.cfg.Analyzer.SnippetContext,
	}

	cls := classifier.New()
	performance := analyzer.NewPerformanceDetector(detectorOpts)
	async := analyzer.NewAsyncDetector(detectorOpts)
	pattern := analyzer.NewPatternDetector(detectorOpts)

	results := make([]fileResult, len(scannedFiles))
	r.forEveryFileBounded(ctx, scannedFiles, func(i int, file scanner.ScannedFile) {
		class := cls.Classify(file)

		var fs []findings.Finding
		fs = append(fs, r.runDetector(performance.Name(), file.Path, func() []findings.Finding {
			return performance.Analyze(file, class)
		})...)
		fs = append(fs, r.runDetector(async.Name(), file.Path, func() []findings.Finding {
			return async.Analyze(file, class)
		})...)

		partial := analyzer.NewPartialIndex()
		r.runDetector(pattern.Name(), file.Path, func() []findings.Finding {
			pattern.Collect(file, class, partial)
			return nil
		})

		results[i] = fileResult{
			class:         class,
			findings:      fs,
			partial:       partial,
			opportunities: analyzer.AsyncOpportunities(file, class),
			done:          true,
		}
	})

	// barrier: every worker has finished before the merged index is read
	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		ProjectPath: projectPath,
		TotalFiles:  len(scannedFiles),
	}

	var all []findings.Finding
	partials := make([]*analyzer.PartialIndex, 0, len(results))
	for i, res := range results {
		if !res.done {
			// cancelled before this file was processed
			continue
		}
		report.AnalyzedFiles++
		report.Files = append(report.Files, FileSummary{
			Path:      scannedFiles[i].Path,
			LineCount: scannedFiles[i].LineCount,
			Role:      res.class.Role,
		})
		report.Classifications = append(report.Classifications, res.class)
		report.AsyncOpportunities = append(report.AsyncOpportunities, res.opportunities...)
		all = append(all, res.findings...)
		partials = append(partials, res.partial)
	}

	merged := analyzer.Merge(partials...)
	all = append(all, merged.Findings...)
	all = append(all, pattern.Report(merged)...)

	sort.SliceStable(all, func(i, j int) bool { return findings.Less(all[i], all[j]) })
	report.Findings = all
	report.Counts = findings.Count(all)
	report.Endpoints = extractEndpoints(scannedFiles, report.Classifications)

	if opts.DatabaseHotspots {
		report.Hotspots = hotspot.Analyze(scannedFiles, report.Classifications, toHotspotEndpoints(report.Endpoints))
	}

	r.logger.Debug("audit run complete",
		"run_id", report.RunID,
		"files", report.AnalyzedFiles,
		"findings", report.Counts.Total,
	)
	return report, ctx.Err()
}

// forEveryFileBounded runs f across files with a bounded number of
// goroutines. Files not dispatched before cancellation are skipped;
// in-flight files always complete.
func (r *Runner) forEveryFileBounded(ctx context.Context, files []scanner.ScannedFile, f func(i int, file scanner.ScannedFile)) {
	limit := r.cfg.Analyzer.Threads
	if limit < 1 {
		limit = 1
	}
	guard := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		guard <- struct{}{}
		wg.Add(1)
		go func(i int, file scanner.ScannedFile) {
			defer wg.Done()
			f(i, file)
			<-guard
		}(i, file)
	}
	wg.Wait()
}

// runDetector isolates one detector invocation: a panic on malformed input
// costs that detector's contribution for that file only.
func (r *Runner) runDetector(name, path string, f func() []findings.Finding) (out []findings.Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.NewDetectorError(name, path, fmt.Errorf("%v", rec))
			r.logger.Warn("detector failed, skipping its findings for this file", "error", err)
			out = nil
		}
	}()
	return f()
}

func toHotspotEndpoints(endpoints []Endpoint) []hotspot.Endpoint {
	out := make([]hotspot.Endpoint, 0, len(endpoints))
	for _, e := range endpoints {
		out = append(out, hotspot.Endpoint{Controller: e.Controller, Action: e.Action, Route: e.Route})
	}
	return out
}
