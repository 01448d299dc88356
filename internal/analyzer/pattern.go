package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
)

// methodSignatureRe captures return shape, name and parameter list of a
// method declaration.
var methodSignatureRe = regexp.MustCompile(
	`(?:public|private|protected|internal)\s+(?:static\s+|virtual\s+|override\s+|sealed\s+|partial\s+|new\s+)*(?:async\s+)?([\w<>,\[\].?]+)\s+(\w+)\s*\(([^)]*)\)`)

// repositoryCallRe matches CRUD-style calls against a context-like field.
var repositoryCallRe = regexp.MustCompile(
	`\b(?:_\w+|db|context)\s*\.\s*(GetById|GetAll|Add|Update|Delete|Remove|Save|SaveChanges|Find)\b`)

var (
	sleepCallRe   = regexp.MustCompile(`Thread\.Sleep\s*\(|Task\.Delay\s*\(`)
	statusCheckRe = regexp.MustCompile(`(?i)CheckStatus|GetLatest|GetUpdates|RefreshData|Poll`)
	slowOpRe      = regexp.MustCompile(`SendEmail|SendNotification|GenerateReport|ProcessReport|ExportData|ImportData`)
	blockingRe    = regexp.MustCompile(`\.Result\b|\.Wait\(\)|\.GetAwaiter\(\)\.GetResult\(\)`)
)

// ignoredMethodNames are too generic to mean duplication.
var ignoredMethodNames = map[string]bool{
	"Main":      true,
	"Configure": true,
	"Dispose":   true,
}

// Occurrence is one (file, line) site of a normalized signature.
type Occurrence struct {
	File string
	Line int
}

// PartialIndex is the pass-1 output for a subset of files. Workers each fill
// their own partial index; Merge combines them before pass 2 reads anything.
type PartialIndex struct {
	MethodSignatures map[string][]Occurrence
	RepositoryShapes map[string][]Occurrence
	Findings         []findings.Finding
}

func NewPartialIndex() *PartialIndex {
	return &PartialIndex{
		MethodSignatures: map[string][]Occurrence{},
		RepositoryShapes: map[string][]Occurrence{},
	}
}

// PatternDetector performs the two-pass, whole-project structural analysis.
type PatternDetector struct {
	opts Options
}

func NewPatternDetector(opts Options) *PatternDetector {
	return &PatternDetector{opts: opts}
}

func (d *PatternDetector) Name() string { return "pattern" }

// Collect is pass 1 for a single file: it extracts normalized signatures and
// repository shapes into the given partial index, and emits the per-file
// polling and queue findings.
func (d *PatternDetector) Collect(file scanner.ScannedFile, class classifier.Classification, idx *PartialIndex) {
	if !isCSharp(file.Path) {
		return
	}

	for i, line := range file.Lines {
		lineNo := i + 1
		if m := methodSignatureRe.FindStringSubmatch(line); m != nil {
			name := m[2]
			if !ignoredMethodNames[name] {
				sig := normalizeSignature(m[1], name, m[3])
				idx.MethodSignatures[sig] = append(idx.MethodSignatures[sig], Occurrence{File: file.Path, Line: lineNo})
			}
		}
		if class.Role == classifier.RoleRepository {
			if m := repositoryCallRe.FindStringSubmatch(line); m != nil {
				shape := m[1]
				idx.RepositoryShapes[shape] = append(idx.RepositoryShapes[shape], Occurrence{File: file.Path, Line: lineNo})
			}
		}
	}

	idx.Findings = append(idx.Findings, d.detectPollingLoops(file)...)
	idx.Findings = append(idx.Findings, d.detectQueueCandidates(file, class)...)
}

// normalizeSignature reduces a declaration to return-shape + name +
// parameter arity, stripped of whitespace.
func normalizeSignature(returnShape, name, params string) string {
	shape := strings.Join(strings.Fields(returnShape), "")
	arity := 0
	if strings.TrimSpace(params) != "" {
		arity = strings.Count(params, ",") + 1
	}
	return fmt.Sprintf("%s %s/%d", shape, name, arity)
}

// Merge combines per-worker partial indexes. Inputs must arrive in file
// order so occurrence lists stay deterministic.
func Merge(partials ...*PartialIndex) *PartialIndex {
	merged := NewPartialIndex()
	for _, p := range partials {
		if p == nil {
			continue
		}
		for sig, occ := range p.MethodSignatures {
			merged.MethodSignatures[sig] = append(merged.MethodSignatures[sig], occ...)
		}
		for shape, occ := range p.RepositoryShapes {
			merged.RepositoryShapes[shape] = append(merged.RepositoryShapes[shape], occ...)
		}
		merged.Findings = append(merged.Findings, p.Findings...)
	}
	return merged
}

// Report is pass 2: it reads the merged index and emits one finding per
// signature recurring across at least two distinct files, ordered by
// descending occurrence count then lexicographically by signature.
func (d *PatternDetector) Report(idx *PartialIndex) []findings.Finding {
	var out []findings.Finding
	out = append(out, reportDuplicates(idx.MethodSignatures, findings.DuplicateSignature,
		"Duplicate method signature %q found in %d files: %s",
		"Extract the common logic into a shared service or base class.")...)
	out = append(out, reportDuplicates(idx.RepositoryShapes, findings.DuplicateRepositoryPattern,
		"Repository pattern %q repeated in %d repositories: %s",
		"Use a generic repository or base repository class for shared CRUD behavior.")...)
	return out
}

func reportDuplicates(index map[string][]Occurrence, kind findings.Kind, descFormat, recommendation string) []findings.Finding {
	type duplicate struct {
		signature string
		files     []string
		sites     []Occurrence
	}

	var duplicates []duplicate
	for sig, occurrences := range index {
		files := distinctFiles(occurrences)
		if len(files) < 2 {
			continue
		}
		duplicates = append(duplicates, duplicate{signature: sig, files: files, sites: occurrences})
	}

	sort.Slice(duplicates, func(i, j int) bool {
		if len(duplicates[i].sites) != len(duplicates[j].sites) {
			return len(duplicates[i].sites) > len(duplicates[j].sites)
		}
		return duplicates[i].signature < duplicates[j].signature
	})

	var out []findings.Finding
	for _, dup := range duplicates {
		// anchor at the first occurrence so the path stays a real file;
		// the description carries the full site list
		first := dup.sites[0]
		f := findings.New(
			kind,
			first.File,
			first.Line,
			fmt.Sprintf(descFormat, dup.signature, len(dup.files), formatSites(dup.sites)),
			"",
			recommendation,
		)
		out = append(out, f)
	}
	return out
}

func distinctFiles(occurrences []Occurrence) []string {
	seen := map[string]bool{}
	var files []string
	for _, o := range occurrences {
		if !seen[o.File] {
			seen[o.File] = true
			files = append(files, o.File)
		}
	}
	sort.Strings(files)
	return files
}

func formatSites(occurrences []Occurrence) string {
	parts := make([]string, 0, len(occurrences))
	for _, o := range occurrences {
		parts = append(parts, fmt.Sprintf("%s:%d", o.File, o.Line))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// detectPollingLoops flags bounded retry/poll loops: a loop body containing
// both a sleep/delay call and a status-check call. One finding per loop.
func (d *PatternDetector) detectPollingLoops(file scanner.ScannedFile) []findings.Finding {
	var out []findings.Finding
	var scan loopScan
	var sawSleep, sawStatusCheck bool

	emit := func() {
		if sawSleep && sawStatusCheck {
			out = append(out, findings.New(
				findings.PollingOpportunity,
				file.Path,
				scan.startLine,
				"Polling loop detected (sleep plus status check); a push-based channel would remove the poll interval",
				Snippet(file.Lines, scan.startLine, d.opts.SnippetContext),
				"Replace the polling loop with push notifications (e.g. SignalR) or an event subscription.",
			))
		}
		sawSleep, sawStatusCheck = false, false
	}

	for i, raw := range file.Lines {
		line := strings.TrimSpace(raw)
		if !scan.inLoop {
			if loopStartRe.MatchString(line) {
				scan.enter(line, i+1)
			}
			continue
		}
		if sleepCallRe.MatchString(line) {
			sawSleep = true
		}
		if statusCheckRe.MatchString(line) {
			sawStatusCheck = true
		}
		scan.observe(line)
		if !scan.inLoop {
			emit()
		}
	}
	if scan.inLoop {
		emit()
	}

	return out
}

// detectQueueCandidates flags blocking waits combined with known slow
// operations inside request-handling files.
func (d *PatternDetector) detectQueueCandidates(file scanner.ScannedFile, class classifier.Classification) []findings.Finding {
	if class.Role != classifier.RoleController && class.Role != classifier.RoleApiController {
		return nil
	}

	var out []findings.Finding
	for i, line := range file.Lines {
		lineNo := i + 1
		m := slowOpRe.FindString(line)
		if m == "" {
			continue
		}
		if !d.blockingNearby(file.Lines, i) {
			continue
		}
		out = append(out, findings.New(
			findings.QueueCandidate,
			file.Path,
			lineNo,
			fmt.Sprintf("Slow operation %q runs synchronously in a request handler", m),
			Snippet(file.Lines, lineNo, d.opts.SnippetContext),
			"Offload the operation to a background queue (e.g. Hangfire, Azure Service Bus) and return immediately.",
		))
	}
	return out
}

// blockingNearby looks for a blocking wait on the slow-op line or within a
// three-line window around it.
func (d *PatternDetector) blockingNearby(lines []string, index int) bool {
	start := index - 3
	if start < 0 {
		start = 0
	}
	end := index + 4
	if end > len(lines) {
		end = len(lines)
	}
	for i := start; i < end; i++ {
		if blockingRe.MatchString(lines[i]) {
			return true
		}
	}
	return false
}
