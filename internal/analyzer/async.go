package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
)

// blockingPatterns are "block on asynchronous result" signatures. Each match
// is a finding on its own, independent of surrounding context.
var blockingPatterns = []struct {
	re   *regexp.Regexp
	desc string
}{
	{regexp.MustCompile(`\.Result\b`), "Task.Result blocks the thread"},
	{regexp.MustCompile(`\.Wait\(\)`), "Task.Wait() blocks the thread"},
	{regexp.MustCompile(`\.GetAwaiter\(\)\.GetResult\(\)`), "GetAwaiter().GetResult() blocks the thread"},
}

// outboundCallRe matches HTTP client call sites.
var outboundCallRe = regexp.MustCompile(strings.Join([]string{
	`HttpClient`,
	`WebClient`,
	`RestClient`,
	`HttpWebRequest`,
	`\.GetAsync\(`,
	`\.PostAsync\(`,
	`\.PutAsync\(`,
	`\.DeleteAsync\(`,
}, "|"))

// syncIORe matches blocking I/O APIs that have async equivalents.
var syncIORe = regexp.MustCompile(strings.Join([]string{
	`File\.ReadAllText\(`,
	`File\.ReadAllLines\(`,
	`File\.WriteAllText\(`,
	`File\.WriteAllLines\(`,
	`StreamReader\.Read\(`,
	`StreamWriter\.Write\(`,
	`HttpClient\..*\(`,
	`Thread\.Sleep\(`,
	`WebClient\.`,
	`SqlCommand\.Execute`,
	`SqlDataReader\.Read\(`,
}, "|"))

var (
	// parallelCombinatorRe breaks a sequential-call run: calls joined by a
	// wait-for-all are already issued concurrently.
	parallelCombinatorRe = regexp.MustCompile(`Task\.WhenAll\s*\(|Task\.WaitAll\s*\(`)
	// methodBoundaryRe approximates a new method between two call sites.
	methodBoundaryRe = regexp.MustCompile(`(?:public|private|protected)\s+\S+.*\s\w+\s*\(`)
)

// AsyncDetector reports synchronous blocking on async results, temporally
// adjacent outbound calls, and blocking I/O outside async contexts.
type AsyncDetector struct {
	opts Options
}

func NewAsyncDetector(opts Options) *AsyncDetector {
	return &AsyncDetector{opts: opts}
}

func (d *AsyncDetector) Name() string { return "async" }

func (d *AsyncDetector) Analyze(file scanner.ScannedFile, class classifier.Classification) []findings.Finding {
	if !isCSharp(file.Path) {
		return nil
	}

	// lines already claimed by a finding; a call signature never matches
	// twice at the same line for two different kinds
	claimed := make(map[int]bool)

	var out []findings.Finding
	out = append(out, d.detectBlockingCalls(file, claimed)...)
	out = append(out, d.detectSequentialCalls(file)...)
	out = append(out, d.detectSyncIO(file, claimed)...)
	return out
}

func (d *AsyncDetector) detectBlockingCalls(file scanner.ScannedFile, claimed map[int]bool) []findings.Finding {
	var out []findings.Finding
	for i, line := range file.Lines {
		lineNo := i + 1
		for _, p := range blockingPatterns {
			if !p.re.MatchString(line) {
				continue
			}
			out = append(out, findings.New(
				findings.SynchronousBlocking,
				file.Path,
				lineNo,
				fmt.Sprintf("Synchronous blocking call detected: %s", p.desc),
				Snippet(file.Lines, lineNo, d.opts.SnippetContext),
				"Replace with 'await' and make the containing method async.",
			))
			claimed[lineNo] = true
			break
		}
	}
	return out
}

// detectSequentialCalls finds runs of awaited outbound calls that sit within
// the proximity window of each other with no parallel combinator and no
// method boundary between them. A run of k >= 2 calls yields exactly one
// finding spanning the run.
func (d *AsyncDetector) detectSequentialCalls(file scanner.ScannedFile) []findings.Finding {
	var callLines []int
	for i, line := range file.Lines {
		if outboundCallRe.MatchString(line) && strings.Contains(line, "await") {
			callLines = append(callLines, i+1)
		}
	}
	if len(callLines) < 2 {
		return nil
	}

	var out []findings.Finding
	runStart := callLines[0]
	runEnd := callLines[0]
	runLen := 1

	flush := func() {
		if runLen >= 2 {
			out = append(out, findings.Finding{
				Kind:           findings.SequentialHttpCalls,
				Severity:       findings.SeverityOf(findings.SequentialHttpCalls),
				FilePath:       file.Path,
				StartLine:      runStart,
				EndLine:        runEnd,
				Snippet:        Snippet(file.Lines, runStart, d.opts.SnippetContext),
				Description:    fmt.Sprintf("%d sequential HTTP calls detected (lines %d-%d)", runLen, runStart, runEnd),
				Recommendation: "Use Task.WhenAll() to issue independent HTTP calls concurrently.",
			})
		}
	}

	for _, next := range callLines[1:] {
		if next-runEnd <= d.opts.SequentialProximity && d.joinsRun(file.Lines, runEnd, next) {
			runEnd = next
			runLen++
			continue
		}
		flush()
		runStart, runEnd, runLen = next, next, 1
	}
	flush()

	return out
}

// joinsRun reports whether the region between two call lines is free of
// parallel combinators and method boundaries.
func (d *AsyncDetector) joinsRun(lines []string, from, to int) bool {
	for i := from; i < to-1; i++ {
		if parallelCombinatorRe.MatchString(lines[i]) {
			return false
		}
		if methodBoundaryRe.MatchString(lines[i]) {
			return false
		}
	}
	return true
}

// AsyncOpportunities lists files doing I/O, database, or HTTP work with no
// async usage at all. Informational; feeds the report, not the finding list.
func AsyncOpportunities(file scanner.ScannedFile, class classifier.Classification) []string {
	if !isCSharp(file.Path) || class.HasTag(classifier.TagUsesAsync) {
		return nil
	}

	content := file.Content()
	var operations []string
	if syncIORe.MatchString(content) {
		operations = append(operations, "file I/O")
	}
	if class.HasTag(classifier.TagUsesORM) || class.HasTag(classifier.TagUsesRawSQL) {
		operations = append(operations, "database operations")
	}
	if class.HasTag(classifier.TagUsesHttpClient) {
		operations = append(operations, "HTTP calls")
	}
	if len(operations) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%s: no async/await usage found despite %s", file.Path, strings.Join(operations, ", "))}
}

func (d *AsyncDetector) detectSyncIO(file scanner.ScannedFile, claimed map[int]bool) []findings.Finding {
	var out []findings.Finding
	for i, line := range file.Lines {
		lineNo := i + 1
		if claimed[lineNo] {
			continue
		}
		// an awaited line is already in an async context
		if strings.Contains(line, "await") {
			continue
		}
		if !syncIORe.MatchString(line) {
			continue
		}
		out = append(out, findings.New(
			findings.SynchronousIO,
			file.Path,
			lineNo,
			"Synchronous I/O operation detected",
			Snippet(file.Lines, lineNo, d.opts.SnippetContext),
			"Replace with the async equivalent (File.ReadAllTextAsync, awaited HttpClient calls).",
		))
	}
	return out
}
