package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
)

// dbOperationRe matches ORM call sites and raw query execution.
var dbOperationRe = regexp.MustCompile(strings.Join([]string{
	`\.SaveChanges(?:Async)?\s*\(`,
	`\.ExecuteSqlCommand(?:Async)?\s*\(`,
	`\.Query<`,
	`\.ToList(?:Async)?\s*\(\)`,
	`\.FirstOrDefault(?:Async)?\s*\(`,
	`\.SingleOrDefault(?:Async)?\s*\(`,
	`\.Find(?:Async)?\s*\(`,
	`SqlCommand\b`,
	`SqlDataReader\b`,
}, "|"))

var (
	loopStartRe   = regexp.MustCompile(`\bfor\s*\(|\bforeach\s*\(|\bwhile\s*\(`)
	foreachVarRe  = regexp.MustCompile(`\bforeach\s*\(\s*(?:var|[\w<>,\[\].]+)\s+(\w+)\s+in\b`)
	forLoopVarRe  = regexp.MustCompile(`\bfor\s*\(\s*(?:var\s+|\w+\s+)?(\w+)\s*=`)
	dbInLoopRec   = "Move database operations outside the loop or use batch operations. Consider .Include() for eager loading."
	nPlusOneRec   = "Use .Include() or .ThenInclude() to eager load related data, or batch the per-iteration queries into one."
	largeFileRec  = "Consider refactoring into smaller, focused classes following the Single Responsibility Principle."
	largeFileDesc = "File is %d lines long (threshold: %d)"
)

// PerformanceDetector reports oversized files, database calls inside loops,
// and N+1 query shapes.
type PerformanceDetector struct {
	opts Options
}

func NewPerformanceDetector(opts Options) *PerformanceDetector {
	return &PerformanceDetector{opts: opts}
}

func (d *PerformanceDetector) Name() string { return "performance" }

func (d *PerformanceDetector) Analyze(file scanner.ScannedFile, class classifier.Classification) []findings.Finding {
	var out []findings.Finding

	if file.LineCount > d.opts.LargeFileThreshold {
		f := findings.New(
			findings.LargeFile,
			file.Path,
			1,
			fmt.Sprintf(largeFileDesc, file.LineCount, d.opts.LargeFileThreshold),
			"",
			largeFileRec,
		)
		f.EndLine = file.LineCount
		out = append(out, f)
	}

	if !isCSharp(file.Path) {
		return out
	}

	out = append(out, d.detectDatabaseInLoops(file)...)
	return out
}

// loopScan is the explicit state machine for loop scanning: Outside, or
// InLoop with a brace depth relative to the outer loop's entry. Nested loops
// only deepen the depth, so an inner closing brace never falsely exits.
type loopScan struct {
	inLoop    bool
	depth     int
	startLine int
	loopVars  []string
}

func (s *loopScan) enter(line string, lineNo int) {
	opens := strings.Count(line, "{")
	depth := opens - strings.Count(line, "}")
	// a body that opens and closes on the entry line is already over
	if opens > 0 && depth <= 0 {
		return
	}
	s.inLoop = true
	s.depth = depth
	s.startLine = lineNo
	s.loopVars = appendLoopVar(nil, line)
}

func (s *loopScan) observe(line string) {
	if !s.inLoop {
		return
	}
	if loopStartRe.MatchString(line) {
		// nested loop: keep the outer entry, add its iteration variable
		s.loopVars = appendLoopVar(s.loopVars, line)
	}
	s.depth += strings.Count(line, "{")
	s.depth -= strings.Count(line, "}")
	if s.depth <= 0 && strings.Contains(line, "}") {
		s.inLoop = false
		s.loopVars = nil
	}
}

func appendLoopVar(vars []string, line string) []string {
	if m := foreachVarRe.FindStringSubmatch(line); m != nil {
		return append(vars, m[1])
	}
	if m := forLoopVarRe.FindStringSubmatch(line); m != nil {
		return append(vars, m[1])
	}
	return vars
}

// referencesLoopVar reports whether the line uses any active loop variable as
// a whole token, i.e. the query argument is per-iteration-derived.
func (s *loopScan) referencesLoopVar(line string) bool {
	for _, v := range s.loopVars {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(v) + `\b`)
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// detectDatabaseInLoops emits one finding per DB call site inside a loop.
// A call whose argument references the loop variable is the more specific
// NPlusOneQuery; otherwise it is DatabaseInLoop. Never both for one line.
func (d *PerformanceDetector) detectDatabaseInLoops(file scanner.ScannedFile) []findings.Finding {
	var out []findings.Finding
	var scan loopScan

	for i, raw := range file.Lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if !scan.inLoop {
			if loopStartRe.MatchString(line) {
				scan.enter(line, lineNo)
			}
			continue
		}

		if dbOperationRe.MatchString(line) {
			if scan.referencesLoopVar(line) {
				out = append(out, findings.New(
					findings.NPlusOneQuery,
					file.Path,
					lineNo,
					fmt.Sprintf("Per-iteration database query detected inside loop started at line %d", scan.startLine),
					Snippet(file.Lines, lineNo, d.opts.SnippetContext),
					nPlusOneRec,
				))
			} else {
				out = append(out, findings.New(
					findings.DatabaseInLoop,
					file.Path,
					lineNo,
					fmt.Sprintf("Database operation detected inside loop started at line %d", scan.startLine),
					Snippet(file.Lines, lineNo, d.opts.SnippetContext),
					dbInLoopRec,
				))
			}
		}

		scan.observe(line)
	}

	return out
}
