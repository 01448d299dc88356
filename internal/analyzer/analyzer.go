package analyzer

import (
	"fmt"
	"strings"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
)

// Detector is a single-file detection engine. Implementations are pure
// functions of their input and never fail: absence of a recognizable pattern
// is absence of a finding.
type Detector interface {
	Name() string
	Analyze(file scanner.ScannedFile, class classifier.Classification) []findings.Finding
}

// Options carries the tunable thresholds shared by the detectors.
type Options struct {
	LargeFileThreshold  int
	SequentialProximity int
	SnippetContext      int
}

// Snippet extracts a numbered source excerpt around a 1-based line, with
// context lines before and after.
func Snippet(lines []string, lineNumber, context int) string {
	if lineNumber < 1 || len(lines) == 0 {
		return ""
	}
	start := lineNumber - context - 1
	if start < 0 {
		start = 0
	}
	end := lineNumber + context
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		fmt.Fprintf(&b, "%4d | %s\n", i+1, strings.TrimRight(lines[i], " \t"))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// isCSharp gates the code detectors to C# sources; views and configs only
// take part in classification and the large-file check.
func isCSharp(path string) bool {
	return strings.HasSuffix(path, ".cs")
}
