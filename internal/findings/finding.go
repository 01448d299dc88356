package findings

// Kind identifies the anti-pattern a finding reports.
type Kind string

const (
	LargeFile                  Kind = "LargeFile"
	DatabaseInLoop             Kind = "DatabaseInLoop"
	NPlusOneQuery              Kind = "NPlusOneQuery"
	SynchronousBlocking        Kind = "SynchronousBlocking"
	SequentialHttpCalls        Kind = "SequentialHttpCalls"
	SynchronousIO              Kind = "SynchronousIO"
	DuplicateSignature         Kind = "DuplicateSignature"
	DuplicateRepositoryPattern Kind = "DuplicateRepositoryPattern"
	PollingOpportunity         Kind = "PollingOpportunity"
	QueueCandidate             Kind = "QueueCandidate"
)

// kindOrder fixes the grouping order of kinds in aggregated output.
var kindOrder = map[Kind]int{
	LargeFile:                  0,
	DatabaseInLoop:             1,
	NPlusOneQuery:              2,
	SynchronousBlocking:        3,
	SequentialHttpCalls:        4,
	SynchronousIO:              5,
	DuplicateSignature:         6,
	DuplicateRepositoryPattern: 7,
	PollingOpportunity:         8,
	QueueCandidate:             9,
}

// Severity of a finding. Severity is fixed per kind, never computed.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

var severityRank = map[Severity]int{
	SeverityCritical: 3,
	SeverityHigh:     2,
	SeverityMedium:   1,
	SeverityLow:      0,
}

// kindSeverity maps every kind to its fixed severity.
var kindSeverity = map[Kind]Severity{
	LargeFile:                  SeverityHigh,
	DatabaseInLoop:             SeverityCritical,
	NPlusOneQuery:              SeverityCritical,
	SynchronousBlocking:        SeverityCritical,
	SequentialHttpCalls:        SeverityHigh,
	SynchronousIO:              SeverityMedium,
	DuplicateSignature:         SeverityMedium,
	DuplicateRepositoryPattern: SeverityLow,
	PollingOpportunity:         SeverityMedium,
	QueueCandidate:             SeverityHigh,
}

// SeverityOf returns the fixed severity for a kind.
func SeverityOf(kind Kind) Severity {
	return kindSeverity[kind]
}

// Finding is an immutable detection record. It is created by exactly one
// detector and never mutated after aggregation.
type Finding struct {
	Kind           Kind     `json:"kind"`
	Severity       Severity `json:"severity"`
	FilePath       string   `json:"file_path"`
	StartLine      int      `json:"start_line"`
	EndLine        int      `json:"end_line"`
	Snippet        string   `json:"snippet,omitempty"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// New builds a finding with the severity fixed by its kind.
func New(kind Kind, filePath string, line int, description, snippet, recommendation string) Finding {
	return Finding{
		Kind:           kind,
		Severity:       SeverityOf(kind),
		FilePath:       filePath,
		StartLine:      line,
		EndLine:        line,
		Snippet:        snippet,
		Description:    description,
		Recommendation: recommendation,
	}
}

// Less defines the canonical report order: grouped by kind, then descending
// severity, then file path, then start line.
func Less(a, b Finding) bool {
	if kindOrder[a.Kind] != kindOrder[b.Kind] {
		return kindOrder[a.Kind] < kindOrder[b.Kind]
	}
	if severityRank[a.Severity] != severityRank[b.Severity] {
		return severityRank[a.Severity] > severityRank[b.Severity]
	}
	if a.FilePath != b.FilePath {
		return a.FilePath < b.FilePath
	}
	if a.StartLine != b.StartLine {
		return a.StartLine < b.StartLine
	}
	return a.EndLine < b.EndLine
}

// Counts holds the derived summary numbers for a set of findings.
type Counts struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
	ByKind     map[Kind]int     `json:"by_kind"`
}

// Count recomputes summary counts from a finding list. There is no
// independent bookkeeping anywhere; this is the only source of counts.
func Count(list []Finding) Counts {
	c := Counts{
		BySeverity: map[Severity]int{},
		ByKind:     map[Kind]int{},
	}
	for _, f := range list {
		c.Total++
		c.BySeverity[f.Severity]++
		c.ByKind[f.Kind]++
	}
	return c
}
