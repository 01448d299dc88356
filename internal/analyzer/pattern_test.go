package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
)

func TestNormalizeSignature(t *testing.T) {
	tests := []struct {
		name        string
		returnShape string
		method      string
		params      string
		want        string
	}{
		{"no parameters", "void", "Refresh", "", "void Refresh/0"},
		{"single parameter", "User", "GetById", "int id", "User GetById/1"},
		{"multiple parameters", "Task<User>", "Find", "string name, int age", "Task<User> Find/2"},
		{"whitespace in shape", "List<User >", "GetAll", "", "List<User> GetAll/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeSignature(tt.returnShape, tt.method, tt.params))
		})
	}
}

func TestDuplicateSignatureAcrossFiles(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()

	d.Collect(fileOf("Services/UserService.cs",
		"public User GetById(int id)",
	), classifier.Classification{}, idx)
	d.Collect(fileOf("Services/OrderService.cs",
		"public User GetById(int id)",
	), classifier.Classification{}, idx)

	got := d.Report(idx)

	require.Len(t, got, 1)
	assert.Equal(t, findings.DuplicateSignature, got[0].Kind)
	// anchored at the first occurrence; all sites live in the description
	assert.Equal(t, "Services/UserService.cs", got[0].FilePath)
	assert.Equal(t, 1, got[0].StartLine)
	assert.Contains(t, got[0].Description, `"User GetById/1"`)
	assert.Contains(t, got[0].Description, "Services/OrderService.cs:1")
	assert.Contains(t, got[0].Description, "Services/UserService.cs:1")
}

func TestDuplicateWithinOneFileIgnored(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()

	d.Collect(fileOf("Services/UserService.cs",
		"public User GetById(int id)",
		"public User GetById(int key)",
	), classifier.Classification{}, idx)

	assert.Empty(t, d.Report(idx))
}

func TestIgnoredMethodNames(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()

	d.Collect(fileOf("a.cs", "public void Main(string[] args)"), classifier.Classification{}, idx)
	d.Collect(fileOf("b.cs", "public void Main(string[] args)"), classifier.Classification{}, idx)

	assert.Empty(t, d.Report(idx))
}

func TestDuplicatesOrderedByOccurrenceCountThenSignature(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()

	d.Collect(fileOf("a.cs",
		"public void Alpha(int x)",
		"public void Beta(int x)",
	), classifier.Classification{}, idx)
	d.Collect(fileOf("b.cs",
		"public void Alpha(int x)",
		"public void Beta(int x)",
	), classifier.Classification{}, idx)
	d.Collect(fileOf("c.cs",
		"public void Beta(int x)",
	), classifier.Classification{}, idx)

	got := d.Report(idx)

	require.Len(t, got, 2)
	assert.Contains(t, got[0].Description, `"void Beta/1"`)
	assert.Contains(t, got[1].Description, `"void Alpha/1"`)
}

func TestRepositoryShapesOnlyCollectedForRepositories(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()
	repoClass := classifier.Classification{Role: classifier.RoleRepository}

	d.Collect(fileOf("Repositories/UserRepository.cs",
		"return _context.Find(id);",
	), repoClass, idx)
	d.Collect(fileOf("Repositories/OrderRepository.cs",
		"return db.Find(id);",
	), repoClass, idx)
	d.Collect(fileOf("Services/UserService.cs",
		"return _context.Find(id);",
	), classifier.Classification{Role: classifier.RoleService}, idx)

	got := d.Report(idx)

	require.Len(t, got, 1)
	assert.Equal(t, findings.DuplicateRepositoryPattern, got[0].Kind)
	assert.Equal(t, findings.SeverityLow, got[0].Severity)
	assert.Contains(t, got[0].Description, `"Find"`)
	assert.NotContains(t, got[0].Description, "Services/UserService.cs")
}

func TestMergeCombinesPartialsInOrder(t *testing.T) {
	a := NewPartialIndex()
	a.MethodSignatures["void X/0"] = []Occurrence{{File: "a.cs", Line: 1}}
	b := NewPartialIndex()
	b.MethodSignatures["void X/0"] = []Occurrence{{File: "b.cs", Line: 2}}
	b.Findings = []findings.Finding{findings.New(findings.PollingOpportunity, "b.cs", 5, "", "", "")}

	merged := Merge(a, nil, b)

	assert.Equal(t, []Occurrence{{File: "a.cs", Line: 1}, {File: "b.cs", Line: 2}}, merged.MethodSignatures["void X/0"])
	require.Len(t, merged.Findings, 1)
	assert.Equal(t, findings.PollingOpportunity, merged.Findings[0].Kind)
}

func TestDetectPollingLoops(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()

	d.Collect(fileOf("Services/StatusService.cs",
		"while (!done)",
		"{",
		"    var status = CheckStatus(jobId);",
		"    Thread.Sleep(5000);",
		"}",
	), classifier.Classification{}, idx)

	require.Len(t, idx.Findings, 1)
	assert.Equal(t, findings.PollingOpportunity, idx.Findings[0].Kind)
	assert.Equal(t, 1, idx.Findings[0].StartLine)
}

func TestSleepWithoutStatusCheckIsNotPolling(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()

	d.Collect(fileOf("a.cs",
		"while (!done)",
		"{",
		"    Thread.Sleep(5000);",
		"}",
	), classifier.Classification{}, idx)

	assert.Empty(t, idx.Findings)
}

func TestSingleLineLoopIsNotAPollingBody(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()

	d.Collect(fileOf("Services/StatusService.cs",
		"foreach (var job in jobs) { Touch(job); }",
		"Thread.Sleep(5000);",
		"var status = CheckStatus(jobId);",
	), classifier.Classification{}, idx)

	assert.Empty(t, idx.Findings)
}

func TestDetectQueueCandidates(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()

	d.Collect(fileOf("Controllers/ReportController.cs",
		"public ActionResult Generate(int id)",
		"{",
		"    var report = GenerateReport(id).Result;",
		"    return File(report, \"application/pdf\");",
		"}",
	), classifier.Classification{Role: classifier.RoleController}, idx)

	require.Len(t, idx.Findings, 1)
	assert.Equal(t, findings.QueueCandidate, idx.Findings[0].Kind)
	assert.Contains(t, idx.Findings[0].Description, `"GenerateReport"`)
}

func TestQueueCandidatesOnlyInControllers(t *testing.T) {
	d := NewPatternDetector(testOptions())
	idx := NewPartialIndex()

	d.Collect(fileOf("Services/ReportService.cs",
		"var report = GenerateReport(id).Result;",
	), classifier.Classification{Role: classifier.RoleService}, idx)

	assert.Empty(t, idx.Findings)
}
