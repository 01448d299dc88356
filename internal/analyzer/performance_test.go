package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
)

func testOptions() Options {
	return Options{
		LargeFileThreshold:  300,
		SequentialProximity: 20,
		SnippetContext:      2,
	}
}

func fileOf(path string, lines ...string) scanner.ScannedFile {
	return scanner.ScannedFile{Path: path, Lines: lines, LineCount: len(lines)}
}

func kindsOf(list []findings.Finding) []findings.Kind {
	var out []findings.Kind
	for _, f := range list {
		out = append(out, f.Kind)
	}
	return out
}

func TestLargeFileDetection(t *testing.T) {
	lines := make([]string, 301)
	for i := range lines {
		lines[i] = fmt.Sprintf("// line %d", i+1)
	}
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(scanner.ScannedFile{Path: "Services/BigService.cs", Lines: lines, LineCount: 301}, classifier.Classification{})

	require.Len(t, got, 1)
	assert.Equal(t, findings.LargeFile, got[0].Kind)
	assert.Equal(t, findings.SeverityHigh, got[0].Severity)
	assert.Equal(t, 1, got[0].StartLine)
	assert.Equal(t, 301, got[0].EndLine)
	assert.Contains(t, got[0].Description, "301 lines")
}

func TestLargeFileThresholdIsExclusive(t *testing.T) {
	lines := make([]string, 300)
	for i := range lines {
		lines[i] = "// filler"
	}
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(scanner.ScannedFile{Path: "a.cs", Lines: lines, LineCount: 300}, classifier.Classification{})

	assert.Empty(t, got)
}

func TestDatabaseInLoop(t *testing.T) {
	file := fileOf("Services/OrderService.cs",
		"public void Process(List<Order> orders)",
		"{",
		"    while (hasWork)",
		"    {",
		"        _db.SaveChanges();",
		"    }",
		"}",
	)
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	require.Len(t, got, 1)
	assert.Equal(t, findings.DatabaseInLoop, got[0].Kind)
	assert.Equal(t, findings.SeverityCritical, got[0].Severity)
	assert.Equal(t, 5, got[0].StartLine)
	assert.Contains(t, got[0].Description, "loop started at line 3")
}

func TestNPlusOneQueryWinsWhenLoopVarReferenced(t *testing.T) {
	file := fileOf("Services/OrderService.cs",
		"foreach (var user in users)",
		"{",
		"    var orders = _db.Orders.FirstOrDefault(o => o.UserId == user.Id);",
		"}",
	)
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	require.Len(t, got, 1)
	assert.Equal(t, findings.NPlusOneQuery, got[0].Kind)
	assert.Equal(t, 3, got[0].StartLine)
}

func TestLoopVarMustBeWholeToken(t *testing.T) {
	// "username" contains "user" but is not the loop variable
	file := fileOf("Services/OrderService.cs",
		"foreach (var user in users)",
		"{",
		"    var all = _db.Orders.ToList();",
		"    Log(username);",
		"}",
	)
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	require.Len(t, got, 1)
	assert.Equal(t, findings.DatabaseInLoop, got[0].Kind)
}

func TestNestedLoopInnerVarCounts(t *testing.T) {
	file := fileOf("Services/ReportService.cs",
		"foreach (var customer in customers)",
		"{",
		"    foreach (var order in customer.Orders)",
		"    {",
		"        var detail = _db.Details.FirstOrDefault(d => d.OrderId == order.Id);",
		"    }",
		"}",
	)
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	require.Len(t, got, 1)
	assert.Equal(t, findings.NPlusOneQuery, got[0].Kind)
	assert.Equal(t, 5, got[0].StartLine)
}

func TestDatabaseCallOutsideLoopIgnored(t *testing.T) {
	file := fileOf("Services/OrderService.cs",
		"foreach (var user in users)",
		"{",
		"    total++;",
		"}",
		"_db.SaveChanges();",
	)
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	assert.Empty(t, got)
}

func TestSingleLineLoopDoesNotLeakIntoFollowingLines(t *testing.T) {
	file := fileOf("Services/SumService.cs",
		"public int Sum(List<int> items)",
		"{",
		"    var total = 0;",
		"    foreach (var x in items) { total += x; }",
		"    var users = _db.Users.ToList();",
		"    return total;",
		"}",
	)
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	assert.Empty(t, got)
}

func TestLoopAfterSingleLineLoopStillDetected(t *testing.T) {
	file := fileOf("Services/SumService.cs",
		"foreach (var x in items) { total += x; }",
		"while (hasWork)",
		"{",
		"    _db.SaveChanges();",
		"}",
	)
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	require.Len(t, got, 1)
	assert.Equal(t, findings.DatabaseInLoop, got[0].Kind)
	assert.Contains(t, got[0].Description, "loop started at line 2")
}

func TestNonCSharpFilesSkipLoopAnalysis(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "@foreach (var item in Model.Items) { var x = _db.Items.ToList(); }"
	}
	file := scanner.ScannedFile{Path: "Views/Index.cshtml", Lines: lines, LineCount: 10}
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	assert.Empty(t, got)
}

func TestMultipleDbCallsInOneLoopEmitOnePerSite(t *testing.T) {
	file := fileOf("Services/SyncService.cs",
		"while (reader.HasRows)",
		"{",
		"    _db.SaveChanges();",
		"    var last = _db.Entries.ToList();",
		"}",
	)
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	assert.Equal(t, []findings.Kind{findings.DatabaseInLoop, findings.DatabaseInLoop}, kindsOf(got))
	assert.Equal(t, 3, got[0].StartLine)
	assert.Equal(t, 4, got[1].StartLine)
}

func TestSnippetCarriesContext(t *testing.T) {
	file := fileOf("Services/OrderService.cs",
		"// before context",
		"while (true)",
		"{",
		"    _db.SaveChanges();",
		"}",
	)
	d := NewPerformanceDetector(testOptions())

	got := d.Analyze(file, classifier.Classification{})

	require.Len(t, got, 1)
	assert.True(t, strings.Contains(got[0].Snippet, "_db.SaveChanges();"))
	assert.True(t, strings.Contains(got[0].Snippet, "while (true)"))
}
