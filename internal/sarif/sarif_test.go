package sarif

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/audit"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
)

func sampleReport() *audit.Report {
	list := []findings.Finding{
		findings.New(findings.SynchronousBlocking, "Controllers/UserController.cs", 14,
			"Synchronous blocking call detected: Task.Result blocks the thread", "", ""),
		findings.New(findings.SynchronousBlocking, "Controllers/OrderController.cs", 9,
			"Synchronous blocking call detected: Task.Wait() blocks the thread", "", ""),
		findings.New(findings.SynchronousIO, "Services/ImportService.cs", 3,
			"Synchronous I/O operation detected", "", ""),
		findings.New(findings.DuplicateRepositoryPattern, "Repositories/UserRepository.cs", 5,
			"Repository pattern \"Find\" repeated in 2 repositories: Repositories/OrderRepository.cs:8, Repositories/UserRepository.cs:5", "", ""),
	}
	return &audit.Report{
		RunID:    "run-sarif",
		Findings: list,
		Counts:   findings.Count(list),
	}
}

func TestConvertProducesOneRunWithAllResults(t *testing.T) {
	got, err := Convert(sampleReport())

	require.NoError(t, err)
	require.Len(t, got.Runs, 1)
	run := got.Runs[0]
	assert.Equal(t, toolName, run.Tool.Driver.Name)
	assert.Len(t, run.Results, 4)
	// one rule per kind, not per result
	assert.Len(t, run.Tool.Driver.Rules, 3)
}

func TestConvertMapsSeverityToLevel(t *testing.T) {
	got, err := Convert(sampleReport())

	require.NoError(t, err)
	run := got.Runs[0]
	levels := map[string]string{}
	for _, result := range run.Results {
		levels[*result.RuleID] = *result.Level
	}
	assert.Equal(t, "error", levels["SynchronousBlocking"])
	assert.Equal(t, "warning", levels["SynchronousIO"])
	assert.Equal(t, "note", levels["DuplicateRepositoryPattern"])
}

func TestConvertArtifactLocationsAreSingleFiles(t *testing.T) {
	got, err := Convert(sampleReport())

	require.NoError(t, err)
	for _, result := range got.Runs[0].Results {
		require.Len(t, result.Locations, 1)
		uri := *result.Locations[0].PhysicalLocation.ArtifactLocation.URI
		assert.NotContains(t, uri, ",")
	}
}

func TestConvertEmptyReport(t *testing.T) {
	got, err := Convert(&audit.Report{})

	require.NoError(t, err)
	require.Len(t, got.Runs, 1)
	assert.Empty(t, got.Runs[0].Results)
}

func TestSeverityToLevel(t *testing.T) {
	assert.Equal(t, "error", severityToLevel(findings.SeverityCritical))
	assert.Equal(t, "error", severityToLevel(findings.SeverityHigh))
	assert.Equal(t, "warning", severityToLevel(findings.SeverityMedium))
	assert.Equal(t, "note", severityToLevel(findings.SeverityLow))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.sarif")

	require.NoError(t, WriteFile(sampleReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2.1.0"`)
	assert.Contains(t, string(data), "SynchronousBlocking")
}
