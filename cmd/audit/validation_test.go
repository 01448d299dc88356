package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAuditArgs(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "auditor_example")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name       string
		options    RunOptionsAudit
		args       []string
		wantFormat string
		wantErr    string
	}{
		{
			// valid: dotnet-auditor audit /path/to/project
			name:       "Valid target path with default format",
			options:    RunOptionsAudit{},
			args:       []string{tmpDir},
			wantFormat: FormatMarkdown,
		},
		{
			// valid: dotnet-auditor audit --format sarif /path/to/project
			name:       "Valid target path with sarif format",
			options:    RunOptionsAudit{ReportFormat: "sarif"},
			args:       []string{tmpDir},
			wantFormat: FormatSarif,
		},
		{
			// fail: dotnet-auditor audit
			name:    "Missing target path",
			options: RunOptionsAudit{},
			args:    []string{},
			wantErr: "a target path must be specified",
		},
		{
			// fail: dotnet-auditor audit a b
			name:    "Multiple target paths",
			options: RunOptionsAudit{},
			args:    []string{tmpDir, tmpDir},
			wantErr: "only one target path may be specified",
		},
		{
			// fail: dotnet-auditor audit /invalid/path
			name:    "Invalid target path",
			options: RunOptionsAudit{},
			args:    []string{filepath.Join(tmpDir, "missing")},
			wantErr: "the target path is not usable",
		},
		{
			// fail: dotnet-auditor audit --format xml /path/to/project
			name:    "Unsupported report format",
			options: RunOptionsAudit{ReportFormat: "xml"},
			args:    []string{tmpDir},
			wantErr: "unsupported report format 'xml'",
		},
		{
			// fail: dotnet-auditor audit -j -1 /path/to/project
			name:    "Negative threads",
			options: RunOptionsAudit{Threads: -1},
			args:    []string{tmpDir},
			wantErr: "the 'threads' flag must be a positive integer",
		},
		{
			// fail: dotnet-auditor audit --watch --format sarif /path/to/project
			name:    "Watch with sarif format",
			options: RunOptionsAudit{Watch: true, ReportFormat: "sarif"},
			args:    []string{tmpDir},
			wantErr: "watch mode only supports the markdown report format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAuditArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantFormat, tt.options.ReportFormat)
				assert.Equal(t, tmpDir, tt.options.TargetPath)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		options RunOptionsAudit
		want    string
	}{
		{
			name:    "Explicit output wins",
			options: RunOptionsAudit{OutputPath: "/tmp/out.md", TargetPath: "/project", ReportFormat: FormatMarkdown},
			want:    "/tmp/out.md",
		},
		{
			name:    "Markdown default inside project",
			options: RunOptionsAudit{TargetPath: "/project", ReportFormat: FormatMarkdown},
			want:    filepath.Join("/project", "AUDIT_REPORT.md"),
		},
		{
			name:    "Sarif default inside project",
			options: RunOptionsAudit{TargetPath: "/project", ReportFormat: FormatSarif},
			want:    filepath.Join("/project", "audit.sarif"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveOutputPath(&tt.options))
		})
	}
}
