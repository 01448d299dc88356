package review

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
)

func testHTTPConfig() config.HttpClient {
	return config.HttpClient{RetryCount: 1}
}

func TestUploadReport(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "AUDIT_REPORT.md")
	require.NoError(t, os.WriteFile(reportPath, []byte("# report"), 0o644))

	var gotAuth, gotProject, gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		gotAuth = r.Header.Get("Authorization")
		gotProject = r.FormValue("project")
		gotFormat = r.FormValue("format")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 7, "project": "legacy-shop"}`))
	}))
	defer server.Close()

	client := New(testHTTPConfig(), server.URL, "secret-token")
	submission, err := client.UploadReport("legacy-shop", reportPath, "markdown")

	require.NoError(t, err)
	assert.Equal(t, 7, submission.ID)
	assert.Equal(t, "legacy-shop", submission.Project)
	assert.Equal(t, "Token secret-token", gotAuth)
	assert.Equal(t, "legacy-shop", gotProject)
	assert.Equal(t, "markdown", gotFormat)
}

func TestUploadReportRejectedStatus(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "AUDIT_REPORT.md")
	require.NoError(t, os.WriteFile(reportPath, []byte("# report"), 0o644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := New(testHTTPConfig(), server.URL, "")
	_, err := client.UploadReport("legacy-shop", reportPath, "markdown")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/health/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.NoError(t, New(testHTTPConfig(), server.URL, "").Ping())
}
