package review

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
)

// Client posts audit reports to a review service.
type Client struct {
	httpc *resty.Client
	url   string
}

func New(cfg config.HttpClient, url string, token string) Client {
	httpc := resty.New()
	httpc.SetBaseURL(url)
	httpc.SetDebug(cfg.Debug)
	httpc.SetRetryCount(cfg.RetryCount)
	httpc.SetRetryWaitTime(cfg.RetryWaitTime)
	httpc.SetRetryMaxWaitTime(cfg.RetryMaxWaitTime)
	httpc.SetTimeout(cfg.Timeout)
	if token != "" {
		httpc.SetHeader("Authorization", fmt.Sprintf("Token %s", token))
	}

	return Client{
		httpc: httpc,
		url:   url,
	}
}

type Submission struct {
	ID      int    `json:"id"`
	Project string `json:"project"`
}

// UploadReport posts a rendered report file together with its project name
// and the format the file carries ("markdown" or "sarif").
func (c Client) UploadReport(projectName string, reportPath string, format string) (*Submission, error) {
	var submission Submission
	resp, err := c.httpc.R().
		SetFiles(map[string]string{
			"file": reportPath,
		}).
		SetFormData(map[string]string{
			"project":      projectName,
			"format":       format,
			"submitted_at": time.Now().Format("2006-01-02"),
		}).
		SetResult(&submission).
		Post("/api/v1/audit-reports/")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("%d on uploading report for project '%s'", resp.StatusCode(), projectName)
	}
	return &submission, nil
}

// Ping verifies the review service is reachable before uploading.
func (c Client) Ping() error {
	resp, err := c.httpc.R().Get("/api/v1/health/")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%d on health check of '%s'", resp.StatusCode(), c.url)
	}
	return nil
}
