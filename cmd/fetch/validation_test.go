package fetch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFetchArgs(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "auditor_example")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	sshKey := filepath.Join(tmpDir, "id_ed25519")
	require.NoError(t, os.WriteFile(sshKey, []byte("key material"), 0o600))

	tests := []struct {
		name    string
		options RunOptionsFetch
		args    []string
		wantErr string
	}{
		{
			// valid: dotnet-auditor fetch --output /tmp/project https://github.com/org/repo
			name:    "Valid URL and output",
			options: RunOptionsFetch{TargetFolder: tmpDir},
			args:    []string{"https://github.com/org/repo"},
		},
		{
			// valid: dotnet-auditor fetch --ssh-key KEY --output /tmp/project git@github.com:org/repo.git
			name:    "Valid ssh key",
			options: RunOptionsFetch{TargetFolder: tmpDir, SSHKey: sshKey},
			args:    []string{"git@github.com:org/repo.git"},
		},
		{
			// fail: dotnet-auditor fetch --output /tmp/project
			name:    "Missing URL",
			options: RunOptionsFetch{TargetFolder: tmpDir},
			args:    []string{},
			wantErr: "a repository URL must be specified",
		},
		{
			// fail: dotnet-auditor fetch --output /tmp/project url1 url2
			name:    "Multiple URLs",
			options: RunOptionsFetch{TargetFolder: tmpDir},
			args:    []string{"https://a", "https://b"},
			wantErr: "only one repository URL may be specified",
		},
		{
			// fail: dotnet-auditor fetch https://github.com/org/repo
			name:    "Missing output flag",
			options: RunOptionsFetch{},
			args:    []string{"https://github.com/org/repo"},
			wantErr: "the 'output' flag must be specified",
		},
		{
			// fail: dotnet-auditor fetch --ssh-key /missing --output /tmp/project URL
			name:    "Invalid ssh key path",
			options: RunOptionsFetch{TargetFolder: tmpDir, SSHKey: filepath.Join(tmpDir, "missing_key")},
			args:    []string{"https://github.com/org/repo"},
			wantErr: "the ssh key is not usable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFetchArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.Equal(t, tt.args[0], tt.options.CloneURL)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
