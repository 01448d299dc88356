package git

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	crssh "golang.org/x/crypto/ssh"

	"github.com/hashicorp/go-hclog"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/files"
)

// Client wraps go-git with authentication and timeout handling.
type Client struct {
	logger  hclog.Logger
	auth    transport.AuthMethod
	timeout time.Duration
	depth   int
}

// AuthOptions selects how the clone authenticates. All fields optional;
// anonymous HTTPS works without any.
type AuthOptions struct {
	SSHKeyPath     string
	SSHKeyPassword string
	Username       string
	Token          string
}

func NewClient(cfg *config.Config, opts AuthOptions, logger hclog.Logger) (*Client, error) {
	auth, err := setupAuth(opts, logger)
	if err != nil {
		return nil, err
	}
	return &Client{
		logger:  logger,
		auth:    auth,
		timeout: cfg.GitClient.Timeout,
		depth:   cfg.GitClient.Depth,
	}, nil
}

func setupAuth(opts AuthOptions, logger hclog.Logger) (transport.AuthMethod, error) {
	if opts.SSHKeyPath != "" {
		logger.Debug("setting up SSH key authentication")
		keyPath, err := files.ExpandPath(opts.SSHKeyPath)
		if err != nil {
			return nil, err
		}
		auth, err := ssh.NewPublicKeysFromFile("git", keyPath, opts.SSHKeyPassword)
		if err != nil {
			return nil, err
		}
		auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
			HostKeyCallback: crssh.InsecureIgnoreHostKey(),
		}
		return auth, nil
	}

	if opts.Token != "" {
		logger.Debug("setting up HTTP token authentication")
		username := opts.Username
		if username == "" {
			username = "git"
		}
		return &http.BasicAuth{Username: username, Password: opts.Token}, nil
	}

	return nil, nil
}
