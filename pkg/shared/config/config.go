package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the top-level application configuration loaded from config.yml.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	Scanner    Scanner    `yaml:"scanner"`
	Analyzer   Analyzer   `yaml:"analyzer"`
	GitClient  GitClient  `yaml:"git_client"`
	HttpClient HttpClient `yaml:"http_client"`
	Review     Review     `yaml:"review"`
}

type Logger struct {
	Level string `yaml:"level"`
}

// Scanner controls which files enter the pipeline.
type Scanner struct {
	IncludeExtensions []string `yaml:"include_extensions"`
	ExcludedDirs      []string `yaml:"excluded_dirs"`
}

// Analyzer holds the detection thresholds. The sequential proximity window is
// deliberately a plain line distance, not a lexical scope.
type Analyzer struct {
	LargeFileThreshold  int `yaml:"large_file_threshold"`
	SequentialProximity int `yaml:"sequential_proximity"`
	SnippetContext      int `yaml:"snippet_context"`
	Threads             int `yaml:"threads"`
}

type GitClient struct {
	Timeout time.Duration `yaml:"timeout"`
	Depth   int           `yaml:"depth"`
}

type HttpClient struct {
	Debug            bool          `yaml:"debug"`
	RetryCount       int           `yaml:"retry_count"`
	RetryWaitTime    time.Duration `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration `yaml:"retry_max_wait_time"`
	Timeout          time.Duration `yaml:"timeout"`
}

// Review describes the endpoint the upload command posts reports to.
type Review struct {
	URL      string `yaml:"url"`
	TokenEnv string `yaml:"token_env"`
}

const (
	DefaultLargeFileThreshold  = 300
	DefaultSequentialProximity = 20
	DefaultSnippetContext      = 2
	DefaultThreads             = 4
)

// DefaultExcludedDirs are build-output and tooling directories never scanned.
var DefaultExcludedDirs = []string{
	"bin", "obj", "packages", "node_modules", ".git", ".vs",
	"TestResults", "Debug", "Release", ".vscode", ".idea",
}

// DefaultIncludeExtensions are the file types the scanner picks up.
var DefaultIncludeExtensions = []string{".cs", ".cshtml"}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the config file and fills in defaults. A missing file is
// not an error: the tool runs with defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(configPath); err == nil {
		if err := LoadYAML(configPath, config); err != nil {
			return nil, err
		}
	}

	applyDefaults(config)
	return config, nil
}

func applyDefaults(c *Config) {
	if c.Analyzer.LargeFileThreshold == 0 {
		c.Analyzer.LargeFileThreshold = DefaultLargeFileThreshold
	}
	if c.Analyzer.SequentialProximity == 0 {
		c.Analyzer.SequentialProximity = DefaultSequentialProximity
	}
	if c.Analyzer.SnippetContext == 0 {
		c.Analyzer.SnippetContext = DefaultSnippetContext
	}
	if c.Analyzer.Threads == 0 {
		c.Analyzer.Threads = DefaultThreads
	}
	if len(c.Scanner.ExcludedDirs) == 0 {
		c.Scanner.ExcludedDirs = DefaultExcludedDirs
	}
	if len(c.Scanner.IncludeExtensions) == 0 {
		c.Scanner.IncludeExtensions = DefaultIncludeExtensions
	}
	if c.GitClient.Timeout == 0 {
		c.GitClient.Timeout = 5 * time.Minute
	}
	if c.HttpClient.RetryCount == 0 {
		c.HttpClient.RetryCount = 5
	}
	if c.HttpClient.RetryWaitTime == 0 {
		c.HttpClient.RetryWaitTime = 1 * time.Second
	}
	if c.HttpClient.RetryMaxWaitTime == 0 {
		c.HttpClient.RetryMaxWaitTime = 2 * time.Second
	}
	if c.HttpClient.Timeout == 0 {
		c.HttpClient.Timeout = 10 * time.Second
	}
}
