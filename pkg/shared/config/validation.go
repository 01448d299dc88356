package config

import "fmt"

// ValidateConfig rejects configurations the pipeline cannot run with.
func ValidateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Analyzer.LargeFileThreshold < 1 {
		return fmt.Errorf("analyzer.large_file_threshold must be positive, got %d", c.Analyzer.LargeFileThreshold)
	}
	if c.Analyzer.SequentialProximity < 1 {
		return fmt.Errorf("analyzer.sequential_proximity must be positive, got %d", c.Analyzer.SequentialProximity)
	}
	if c.Analyzer.SnippetContext < 0 {
		return fmt.Errorf("analyzer.snippet_context must not be negative, got %d", c.Analyzer.SnippetContext)
	}
	if c.Analyzer.Threads < 1 {
		return fmt.Errorf("analyzer.threads must be positive, got %d", c.Analyzer.Threads)
	}
	return nil
}
