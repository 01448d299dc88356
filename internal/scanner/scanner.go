package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/errors"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/files"
)

// ScannedFile is the immutable input record for one audit run. Path is
// relative to the project root, slash-separated.
type ScannedFile struct {
	Path      string
	Lines     []string
	LineCount int
}

// Content joins the file lines back into a single string.
func (f ScannedFile) Content() string {
	return strings.Join(f.Lines, "\n")
}

// Scanner walks a project tree and produces ScannedFile records.
type Scanner struct {
	root     string
	include  map[string]bool
	excluded map[string]bool
	logger   hclog.Logger
}

func New(root string, cfg *config.Config, logger hclog.Logger) *Scanner {
	include := make(map[string]bool, len(cfg.Scanner.IncludeExtensions))
	for _, ext := range cfg.Scanner.IncludeExtensions {
		include[strings.ToLower(ext)] = true
	}
	excluded := make(map[string]bool, len(cfg.Scanner.ExcludedDirs))
	for _, dir := range cfg.Scanner.ExcludedDirs {
		excluded[dir] = true
	}
	return &Scanner{
		root:     root,
		include:  include,
		excluded: excluded,
		logger:   logger,
	}
}

// Scan walks the tree and returns the discovered files in deterministic
// (path-sorted) order. An unusable root is a NoInputError; an empty but valid
// tree is a clean empty result. Unreadable or binary files are skipped.
func (s *Scanner) Scan() ([]ScannedFile, error) {
	if err := files.ValidateDir(s.root); err != nil {
		return nil, errors.NewNoInputError(s.root, err.Error())
	}

	var scanned []ScannedFile
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable directory entries are skipped, never fatal
			return nil
		}
		if d.IsDir() {
			if path != s.root && s.excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.include[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		lines, ok := files.ReadTextLines(path)
		if !ok {
			s.logger.Debug("skipping unreadable or binary file", "path", path)
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil
		}
		scanned = append(scanned, ScannedFile{
			Path:      filepath.ToSlash(rel),
			Lines:     lines,
			LineCount: len(lines),
		})
		return nil
	})
	if err != nil {
		return nil, errors.NewNoInputError(s.root, err.Error())
	}

	sort.Slice(scanned, func(i, j int) bool { return scanned[i].Path < scanned[j].Path })
	s.logger.Debug("scan finished", "root", s.root, "files", len(scanned))
	return scanned, nil
}
