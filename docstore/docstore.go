// Package docstore defines the engine's external collaborators for document
// content and per-repository test configuration, plus filesystem-backed
// implementations of both.
//
// Document storage proper (create/update, version history) lives outside
// the engine; the interfaces here are the read-only surface the suite
// orchestrator consumes.
package docstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one markdown document's raw content with provenance.
type Document struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// DocTestConfig is the per-repository documentation-test configuration.
type DocTestConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled"`
	Languages      []string `json:"languages" yaml:"languages"`
	ExcludePaths   []string `json:"excludePaths" yaml:"exclude_paths"`
	TimeoutSec     int      `json:"timeout" yaml:"timeout"`
	RunOnPR        bool     `json:"runOnPR" yaml:"run_on_pr"`
	CreateCheckRun bool     `json:"createCheckRun" yaml:"create_check_run"`
}

// DefaultConfig is the configuration assumed when a repository carries none.
func DefaultConfig() DocTestConfig {
	return DocTestConfig{
		Enabled:        true,
		TimeoutSec:     10,
		CreateCheckRun: true,
	}
}

// DocumentStore lists and reads a repository's documents.
type DocumentStore interface {
	// ListDocuments returns all documents of a repository.
	ListDocuments(ctx context.Context, repositoryID string) ([]Document, error)

	// GetDocument returns a single document by id.
	GetDocument(ctx context.Context, repositoryID, documentID string) (Document, error)
}

// ConfigStore reads a repository's DocTestConfig.
type ConfigStore interface {
	Load(ctx context.Context, repositoryID string) (DocTestConfig, error)
}

// DirStore is a DocumentStore over a directory tree: each repository is a
// subdirectory of the root and each markdown file is a document whose id is
// its path relative to the repository.
type DirStore struct {
	root string
}

// NewDirStore creates a DirStore rooted at the given directory.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// ListDocuments walks the repository directory and returns its markdown
// documents sorted by path.
func (s *DirStore) ListDocuments(ctx context.Context, repositoryID string) ([]Document, error) {
	repoDir, err := s.repoDir(repositoryID)
	if err != nil {
		return nil, err
	}

	var docs []Document
	walkErr := filepath.WalkDir(repoDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(repoDir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path) //nolint:gosec // Path is under the store root
		if err != nil {
			return err
		}
		docs = append(docs, Document{
			ID:      filepath.ToSlash(rel),
			Path:    filepath.ToSlash(rel),
			Content: string(content),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("list documents for %s: %w", repositoryID, walkErr)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// GetDocument reads one document by its repository-relative id.
func (s *DirStore) GetDocument(_ context.Context, repositoryID, documentID string) (Document, error) {
	repoDir, err := s.repoDir(repositoryID)
	if err != nil {
		return Document{}, err
	}
	path, err := securePath(repoDir, documentID)
	if err != nil {
		return Document{}, err
	}
	content, err := os.ReadFile(path) //nolint:gosec // Path validated by securePath
	if err != nil {
		return Document{}, fmt.Errorf("read document %s/%s: %w", repositoryID, documentID, err)
	}
	return Document{ID: documentID, Path: documentID, Content: string(content)}, nil
}

func (s *DirStore) repoDir(repositoryID string) (string, error) {
	return securePath(s.root, repositoryID)
}

// securePath joins a relative name under base and rejects traversal
// outside of it.
func securePath(base, name string) (string, error) {
	joined := filepath.Join(base, filepath.FromSlash(name))
	cleanBase := filepath.Clean(base)
	if joined != cleanBase && !strings.HasPrefix(joined, cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes store root: %s", name)
	}
	return joined, nil
}

// ConfigFileName is the per-repository configuration file read by
// YAMLConfigStore.
const ConfigFileName = ".doctest.yml"

// YAMLConfigStore reads DocTestConfig from a .doctest.yml file at the root
// of each repository directory. Repositories without one get DefaultConfig.
type YAMLConfigStore struct {
	root string
}

// NewYAMLConfigStore creates a YAMLConfigStore over the same root layout as
// DirStore.
func NewYAMLConfigStore(root string) *YAMLConfigStore {
	return &YAMLConfigStore{root: root}
}

// Load reads and decodes the repository's configuration file.
func (s *YAMLConfigStore) Load(_ context.Context, repositoryID string) (DocTestConfig, error) {
	repoDir, err := securePath(s.root, repositoryID)
	if err != nil {
		return DocTestConfig{}, err
	}

	data, err := os.ReadFile(filepath.Join(repoDir, ConfigFileName)) //nolint:gosec // Path validated by securePath
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DocTestConfig{}, fmt.Errorf("read config for %s: %w", repositoryID, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DocTestConfig{}, fmt.Errorf("parse config for %s: %w", repositoryID, err)
	}
	return cfg, nil
}
