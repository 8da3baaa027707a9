package suite

import (
	"context"
	"fmt"

	"github.com/isdmx/doctest/extractor"
)

// CoverageStats summarizes how much of a repository's documentation carries
// executable examples.
type CoverageStats struct {
	TotalDocuments        int     `json:"totalDocuments"`
	DocumentsWithExamples int     `json:"documentsWithExamples"`
	TotalExamples         int     `json:"totalExamples"`
	CoveragePercent       float64 `json:"coveragePercent"`
}

// CoverageStats makes a read-only extraction pass over every document in
// the repository. Nothing is executed and no configuration gate applies.
func (e *Engine) CoverageStats(ctx context.Context, repositoryID string) (*CoverageStats, error) {
	docs, err := e.docs.ListDocuments(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	stats := &CoverageStats{TotalDocuments: len(docs)}
	for _, doc := range docs {
		examples := extractor.Extract(doc.Content, doc.ID, doc.Path)
		stats.TotalExamples += len(examples)
		if len(examples) > 0 {
			stats.DocumentsWithExamples++
		}
	}
	if stats.TotalDocuments > 0 {
		stats.CoveragePercent = 100 * float64(stats.DocumentsWithExamples) / float64(stats.TotalDocuments)
	}
	return stats, nil
}
