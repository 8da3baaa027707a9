// Package extractor parses markdown documents into typed, runnable code
// examples.
//
// Extraction is a single forward scan over lines: fenced code blocks opened
// by a line of the form ```<tag> and closed by a bare ``` become examples
// when the tag normalizes to a supported language and the block body is
// non-empty. Section headings are tracked outside fences so every example
// carries the nearest preceding heading. The line-scan strategy is an
// implementation detail behind Extract; callers only see CodeExamples.
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/isdmx/doctest/language"
)

// DefaultHeading is attributed to examples that no heading precedes.
const DefaultHeading = "Introduction"

var (
	fenceOpenRe  = regexp.MustCompile("^```(\\w+)$")
	fenceCloseRe = regexp.MustCompile("^```$")
	headingRe    = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
)

// CodeExample is one fenced code block discovered in a document. Examples
// are created fresh on every extraction pass and never mutated.
type CodeExample struct {
	// ID is derived from the document id and the starting line offset, so
	// re-extraction of unchanged content reproduces it.
	ID           string            `json:"id"`
	DocumentID   string            `json:"documentId"`
	DocumentPath string            `json:"documentPath"`
	Language     language.Language `json:"language"`

	// Code is the verbatim block body, the lines strictly between the
	// fence markers.
	Code string `json:"code"`

	// LineStart and LineEnd are the 1-based line range of the body.
	LineStart int `json:"lineStart"`
	LineEnd   int `json:"lineEnd"`

	// Heading is the nearest preceding section heading.
	Heading string `json:"heading"`

	// ExpectedOutput is the text of the first in-block
	// "<comment> expected: <text>" annotation. Empty means the example is
	// verified by exit code alone.
	ExpectedOutput string `json:"expectedOutput,omitempty"`
}

// HasExpectation reports whether the example carries an output expectation.
func (e CodeExample) HasExpectation() bool {
	return e.ExpectedOutput != ""
}

// Extract scans markdown content and returns its runnable examples in
// document order.
//
// Malformed input degrades silently: a fence still open at end of input is
// discarded, unsupported language tags are dropped, and empty bodies yield
// no example. A heading line inside an open fence does not update the
// tracked heading.
func Extract(content, documentID, documentPath string) []CodeExample {
	var examples []CodeExample

	lines := strings.Split(content, "\n")
	currentHeading := DefaultHeading

	inFence := false
	var fenceLang language.Language
	var bodyStart int // 1-based line of the first body line
	var body []string

	for i, line := range lines {
		lineNo := i + 1

		if inFence {
			if fenceCloseRe.MatchString(line) {
				if fenceLang != "" && len(body) > 0 {
					code := strings.Join(body, "\n")
					examples = append(examples, CodeExample{
						ID:             fmt.Sprintf("%s:%d", documentID, bodyStart),
						DocumentID:     documentID,
						DocumentPath:   documentPath,
						Language:       fenceLang,
						Code:           code,
						LineStart:      bodyStart,
						LineEnd:        lineNo - 1,
						Heading:        currentHeading,
						ExpectedOutput: scanExpectation(fenceLang, body),
					})
				}
				inFence = false
				body = nil
			} else {
				body = append(body, line)
			}
			continue
		}

		if m := fenceOpenRe.FindStringSubmatch(line); m != nil {
			lang, ok := language.Normalize(m[1])
			if ok {
				inFence = true
				fenceLang = lang
				bodyStart = lineNo + 1
				body = nil
			} else {
				// Unsupported tag: skip to the closing fence so its
				// contents cannot reset the heading or open new blocks.
				inFence = true
				fenceLang = ""
				body = nil
			}
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			currentHeading = strings.TrimSpace(m[1])
		}
	}

	// A fence left open at EOF is dropped without error.

	return examples
}

// scanExpectation returns the text of the first expectation annotation in
// the block body, or "" when the block carries none.
func scanExpectation(lang language.Language, body []string) string {
	recipe, ok := language.RecipeFor(lang)
	if !ok {
		return ""
	}
	re := expectationRe(recipe.CommentPrefix)
	for _, line := range body {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// expectationRe builds the per-language "expected: <text>" comment pattern.
func expectationRe(commentPrefix string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + regexp.QuoteMeta(commentPrefix) + `\s*expected:\s*(.+)$`)
}
