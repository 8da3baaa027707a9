// Package mcpserver exposes the documentation test engine over the Model
// Context Protocol.
//
// The server registers two tools: run_doc_tests, which drives a suite run
// for a repository (or a single document) and returns the structured suite
// plus a markdown check-run summary, and get_doc_coverage, which reports
// how much of a repository's documentation carries executable examples.
package mcpserver
