// Package sandbox executes one code example in an isolated, resource-bounded
// environment.
//
// Each run gets a uniquely named working directory under a dedicated temp
// root. The example's source is materialized there (Go snippets are wrapped
// into a runnable program when needed), then the language's recipe command is
// spawned with a minimized explicit environment, a wall-clock timeout, and
// independent stdout/stderr size ceilings. Every exit path, including
// timeouts, spawn failures, and internal faults, resolves to a structured
// ExecutionResult and removes the working directory.
//
// Usage:
//
//	runner := sandbox.NewRunner(logger)
//	result := runner.Run(ctx, example, 10*time.Second)
package sandbox
