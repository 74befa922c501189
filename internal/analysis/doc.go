// Package analysis turns Solidity sources into gas optimization reports.
//
// It builds the model prompt, extracts and validates suggestions from free
// form model output, and runs the per-artifact pipeline concurrently. Each
// artifact moves through a small state machine (see [State]) and settles
// exactly once; the [Report] is assembled only after every task returns.
//
// A fatal provider failure (authentication or bad request) cancels the run
// through the shared context unless [Analyzer.AbortOnFatal] is cleared.
package analysis
