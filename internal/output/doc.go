// Package output renders analysis reports for display or machine consumption.
//
// Two formats are supported:
//   - text: human-readable terminal summary (default)
//   - json: the exported report document
//
// Use [GetWriter] to obtain a [Writer] for a given format string, or
// [WriteReport] to render directly. [WriteFile] persists the JSON document.
package output
