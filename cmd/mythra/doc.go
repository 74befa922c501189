// Mythra is a CLI that finds gas optimizations in Solidity sources with LLM
// providers.
//
// Each file is sent to the selected model (OpenAI, Anthropic or Gemini),
// the structured suggestions in the reply are validated, and the results
// are aggregated into one report with deterministic exit codes.
//
// Usage:
//
//	mythra analyze contracts/ -m gpt-4o              # analyze a directory
//	mythra analyze "src/**/*.sol" -m claude-3-opus-20240229 -o report.json
//	mythra models list                               # known models and keys
//	mythra config init                               # write a default config
package main
