// Package redact removes secrets from Solidity sources before they are sent
// to an LLM provider.
//
// Detection uses regex heuristics covering secret shapes common in contract
// repositories: hex private keys in deploy scripts and cheatcode calls,
// mnemonics, RPC URLs carrying project keys, explorer API keys, and
// provider tokens (Anthropic, OpenAI, GitHub, AWS). Matches never span a
// newline, so line numbers reported against the redacted text still match
// the file on disk.
package redact
