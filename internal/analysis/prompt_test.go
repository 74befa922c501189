package analysis

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	src := "pragma solidity ^0.8.0;\ncontract A { uint x; }\n"
	p := BuildPrompt(src, "contracts/A.sol")

	checks := []string{
		"for the file 'contracts/A.sol'",
		"```solidity\n" + src + "\n```",
		`"description"`,
		`"suggested_change"`,
		`"estimated_gas_saved"`,
		`"safety_rationale"`,
		`"start_line"`,
		`"end_line"`,
		"*Standard Optimization:*",
		"*Safe Unchecked Math Example:*",
		"*Advanced Optimization (Assembly Example):*",
		"NEVER suggest using `unchecked` blocks",
		"divide by zero",
	}
	for _, c := range checks {
		if !strings.Contains(p, c) {
			t.Errorf("prompt missing %q", c)
		}
	}
	if !strings.HasSuffix(p, "Respond ONLY with the JSON list of optimizations:\n") {
		t.Error("prompt should end with the output demand")
	}
}

func TestBuildPrompt_NoName(t *testing.T) {
	p := BuildPrompt("contract B {}", "")
	if strings.Contains(p, "for the file") {
		t.Error("empty name must omit the file clause")
	}
	if !strings.HasPrefix(p, "Analyze the following Solidity smart contract code for potential gas optimizations.") {
		t.Errorf("unexpected opening: %q", p[:80])
	}
}

func TestBuildPrompt_Verbatim(t *testing.T) {
	// Template syntax and HTML in the source must pass through untouched.
	src := "// {{.Source}} <b>&amp;</b>\nfunction f() {}"
	p := BuildPrompt(src, "")
	if !strings.Contains(p, src) {
		t.Error("source not embedded verbatim")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	a := BuildPrompt("contract C {}", "C.sol")
	b := BuildPrompt("contract C {}", "C.sol")
	if a != b {
		t.Error("BuildPrompt must be deterministic")
	}
}

func TestSystemPrompt(t *testing.T) {
	if !strings.Contains(SystemPrompt(), "Solidity gas optimization") {
		t.Errorf("SystemPrompt = %q", SystemPrompt())
	}
}
