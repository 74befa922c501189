package redact

import "regexp"

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for secrets that end up in contract
// sources, deploy scripts and tests. None of them spans a newline, so line
// numbers survive redaction.
var secretPatterns = []*regexp.Regexp{
	// Hex private keys assigned to key-like names
	regexp.MustCompile(`(?i)(private[_-]?key|priv[_-]?key|deployer[_-]?key|signer[_-]?key|pk)[ \t]*[:=][ \t]*["']?(0x)?[0-9a-f]{64}["']?`),
	// Hex private keys passed as uint256 literals, e.g. vm.addr(0x...)
	regexp.MustCompile(`(?i)vm\.(addr|sign|broadcast|startBroadcast|rememberKey)\([ \t]*0x[0-9a-f]{64}`),
	// BIP-39 mnemonics in string assignments
	regexp.MustCompile(`(?i)(mnemonic|seed[_ ]?phrase)[ \t]*[:=][ \t]*["']([a-z]+ +){11,23}[a-z]+["']`),
	// RPC endpoints with embedded project keys
	regexp.MustCompile(`https?://[A-Za-z0-9.-]*(infura\.io/v3|alchemy\.com/v2|alchemyapi\.io/v2|quiknode\.pro)/[A-Za-z0-9_-]{16,}`),
	// Generic API keys (explorer keys and the like)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)[ \t]*[:=][ \t]*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)[ \t]*[:=][ \t]*["']([^"'\n]{8,})["']`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN[ \t]+(RSA[ \t]+|EC[ \t]+)?PRIVATE KEY-----`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	// OpenAI API keys
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
}

// Secrets replaces detected secrets in text with [REDACTED] and reports how
// many replacements were made.
func Secrets(text string) (string, int) {
	n := 0
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllStringFunc(result, func(string) string {
			n++
			return placeholder
		})
	}
	return result, n
}
