package rules

// Rule is one declarative pattern rule. Pattern is compiled
// case-insensitive and multi-line at engine construction.
type Rule struct {
	// ID is the unique identifier for this rule.
	ID string
	// Pattern is the regex applied to the diff text.
	Pattern string
	// Category is the taxonomy label attached to findings.
	Category string
	// Description explains what the rule detects. Severity is derived
	// from this text for deep-tier rules.
	Description string
}

// FastRules returns the fast-tier rule table: a small fixed list
// covering hardcoded-secret, naive SQL-injection, and XSS shapes.
// Fast-tier findings are uniformly HIGH.
func FastRules() []Rule {
	return []Rule{
		// Hardcoded secrets
		{
			ID:          "hardcoded-password",
			Pattern:     `password\s*=\s*["'][^"']+["']`,
			Category:    "Hardcoded password",
			Description: "Hardcoded password",
		},
		{
			ID:          "hardcoded-api-key",
			Pattern:     `api[_-]?key\s*=\s*["'][^"']+["']`,
			Category:    "Hardcoded API key",
			Description: "Hardcoded API key",
		},
		{
			ID:          "hardcoded-secret",
			Pattern:     `secret\s*=\s*["'][^"']+["']`,
			Category:    "Hardcoded secret",
			Description: "Hardcoded secret",
		},
		{
			ID:          "hardcoded-token",
			Pattern:     `token\s*=\s*["'][^"']+["']`,
			Category:    "Hardcoded token",
			Description: "Hardcoded token",
		},
		{
			ID:          "aws-access-key",
			Pattern:     `AKIA[0-9A-Z]{16}`,
			Category:    "AWS Access Key",
			Description: "AWS Access Key",
		},

		// SQL injection
		{
			ID:          "sql-injection-execute",
			Pattern:     `execute\s*\(\s*["'].*\+.*["']`,
			Category:    "Potential SQL injection",
			Description: "Potential SQL injection",
		},
		{
			ID:          "sql-injection-query",
			Pattern:     `query\s*\(\s*["'].*\+.*["']`,
			Category:    "Potential SQL injection",
			Description: "Potential SQL injection",
		},
		{
			ID:          "sql-injection-format",
			Pattern:     `\.format\s*\(.*\).*execute`,
			Category:    "SQL injection via format",
			Description: "SQL injection via format",
		},

		// XSS
		{
			ID:          "xss-innerhtml",
			Pattern:     `innerHTML\s*=`,
			Category:    "Potential XSS via innerHTML",
			Description: "Potential XSS via innerHTML",
		},
		{
			ID:          "xss-react",
			Pattern:     `dangerouslySetInnerHTML`,
			Category:    "Potential XSS in React",
			Description: "Potential XSS in React",
		},
		{
			ID:          "dangerous-eval",
			Pattern:     `eval\s*\(`,
			Category:    "Dangerous eval usage",
			Description: "Dangerous eval usage",
		},
	}
}

// DeepRules returns the deep-tier rule table, grouped into ten fixed
// categories mirroring the OWASP Top 10 plus a cross-cutting XSS group.
// Severity is derived per rule: descriptions containing "injection",
// "hardcoded", or "exposed" are CRITICAL, everything else HIGH.
func DeepRules() []Rule {
	return []Rule{
		// 1. Broken Access Control
		{
			ID:          "route-mixed-methods",
			Pattern:     `@app\.route.*methods=\[.*GET.*POST`,
			Category:    "Access Control",
			Description: "Access Control: Missing access control - GET and POST on same route",
		},
		{
			ID:          "hardcoded-admin-check",
			Pattern:     `if\s+user\.is_admin\s*==\s*True`,
			Category:    "Access Control",
			Description: "Access Control: Hardcoded admin check - use role-based access",
		},

		// 2. Cryptographic Failures
		{
			ID:          "crypto-hardcoded-password",
			Pattern:     `password\s*=\s*["'][^"']+["']`,
			Category:    "Cryptographic Failure",
			Description: "Cryptographic Failure: Hardcoded password",
		},
		{
			ID:          "crypto-hardcoded-api-key",
			Pattern:     `api[_-]?key\s*=\s*["'][^"']+["']`,
			Category:    "Cryptographic Failure",
			Description: "Cryptographic Failure: Hardcoded API key",
		},
		{
			ID:          "crypto-hardcoded-secret",
			Pattern:     `secret\s*=\s*["'][^"']+["']`,
			Category:    "Cryptographic Failure",
			Description: "Cryptographic Failure: Hardcoded secret",
		},
		{
			ID:          "crypto-hardcoded-token",
			Pattern:     `token\s*=\s*["'][^"']+["']`,
			Category:    "Cryptographic Failure",
			Description: "Cryptographic Failure: Hardcoded token",
		},
		{
			ID:          "crypto-aws-key-exposed",
			Pattern:     `AKIA[0-9A-Z]{16}`,
			Category:    "Cryptographic Failure",
			Description: "Cryptographic Failure: AWS Access Key exposed",
		},
		{
			ID:          "weak-hash-md5",
			Pattern:     `md5\(`,
			Category:    "Cryptographic Failure",
			Description: "Cryptographic Failure: Weak hashing algorithm (MD5)",
		},
		{
			ID:          "weak-hash-sha1",
			Pattern:     `sha1\(`,
			Category:    "Cryptographic Failure",
			Description: "Cryptographic Failure: Weak hashing algorithm (SHA1)",
		},

		// 3. Injection
		{
			ID:          "injection-sql-execute",
			Pattern:     `execute\s*\(\s*["'].*\+.*["']`,
			Category:    "Injection",
			Description: "Injection: SQL injection risk - use parameterized queries",
		},
		{
			ID:          "injection-sql-query",
			Pattern:     `query\s*\(\s*["'].*\+.*["']`,
			Category:    "Injection",
			Description: "Injection: SQL injection risk",
		},
		{
			ID:          "injection-sql-format",
			Pattern:     `\.format\s*\(.*\).*execute`,
			Category:    "Injection",
			Description: "Injection: SQL injection via format()",
		},
		{
			ID:          "injection-eval",
			Pattern:     `eval\s*\(`,
			Category:    "Injection",
			Description: "Injection: Code injection via eval()",
		},
		{
			ID:          "injection-exec",
			Pattern:     `exec\s*\(`,
			Category:    "Injection",
			Description: "Injection: Code injection via exec()",
		},
		{
			ID:          "injection-os-system",
			Pattern:     `os\.system\s*\(.*\+`,
			Category:    "Injection",
			Description: "Injection: OS command injection",
		},
		{
			ID:          "injection-subprocess",
			Pattern:     `subprocess\.call\s*\(.*\+`,
			Category:    "Injection",
			Description: "Injection: OS command injection",
		},

		// 4. Insecure Design
		{
			ID:          "timing-sleep",
			Pattern:     `sleep\s*\(\s*\d+\s*\)`,
			Category:    "Insecure Design",
			Description: "Insecure Design: Potential timing attack vulnerability",
		},
		{
			ID:          "insecure-random",
			Pattern:     `random\.random\(\)`,
			Category:    "Insecure Design",
			Description: "Insecure Design: Insecure randomness - use a CSPRNG",
		},

		// 5. Security Misconfiguration
		{
			ID:          "debug-enabled",
			Pattern:     `DEBUG\s*=\s*True`,
			Category:    "Misconfiguration",
			Description: "Misconfiguration: Debug mode enabled in production",
		},
		{
			ID:          "wildcard-hosts",
			Pattern:     `ALLOWED_HOSTS\s*=\s*\[\s*["']?\*["']?\s*\]`,
			Category:    "Misconfiguration",
			Description: "Misconfiguration: Wildcard in ALLOWED_HOSTS",
		},
		{
			ID:          "ssl-verify-disabled",
			Pattern:     `verify\s*=\s*False`,
			Category:    "Misconfiguration",
			Description: "Misconfiguration: SSL verification disabled",
		},

		// 7. Identification and Authentication Failures
		{
			ID:          "session-fixation",
			Pattern:     `session\[.*\]\s*=\s*user`,
			Category:    "Authentication",
			Description: "Authentication: Session fixation risk",
		},
		{
			ID:          "insecure-cookie",
			Pattern:     `cookie.*secure\s*=\s*False`,
			Category:    "Authentication",
			Description: "Authentication: Insecure cookie configuration",
		},
		{
			ID:          "plaintext-password-compare",
			Pattern:     `password.*==.*input`,
			Category:    "Authentication",
			Description: "Authentication: Plain text password comparison",
		},

		// 8. Software and Data Integrity Failures
		{
			ID:          "insecure-pickle",
			Pattern:     `pickle\.loads?\(`,
			Category:    "Data Integrity",
			Description: "Data Integrity: Insecure deserialization",
		},
		{
			ID:          "unsafe-yaml",
			Pattern:     `yaml\.load\(`,
			Category:    "Data Integrity",
			Description: "Data Integrity: Unsafe YAML deserialization - use safe_load",
		},

		// 9. Security Logging and Monitoring Failures
		{
			ID:          "swallowed-exception-pass",
			Pattern:     `except.*:\s*pass`,
			Category:    "Logging",
			Description: "Logging: Swallowed exception - no logging",
		},
		{
			ID:          "swallowed-exception-continue",
			Pattern:     `except.*:\s*continue`,
			Category:    "Logging",
			Description: "Logging: Swallowed exception - no logging",
		},

		// 10. Server-Side Request Forgery
		{
			ID:          "ssrf-requests",
			Pattern:     `requests\.get\s*\(\s*user`,
			Category:    "SSRF",
			Description: "SSRF: Unvalidated URL in outbound request",
		},
		{
			ID:          "ssrf-urllib",
			Pattern:     `urllib\.request\s*\(\s*user`,
			Category:    "SSRF",
			Description: "SSRF: Unvalidated URL in outbound request",
		},

		// Cross-cutting XSS
		{
			ID:          "xss-deep-innerhtml",
			Pattern:     `innerHTML\s*=`,
			Category:    "XSS",
			Description: "XSS: Risk via innerHTML",
		},
		{
			ID:          "xss-deep-react",
			Pattern:     `dangerouslySetInnerHTML`,
			Category:    "XSS",
			Description: "XSS: Risk in React",
		},
		{
			ID:          "xss-document-write",
			Pattern:     `document\.write\s*\(`,
			Category:    "XSS",
			Description: "XSS: Risk via document.write",
		},
	}
}
