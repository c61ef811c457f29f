// Package redact strips credentials, SQL and other sensitive fragments from
// error text before it reaches a log line. Client responses never carry raw
// error text at all; see the api package.
package redact

import (
	"log/slog"
	"regexp"
)

// rule replaces every match of pattern with replacement. Replacements may
// reference capture groups.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules run in order; earlier rules consume text later rules would otherwise
// partially match (a DSN contains a path, a SQL statement may contain a key).
var rules = []rule{
	{
		// Connection strings carry the password in the userinfo part.
		pattern:     regexp.MustCompile(`(?i)\b(?:postgres(?:ql)?|pgx)://\S+`),
		replacement: "[REDACTED_DSN]",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*\S+`),
		replacement: "${1}=[REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`goroutine \d+ \[[^\]]*\]:[\s\S]*`),
		replacement: "[REDACTED_STACK]",
	},
	{
		// Statements are upper-case in this code base; lower-case prose such as
		// "failed to update card" must survive.
		pattern:     regexp.MustCompile(`(?s)\b(SELECT|INSERT INTO|UPDATE|DELETE FROM)\s.*`),
		replacement: "${1} [REDACTED_SQL]",
	},
	{
		// Postgres constraint details echo the offending row values.
		pattern:     regexp.MustCompile(`Key \([^)]*\)=\([^)]*\)`),
		replacement: "Key [REDACTED_KEY]",
	},
	{
		pattern:     regexp.MustCompile(`(?:/[\w.-]+){2,}`),
		replacement: "[REDACTED_PATH]",
	},
}

// String redacts sensitive information from s.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts sensitive information from an error's Error() output.
// A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Attr returns the redacted error as an "error" log attribute.
func Attr(err error) slog.Attr {
	return slog.String("error", Error(err))
}
