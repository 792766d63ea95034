package errors

import (
	"regexp"
	"strings"
)

var (
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)
	apiKeyKVRe    = regexp.MustCompile(`(?i)"?\b(api[_-]?key|x-api-key)\b"?\s*[:=]\s*"?[^\s"',}]+"?`)
)

const maxSnippet = 256

// Redact strips credential-bearing substrings from error and log text.
func Redact(s string) string {
	if s == "" {
		return ""
	}
	out := bearerTokenRe.ReplaceAllString(s, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	return strings.TrimSpace(out)
}

// Snippet returns a redacted, single-line, truncated view of a response body.
func Snippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	b := body
	if len(b) > maxSnippet {
		b = b[:maxSnippet]
	}
	s := Redact(string(b))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	if s == "" {
		return ""
	}
	if len(body) > maxSnippet {
		return s + "..."
	}
	return s
}

// LogFields flattens err into structured log fields.
func LogFields(err error) map[string]interface{} {
	fields := map[string]interface{}{
		"errorKind": string(KindOf(err)),
	}
	if err == nil {
		return fields
	}
	fields["error"] = Redact(err.Error())

	var se *StandardError
	if As(err, &se) {
		fields["errorCode"] = string(se.Code)
		fields["retryable"] = se.Retryable
		if se.Endpoint != "" {
			fields["endpoint"] = se.Endpoint
		}
		if se.StatusCode != 0 {
			fields["statusCode"] = se.StatusCode
		}
		if se.Attempts != 0 {
			fields["attempts"] = se.Attempts
		}
		if se.Subject != "" {
			fields["subject"] = se.Subject
		}
	}
	return fields
}
