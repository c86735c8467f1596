package httpclient

import (
	"net/url"
	"strings"
)

// sensitiveParams contains query parameter names that are redacted from logs.
// Matching is a case-insensitive substring match.
var sensitiveParams = []string{
	"api_key",
	"apikey",
	"token",
	"password",
	"auth",
	"secret",
	"key",
	"credential",
	"signature",
}

// SanitizeURL returns raw with sensitive query values and userinfo
// passwords redacted. Unparseable input is returned as "[unparseable url]".
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}
	return sanitizeURL(u)
}

func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	safe := *u
	if _, hasPassword := u.User.Password(); hasPassword {
		safe.User = url.UserPassword(u.User.Username(), "[REDACTED]")
	}

	if u.RawQuery == "" {
		return safe.String()
	}

	q := u.Query()
	redacted := false
	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, "[REDACTED]")
			redacted = true
		}
	}
	if redacted {
		safe.RawQuery = q.Encode()
	}
	return safe.String()
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
