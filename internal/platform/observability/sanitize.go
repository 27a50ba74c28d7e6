package observability

import "unicode"

const maxFieldRunes = 256

// scrub drops control characters (except whitespace) and caps the rune count
// so request-derived values cannot inject log lines or bloat entries.
func scrub(value string, limit int) string {
	if limit <= 0 {
		limit = maxFieldRunes
	}

	out := make([]rune, 0, len(value))
	for _, r := range value {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return string(out)
}

// SanitizeRoute prepares a chi route pattern for log and span attributes.
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return scrub(route, 180)
}

// SanitizeMethod prepares an HTTP method for log attributes.
func SanitizeMethod(method string) string {
	return scrub(method, 10)
}

// SanitizeUserID caps identifiers before they reach logs.
func SanitizeUserID(uid string) string {
	if uid == "" {
		return ""
	}
	return scrub(uid, 64)
}
