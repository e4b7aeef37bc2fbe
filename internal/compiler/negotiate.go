package compiler

import "strings"

// Content negotiation: effective MIME lists and the request content type.

const jsonMime = "application/json"

// effectiveList returns the operation-level list when non-empty, else the
// service-wide default. Absent lists are treated as empty.
func effectiveList(operation, service []string) []string {
	if len(operation) > 0 {
		return operation
	}
	return service
}

// requestContentType picks the request content type from the effective
// consume list: the first entry, unless some entry is a JSON media type, in
// which case that entry wins. JSON content types without an explicit charset
// get a UTF-8 charset parameter appended exactly once.
func requestContentType(consumes []string) string {
	ct := ""
	if len(consumes) > 0 {
		ct = consumes[0]
	}
	for _, entry := range consumes {
		if isJSONMime(entry) {
			ct = entry
			break
		}
	}
	return ensureJSONCharset(ct)
}

func ensureJSONCharset(ct string) string {
	if !isJSONMime(ct) {
		return ct
	}
	if strings.Contains(strings.ToLower(ct), "charset") {
		return ct
	}
	return ct + "; charset=utf-8"
}

// isJSONMime reports whether the entry case-insensitively starts with the
// JSON media type.
func isJSONMime(entry string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(entry)), jsonMime)
}

// containsJSON reports whether any entry of the list is a JSON media type.
func containsJSON(list []string) bool {
	for _, entry := range list {
		if isJSONMime(entry) {
			return true
		}
	}
	return false
}
