package httpx

import (
	"strings"
)

// RawResponse is a minimally parsed HTTP response. The provider's error
// bodies have to be scanned as text, so everything downstream works off the
// status line and the raw buffer instead of a full HTTP parse.
type RawResponse struct {
	StatusLine string
	Header     map[string]string
	Body       string
	Raw        string // the entire response, headers included
}

// Success reports whether the status line is one of the two codes the
// provider uses for success. The provider only ever answers 200 or 201 on
// success, never any other 2xx, so the substring test is the compatibility
// contract, not a shortcut.
func (r *RawResponse) Success() bool {
	return strings.Contains(r.StatusLine, " 200 ") || strings.Contains(r.StatusLine, " 201 ")
}

// ParseRawResponse splits a raw response buffer into status line, headers
// and body. Malformed input is parsed best-effort: whatever precedes the
// first blank line is treated as headers, the rest as body.
func ParseRawResponse(raw string) *RawResponse {
	resp := &RawResponse{Raw: raw, Header: make(map[string]string)}

	head := raw
	if idx := strings.Index(raw, "\r\n\r\n"); idx >= 0 {
		head = raw[:idx]
		resp.Body = raw[idx+4:]
	} else if idx := strings.Index(raw, "\n\n"); idx >= 0 {
		head = raw[:idx]
		resp.Body = raw[idx+2:]
	}

	lines := strings.Split(head, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if i == 0 {
			resp.StatusLine = line
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		resp.Header[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return resp
}

// extractErrorMessage pulls a best-effort human-readable message out of a
// failed response buffer. The provider sometimes puts the real message two
// lines after a "Connection: close" header line; failing that, a key=value
// Error field is used; failing that, the fallback.
func extractErrorMessage(raw, fallback string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if strings.EqualFold(strings.TrimSpace(line), "connection: close") {
			if i+3 < len(lines) {
				if msg := strings.TrimSpace(lines[i+3]); msg != "" {
					return msg
				}
			}
			break
		}
	}
	if msg := ResponseValue(raw, "Error"); msg != "" {
		return msg
	}
	return fallback
}

// ResponseValue looks up key=value data in a plain-text response body. The
// value runs from the first occurrence of "<key>=" to the end of that line.
// Returns an empty string when the key is absent.
func ResponseValue(body, key string) string {
	marker := key + "="
	idx := strings.Index(body, marker)
	if idx < 0 {
		return ""
	}
	rest := body[idx+len(marker):]
	if end := strings.IndexAny(rest, "\r\n"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
