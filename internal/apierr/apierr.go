// Package apierr defines the typed errors surfaced by the Picasa client and
// the classifier that maps raw response bodies onto them.
package apierr

import (
	"fmt"
	"strings"
)

// Kind identifies the class of failure a request produced.
type Kind int

const (
	// KindGeneric is used when the response matched no known pattern.
	KindGeneric Kind = iota
	// KindTransport covers connection and socket level failures.
	KindTransport
	// KindUnauthorized covers 401 and 403 responses.
	KindUnauthorized
	// KindBadRequest covers 400 responses.
	KindBadRequest
	// KindConflict covers 409 responses.
	KindConflict
	// KindInternalServer covers 500 responses.
	KindInternalServer
	// KindCaptchaRequired means the login was challenged with a CAPTCHA.
	KindCaptchaRequired
	// KindInvalidCredentials means the username or password was rejected.
	KindInvalidCredentials
	// KindFileNotFound means a local file read failed during an upload.
	KindFileNotFound
	// KindMalformedURL means a request URL did not contain the provider host.
	KindMalformedURL
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad request"
	case KindConflict:
		return "conflict"
	case KindInternalServer:
		return "internal server error"
	case KindCaptchaRequired:
		return "captcha required"
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindFileNotFound:
		return "file not found"
	case KindMalformedURL:
		return "malformed url"
	default:
		return "generic"
	}
}

// Error is the error type for every failure the client reports. Response and
// URL are kept whenever they are known so that callers can re-inspect the
// raw body for provider detail the classifier did not recognize.
type Error struct {
	Kind     Kind
	Message  string
	Response string // full raw response, headers included, when available
	URL      string // the requested URL, when available
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("picasa: %s: %s (url: %s)", e.Kind, e.Message, e.URL)
	}
	return fmt.Sprintf("picasa: %s: %s", e.Kind, e.Message)
}

// Is lets errors.Is match against a bare *Error carrying only a Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Transport builds a connection-failure error. These carry no response body
// because no response was ever read.
func Transport(message, url string) *Error {
	return &Error{Kind: KindTransport, Message: message, URL: url}
}

// CaptchaError is returned when the login endpoint demands a CAPTCHA
// response. It carries everything needed to retry the login without
// re-prompting for credentials.
type CaptchaError struct {
	Err Error

	// Token identifies the challenge on the provider side and must be sent
	// back with the retried login.
	Token string
	// ImageURL is the challenge image to show the user.
	ImageURL string
	// ChallengePath is the Url field of the response body, a path relative
	// to the provider host.
	ChallengePath string
	// Identity and Secret are the credentials of the attempt that was
	// challenged.
	Identity string
	Secret   string
}

func (e *CaptchaError) Error() string { return e.Err.Error() }

// Unwrap exposes the inner *Error so errors.Is can match on its kind.
func (e *CaptchaError) Unwrap() error { return &e.Err }

// NewCaptcha builds a CaptchaError.
func NewCaptcha(message, identity, secret, token, imageURL, challengePath, response string) *CaptchaError {
	return &CaptchaError{
		Err: Error{
			Kind:     KindCaptchaRequired,
			Message:  message,
			Response: response,
		},
		Token:         token,
		ImageURL:      imageURL,
		ChallengePath: challengePath,
		Identity:      identity,
		Secret:        secret,
	}
}

// classification table per provider behavior: only these five status
// signatures ever appear in error bodies, everything else is generic.
var classifications = []struct {
	pattern string
	kind    Kind
	message string
}{
	{"401 UNAUTHORIZED", KindUnauthorized, "Authorization no longer valid."},
	{"403 FORBIDDEN", KindUnauthorized, "Request forbidden."},
	{"400 BAD REQUEST", KindBadRequest, "The request was invalid."},
	{"500 INTERNAL", KindInternalServer, "An error occurred on the servers."},
	{"409 CONFLICT", KindConflict, "An error occurred on the servers."},
}

// Classify inspects a raw response body for the known failure signatures and
// returns the matching typed error. The match is case-insensitive. When
// message is empty, the kind's default message is used. A 409 body is often
// the conflicting entity's own XML, so Conflict messages may not be
// human-readable; the raw body is attached either way.
func Classify(body, message string) *Error {
	upper := strings.ToUpper(body)
	for _, c := range classifications {
		if strings.Contains(upper, c.pattern) {
			msg := message
			if msg == "" {
				msg = c.message
			}
			return &Error{Kind: c.kind, Message: msg, Response: body}
		}
	}
	if message == "" {
		message = "An unknown error was encountered."
	}
	return &Error{Kind: KindGeneric, Message: message, Response: body}
}
