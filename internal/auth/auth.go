// Package auth implements the two legacy login flows the provider accepts:
// programmatic login with a username and password, and the browser redirect
// flow that trades a single-use token for a session token.
package auth

import (
	"net/url"
	"strings"
	"time"

	"github.com/Camalot9/picasaweb-go/internal/apierr"
	"github.com/Camalot9/picasaweb-go/internal/httpx"
	"github.com/Camalot9/picasaweb-go/internal/logger"
)

const (
	// HostAccounts is the account service host. Every auth exchange runs
	// over TLS against it.
	HostAccounts = "www.google.com"

	pathClientLogin  = "/accounts/ClientLogin"
	pathSessionToken = "/accounts/AuthSubSessionToken"
	pathTokenInfo    = "/accounts/AuthSubTokenInfo"
	pathRevokeToken  = "/accounts/AuthSubRevokeToken"

	// serviceID names the photo service in ClientLogin requests.
	serviceID = "lh2"

	// sourceSuffix is appended to the identity to form the default
	// application source string.
	sourceSuffix = "-UsingLightweightPicasaAPI-3.0"

	// Scope is the feed root a redirect authorization grants access to.
	Scope = "http://picasaweb.google.com/data/feed/api"
)

// Method distinguishes how a session token was obtained, because the two
// flows use different authorization header schemes.
type Method int

const (
	// MethodPassword marks tokens from the username/password flow.
	MethodPassword Method = iota + 1
	// MethodRedirect marks tokens from the browser redirect flow.
	MethodRedirect
)

// Session is an established login.
type Session struct {
	Token     string
	Method    Method
	CreatedAt time.Time
}

// Header returns the complete authorization header line for the session's
// flow, trailing CRLF included.
func (s *Session) Header() string {
	if s == nil || s.Token == "" {
		return ""
	}
	switch s.Method {
	case MethodRedirect:
		return "Authorization: AuthSub token=" + s.Token + "\r\n"
	default:
		return "Authorization: GoogleLogin auth=" + s.Token + "\r\n"
	}
}

// sender is the transport surface the manager needs. Satisfied by
// *httpx.Transport.
type sender interface {
	Send(httpx.Request) (*httpx.RawResponse, error)
}

// Manager drives the login flows and holds the resulting session.
type Manager struct {
	send    sender
	log     logger.Logger
	now     func() time.Time
	session *Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostic logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithClock replaces the session timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New builds a Manager that exchanges tokens through t.
func New(t sender, opts ...Option) *Manager {
	m := &Manager{
		send: t,
		log:  logger.Nop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the current session, nil when not logged in.
func (m *Manager) Session() *Session {
	return m.session
}

// Restore installs a previously persisted session without a network
// exchange. Validity is only checked on the next Valid call.
func (m *Manager) Restore(token string, method Method, createdAt time.Time) {
	m.session = &Session{Token: token, Method: method, CreatedAt: createdAt}
}

// Header returns the authorization header line for the current session, or
// an empty string when not logged in.
func (m *Manager) Header() string {
	return m.session.Header()
}

// LoginWithPassword performs the programmatic login flow. source may be
// empty, in which case a default derived from identity is sent. captchaToken
// and captchaResponse are only set when retrying a login that was challenged.
//
// A challenged login returns *apierr.CaptchaError carrying the challenge
// token and image so the caller can retry. Rejected credentials return a
// KindInvalidCredentials error.
func (m *Manager) LoginWithPassword(identity, secret, source, captchaToken, captchaResponse string) error {
	if source == "" {
		source = identity + sourceSuffix
	}

	// Every value is escaped so credentials containing & or = survive the
	// form encoding.
	var body strings.Builder
	body.WriteString("Email=" + url.QueryEscape(identity))
	body.WriteString("&Passwd=" + url.QueryEscape(secret))
	body.WriteString("&service=" + serviceID)
	body.WriteString("&source=" + url.QueryEscape(source))
	if captchaToken != "" {
		body.WriteString("&logintoken=" + url.QueryEscape(captchaToken))
		body.WriteString("&logincaptcha=" + url.QueryEscape(captchaResponse))
	}

	resp, err := m.send.Send(httpx.Request{
		Verb:   "POST",
		Host:   HostAccounts,
		Path:   pathClientLogin,
		Body:   []byte(body.String()),
		UseTLS: true,
	})
	if err != nil {
		if resp == nil {
			return err
		}
		switch httpx.ResponseValue(resp.Raw, "Error") {
		case "CaptchaRequired":
			m.log.Debug("login challenged with captcha")
			return apierr.NewCaptcha(
				"A CAPTCHA response is required to continue.",
				identity, secret,
				httpx.ResponseValue(resp.Raw, "CaptchaToken"),
				httpx.ResponseValue(resp.Raw, "CaptchaUrl"),
				httpx.ResponseValue(resp.Raw, "Url"),
				resp.Raw,
			)
		case "BadAuthentication":
			return apierr.New(apierr.KindInvalidCredentials, "The username or password was not recognized.")
		}
		return classify(err)
	}

	token := httpx.ResponseValue(resp.Raw, "Auth")
	if token == "" {
		return &apierr.Error{
			Kind:     apierr.KindGeneric,
			Message:  "The login response did not contain an auth token.",
			Response: resp.Raw,
		}
	}

	m.session = &Session{Token: token, Method: MethodPassword, CreatedAt: m.now()}
	m.log.Info("logged in", logger.String("identity", identity))
	return nil
}

// AuthorizationURL builds the URL a user must visit to start the redirect
// flow. callback is where the provider sends the single-use token;
// upgradeable asks for a token that can be traded for a session token.
// Construction only, no network.
func AuthorizationURL(callback string, upgradeable bool) string {
	session := "0"
	if upgradeable {
		session = "1"
	}
	return "https://" + HostAccounts + "/accounts/AuthSubRequest" +
		"?next=" + url.QueryEscape(callback) +
		"&scope=" + url.QueryEscape(Scope) +
		"&session=" + session
}

// CompleteRedirectLogin trades the single-use token from the redirect
// callback for a session token. The exchange is mandatory: single-use
// tokens are never used for API requests directly.
func (m *Manager) CompleteRedirectLogin(singleUseToken string) error {
	resp, err := m.send.Send(httpx.Request{
		Verb:    "GET",
		Host:    HostAccounts,
		Path:    pathSessionToken,
		Headers: []string{"Authorization: AuthSub token=" + singleUseToken},
		UseTLS:  true,
	})
	if err != nil {
		return classify(err)
	}

	token := httpx.ResponseValue(resp.Raw, "Token")
	if token == "" {
		return &apierr.Error{
			Kind:     apierr.KindGeneric,
			Message:  "The token exchange response did not contain a session token.",
			Response: resp.Raw,
		}
	}

	m.session = &Session{Token: token, Method: MethodRedirect, CreatedAt: m.now()}
	m.log.Info("redirect login completed")
	return nil
}

// Valid reports whether the current session is usable. Redirect sessions
// are checked against the token info endpoint and any failure, transport
// included, reports false. Password sessions have no info endpoint, so
// holding a token is the best available answer.
func (m *Manager) Valid() bool {
	if m.session == nil || m.session.Token == "" {
		return false
	}
	if m.session.Method != MethodRedirect {
		return true
	}
	_, err := m.send.Send(httpx.Request{
		Verb:    "GET",
		Host:    HostAccounts,
		Path:    pathTokenInfo,
		Headers: []string{strings.TrimRight(m.Header(), "\r\n")},
		UseTLS:  true,
	})
	return err == nil
}

// Revoke invalidates a redirect session on the provider side and clears the
// local session only when the provider confirms. Password tokens cannot be
// revoked remotely; use Clear to drop one locally.
func (m *Manager) Revoke() error {
	if m.session == nil {
		return apierr.New(apierr.KindGeneric, "No session to revoke.")
	}
	if m.session.Method != MethodRedirect {
		return apierr.New(apierr.KindGeneric, "Only redirect sessions can be revoked remotely.")
	}
	_, err := m.send.Send(httpx.Request{
		Verb:    "GET",
		Host:    HostAccounts,
		Path:    pathRevokeToken,
		Headers: []string{strings.TrimRight(m.Header(), "\r\n")},
		UseTLS:  true,
	})
	if err != nil {
		return classify(err)
	}
	m.session = nil
	m.log.Info("session revoked")
	return nil
}

// Clear drops the local session without contacting the provider.
func (m *Manager) Clear() {
	m.session = nil
}

// classify runs a failed exchange through the status-line classifier.
// Transport failures carry no response to inspect and pass through.
func classify(err error) error {
	typed, ok := err.(*apierr.Error)
	if !ok || typed.Kind == apierr.KindTransport {
		return err
	}
	classified := apierr.Classify(typed.Response, typed.Message)
	classified.URL = typed.URL
	return classified
}
