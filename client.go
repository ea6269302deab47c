// Package picasa is a client for the Picasa Web Albums feed API. Reads go
// through plain HTTP GETs with an optional response cache; writes go through
// the raw transport in internal/httpx because the provider's error bodies
// need the full response buffer to produce a useful message.
package picasa

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Camalot9/picasaweb-go/internal/apierr"
	"github.com/Camalot9/picasaweb-go/internal/auth"
	"github.com/Camalot9/picasaweb-go/internal/cache"
	"github.com/Camalot9/picasaweb-go/internal/httpx"
	"github.com/Camalot9/picasaweb-go/internal/logger"
	"github.com/Camalot9/picasaweb-go/internal/utils"
)

const (
	// DefaultHost is the provider host all data URLs are rooted at.
	DefaultHost = "picasaweb.google.com"

	feedBase  = "/data/feed/api"
	entryBase = "/data/entry/api"
	mediaBase = "/data/media/api"
)

// sender is the raw transport surface. Satisfied by *httpx.Transport.
type sender interface {
	Send(httpx.Request) (*httpx.RawResponse, error)
}

// Client talks to the provider. The zero value is not usable; construct
// with New.
type Client struct {
	host     string
	web      *http.Client
	raw      sender
	auth     *auth.Manager
	store    cache.Store
	log      logger.Logger
	now      func() time.Time
	readFile func(string) ([]byte, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHost overrides the provider host. Intended for tests against a stub
// server; the value includes the port when non-standard.
func WithHost(host string) Option {
	return func(c *Client) { c.host = host }
}

// WithHTTPClient replaces the HTTP client used for feed reads.
func WithHTTPClient(web *http.Client) Option {
	return func(c *Client) { c.web = web }
}

// WithTransport replaces the raw transport used for writes and error
// diagnostics.
func WithTransport(raw sender) Option {
	return func(c *Client) { c.raw = raw }
}

// WithAuth installs the session manager. Without one the client operates
// unauthenticated and write operations fail at the provider.
func WithAuth(m *auth.Manager) Option {
	return func(c *Client) { c.auth = m }
}

// WithCache installs a response cache for feed reads.
func WithCache(store cache.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithClock replaces the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithFileReader replaces the local file reader used by uploads. Intended
// for tests.
func WithFileReader(read func(string) ([]byte, error)) Option {
	return func(c *Client) { c.readFile = read }
}

// New builds a Client with defaults: real host, 30s HTTP client, raw
// transport, no auth, no cache, silent logger.
func New(opts ...Option) *Client {
	c := &Client{
		host:     DefaultHost,
		web:      &http.Client{Timeout: 30 * time.Second},
		store:    cache.Nop{},
		log:      logger.Nop(),
		now:      time.Now,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.raw == nil {
		c.raw = httpx.New(httpx.WithLogger(c.log))
	}
	return c
}

// Auth returns the session manager, nil when none was installed.
func (c *Client) Auth() *auth.Manager {
	return c.auth
}

func (c *Client) authenticated() bool {
	return c.auth != nil && c.auth.Session() != nil
}

// authHeaderLine returns the authorization header without the trailing CRLF,
// empty when unauthenticated.
func (c *Client) authHeaderLine() string {
	if c.auth == nil {
		return ""
	}
	return strings.TrimRight(c.auth.Header(), "\r\n")
}

func (c *Client) feedURL(path string) string {
	return "http://" + c.host + feedBase + path
}

func (c *Client) entryURL(path string) string {
	return "http://" + c.host + entryBase + path
}

// fetchFeed performs a cached GET of url. On any failure the request is
// replayed through the raw transport, because the convenient fetch path
// hides the provider's error body; the replay's buffer feeds the classifier.
// A failed replay never masks the original failure: it degrades to a
// generic error.
func (c *Client) fetchFeed(ctx context.Context, url string, cacheable bool) (string, error) {
	if cacheable {
		if body, ok := c.store.Get(ctx, url); ok {
			c.log.Debug("cache hit", logger.String("url", url))
			return body, nil
		}
	}

	body, err := c.get(ctx, url)
	if err != nil {
		c.log.Debug("feed fetch failed, probing for the error body",
			logger.String("url", url))
		return "", c.diagnose(url)
	}

	if cacheable {
		c.store.Put(ctx, url, body)
	}
	return body, nil
}

// get runs a plain GET and returns the body only when the status is 200.
// Any other outcome is reported as an opaque failure; diagnosis happens on
// the raw path.
func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if h := c.authHeaderLine(); h != "" {
		name, value, _ := strings.Cut(h, ": ")
		req.Header.Set(name, value)
	}

	resp, err := c.web.Do(req)
	if err != nil {
		return "", err
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", apierr.New(apierr.KindGeneric, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// diagnose replays a failed GET over the raw transport to recover the
// provider's error body and classify it. URLs that do not contain the
// provider host cannot be replayed and are reported as malformed.
func (c *Client) diagnose(url string) error {
	idx := strings.Index(url, c.host)
	if idx < 0 {
		return &apierr.Error{
			Kind:    apierr.KindMalformedURL,
			Message: "A malformed URL was provided.",
			URL:     url,
		}
	}
	path := url[idx+len(c.host):]

	req := httpx.Request{Verb: "GET", Host: c.host, Path: path}
	if h := c.authHeaderLine(); h != "" {
		req.Headers = append(req.Headers, h)
	}

	_, err := c.raw.Send(req)
	if err == nil {
		// The replay succeeded where the original failed; report the
		// original failure without provider detail.
		return &apierr.Error{
			Kind:    apierr.KindGeneric,
			Message: "An unknown error has occurred.",
			URL:     url,
		}
	}

	typed, ok := err.(*apierr.Error)
	if !ok || typed.Kind == apierr.KindTransport {
		return &apierr.Error{
			Kind:    apierr.KindGeneric,
			Message: "An unknown error has occurred.",
			URL:     url,
		}
	}

	classified := apierr.Classify(typed.Response, typed.Message)
	classified.URL = url
	return classified
}

// send runs a write through the raw transport with the session header
// attached and classifies any failure.
func (c *Client) send(verb, path string, body []byte, contentType string, extraHeaders ...string) (*httpx.RawResponse, error) {
	req := httpx.Request{
		Verb:        verb,
		Host:        c.host,
		Path:        path,
		Body:        body,
		ContentType: contentType,
	}
	if h := c.authHeaderLine(); h != "" {
		req.Headers = append(req.Headers, h)
	}
	req.Headers = append(req.Headers, extraHeaders...)

	resp, err := c.raw.Send(req)
	if err != nil {
		typed, ok := err.(*apierr.Error)
		if !ok || typed.Kind == apierr.KindTransport {
			return resp, err
		}
		classified := apierr.Classify(typed.Response, typed.Message)
		classified.URL = c.host + path
		return resp, classified
	}
	return resp, nil
}

// editPath strips the scheme and host off an edit link, leaving the request
// path the provider expects on PUT and DELETE.
func (c *Client) editPath(editLink string) string {
	idx := strings.Index(editLink, c.host)
	if idx < 0 {
		return editLink
	}
	return editLink[idx+len(c.host):]
}

// millis formats a wall time the way the provider counts, milliseconds
// since the epoch.
func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
