// Package httpx is the raw request path of the Picasa client. The convenient
// body-fetch helpers hide the status code of a failed response, so writes and
// error diagnostics go through a hand-built HTTP/1.1 exchange that keeps the
// status line and the full error body.
package httpx

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/Camalot9/picasaweb-go/internal/apierr"
	"github.com/Camalot9/picasaweb-go/internal/logger"
	"github.com/Camalot9/picasaweb-go/internal/utils"
)

const (
	// DefaultContentType is used when a request does not declare one.
	DefaultContentType = "application/x-www-form-urlencoded"

	// PortHTTP and PortTLS are the only two ports the provider listens on.
	PortHTTP = 80
	PortTLS  = 443
)

// Request describes one raw exchange. Headers are emitted in slice order
// after the fixed Host/Content-Type/Content-Length lines.
type Request struct {
	Verb        string
	Host        string
	Path        string
	Body        []byte
	ContentType string
	Headers     []string // complete header lines without the trailing CRLF
	UseTLS      bool
	Port        int
}

// Dialer opens the underlying connection. It exists so tests can hand the
// transport a pipe instead of the network.
type Dialer func(network, addr string) (net.Conn, error)

// Transport sends hand-built HTTP requests over a fresh connection per call.
type Transport struct {
	dial    Dialer
	tlsDial Dialer
	timeout time.Duration
	log     logger.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithTimeout sets the connect and I/O deadline for each exchange.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) { t.timeout = d }
}

// WithDialer replaces both the plain and TLS dialers. Intended for tests.
func WithDialer(d Dialer) Option {
	return func(t *Transport) {
		t.dial = d
		t.tlsDial = d
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log logger.Logger) Option {
	return func(t *Transport) { t.log = log }
}

// New builds a Transport with sane defaults: 30s timeout, real dialers,
// silent logger.
func New(opts ...Option) *Transport {
	t := &Transport{
		timeout: 30 * time.Second,
		log:     logger.Nop(),
	}
	t.dial = func(network, addr string) (net.Conn, error) {
		return net.DialTimeout(network, addr, t.timeout)
	}
	t.tlsDial = func(network, addr string) (net.Conn, error) {
		d := &net.Dialer{Timeout: t.timeout}
		return tls.DialWithDialer(d, network, addr, &tls.Config{
			MinVersion: tls.VersionTLS12,
		})
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send writes the request and reads the whole response. On success (first
// line contains " 200 " or " 201 ") the full raw buffer is returned. On any
// other first line the remaining body is still drained, because the provider
// sometimes buries the real error message several lines after a
// "Connection: close" header, and a typed error carrying the entire buffer
// is returned. A connection failure produces a transport error with only the
// system error string.
func (t *Transport) Send(req Request) (*RawResponse, error) {
	if req.Port == 0 {
		req.Port = PortHTTP
		if req.UseTLS {
			req.Port = PortTLS
		}
	}
	if req.ContentType == "" {
		req.ContentType = DefaultContentType
	}

	// A host that already names a port wins over the default.
	addr := req.Host
	if _, _, err := net.SplitHostPort(req.Host); err != nil {
		addr = fmt.Sprintf("%s:%d", req.Host, req.Port)
	}
	dial := t.dial
	if req.UseTLS {
		dial = t.tlsDial
	}

	t.log.Debug("sending request",
		logger.String("verb", req.Verb),
		logger.String("host", req.Host),
		logger.String("path", req.Path))

	conn, err := dial("tcp", addr)
	if err != nil {
		return nil, apierr.Transport(err.Error(), req.Host+req.Path)
	}
	defer utils.Close(conn)

	if t.timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(t.timeout))
	}

	if _, err := io.WriteString(conn, buildRequest(req)); err != nil {
		return nil, apierr.Transport(err.Error(), req.Host+req.Path)
	}

	raw, err := io.ReadAll(conn)
	if err != nil && len(raw) == 0 {
		return nil, apierr.Transport(err.Error(), req.Host+req.Path)
	}

	resp := ParseRawResponse(string(raw))
	if resp.Success() {
		return resp, nil
	}

	t.log.Debug("request failed", logger.String("status", resp.StatusLine))
	fallback := fmt.Sprintf("An unknown error has occurred while sending a %s request.", req.Verb)
	return resp, &apierr.Error{
		Kind:     apierr.KindGeneric,
		Message:  extractErrorMessage(resp.Raw, fallback),
		Response: resp.Raw,
		URL:      req.Host + req.Path,
	}
}

// buildRequest assembles the request text: request line, the fixed headers,
// any extra header lines, a Connection: close, a blank line, then the body.
func buildRequest(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", req.Verb, req.Path)
	fmt.Fprintf(&b, "Host: %s\r\n", req.Host)
	fmt.Fprintf(&b, "Content-Type: %s\r\n", req.ContentType)
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(req.Body))
	for _, h := range req.Headers {
		b.WriteString(strings.TrimRight(h, "\r\n"))
		b.WriteString("\r\n")
	}
	b.WriteString("Connection: close\r\n\r\n")
	b.Write(req.Body)
	return b.String()
}
