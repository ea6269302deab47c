package httpx

import (
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/Camalot9/picasaweb-go/internal/apierr"
)

// stubDialer serves a canned response over an in-memory pipe and captures
// whatever the transport wrote.
func stubDialer(t *testing.T, response string, captured *string) Dialer {
	t.Helper()
	return func(network, addr string) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			buf := make([]byte, 64*1024)
			n, _ := server.Read(buf)
			*captured = string(buf[:n])
			_, _ = io.WriteString(server, response)
			_ = server.Close()
		}()
		return client, nil
	}
}

func TestSendSuccess200(t *testing.T) {
	var captured string
	response := "HTTP/1.1 200 OK\r\nContent-Type: application/atom+xml\r\n\r\n<feed></feed>"
	tr := New(WithDialer(stubDialer(t, response, &captured)))

	resp, err := tr.Send(Request{
		Verb: "GET",
		Host: "picasaweb.google.com",
		Path: "/data/feed/api/user/liz?kind=album",
	})
	if err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}
	if resp.Body != "<feed></feed>" {
		t.Errorf("Send() body = %q, want %q", resp.Body, "<feed></feed>")
	}
	if !strings.HasPrefix(captured, "GET /data/feed/api/user/liz?kind=album HTTP/1.1\r\n") {
		t.Errorf("request line wrong, got %q", captured[:strings.Index(captured, "\r\n")])
	}
	if !strings.Contains(captured, "Host: picasaweb.google.com\r\n") {
		t.Error("request missing Host header")
	}
	if !strings.Contains(captured, "Connection: close\r\n\r\n") {
		t.Error("request missing Connection: close terminator")
	}
}

func TestSendSuccess201(t *testing.T) {
	var captured string
	tr := New(WithDialer(stubDialer(t, "HTTP/1.1 201 Created\r\n\r\ndone", &captured)))
	if _, err := tr.Send(Request{Verb: "POST", Host: "h", Path: "/p", Body: []byte("x")}); err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}
	if !strings.Contains(captured, "Content-Length: 1\r\n") {
		t.Error("request missing Content-Length for body")
	}
}

func TestSendOther2xxIsFailure(t *testing.T) {
	var captured string
	tr := New(WithDialer(stubDialer(t, "HTTP/1.1 204 No Content\r\n\r\n", &captured)))
	_, err := tr.Send(Request{Verb: "GET", Host: "h", Path: "/p"})
	if err == nil {
		t.Fatal("Send() should fail on any first line without \" 200 \" or \" 201 \"")
	}
}

func TestSendFailureKeepsWholeBuffer(t *testing.T) {
	var captured string
	response := "HTTP/1.1 403 Forbidden\r\n" +
		"Connection: close\r\n" +
		"\r\n" +
		"filler\r\n" +
		"The token does not grant access to this album.\r\n" +
		"trailer\r\n"
	tr := New(WithDialer(stubDialer(t, response, &captured)))

	_, err := tr.Send(Request{Verb: "PUT", Host: "picasaweb.google.com", Path: "/data/entry/api/x"})
	if err == nil {
		t.Fatal("Send() error = nil, want failure")
	}
	var typed *apierr.Error
	if !errors.As(err, &typed) {
		t.Fatalf("Send() error type = %T, want *apierr.Error", err)
	}
	if typed.Response != response {
		t.Error("error must carry the entire raw response buffer")
	}
	if typed.URL != "picasaweb.google.com/data/entry/api/x" {
		t.Errorf("error URL = %q", typed.URL)
	}
	if typed.Message != "The token does not grant access to this album." {
		t.Errorf("extracted message = %q", typed.Message)
	}
}

func TestSendErrorKeyFallback(t *testing.T) {
	var captured string
	response := "HTTP/1.1 403 Forbidden\r\n\r\nError=BadAuthentication\n"
	tr := New(WithDialer(stubDialer(t, response, &captured)))
	_, err := tr.Send(Request{Verb: "POST", Host: "www.google.com", Path: "/accounts/ClientLogin"})
	var typed *apierr.Error
	if !errors.As(err, &typed) {
		t.Fatalf("Send() error type = %T", err)
	}
	if typed.Message != "BadAuthentication" {
		t.Errorf("message = %q, want %q", typed.Message, "BadAuthentication")
	}
}

func TestSendConnectFailure(t *testing.T) {
	tr := New(WithDialer(func(network, addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}))
	_, err := tr.Send(Request{Verb: "GET", Host: "h", Path: "/p"})
	var typed *apierr.Error
	if !errors.As(err, &typed) {
		t.Fatalf("Send() error type = %T", err)
	}
	if typed.Kind != apierr.KindTransport {
		t.Errorf("kind = %v, want %v", typed.Kind, apierr.KindTransport)
	}
	if typed.Message != "connection refused" {
		t.Errorf("message = %q", typed.Message)
	}
}

func TestParseRawResponse(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nX-Test: a\r\n\r\nbody line"
	resp := ParseRawResponse(raw)
	if resp.StatusLine != "HTTP/1.1 200 OK" {
		t.Errorf("StatusLine = %q", resp.StatusLine)
	}
	if resp.Header["content-type"] != "text/plain" {
		t.Errorf("header content-type = %q", resp.Header["content-type"])
	}
	if resp.Body != "body line" {
		t.Errorf("Body = %q", resp.Body)
	}
	if !resp.Success() {
		t.Error("Success() = false, want true")
	}
}

func TestResponseValue(t *testing.T) {
	body := "SID=abc\nLSID=def\nAuth=tok123\n"
	if got := ResponseValue(body, "Auth"); got != "tok123" {
		t.Errorf("ResponseValue(Auth) = %q, want %q", got, "tok123")
	}
	if got := ResponseValue(body, "Missing"); got != "" {
		t.Errorf("ResponseValue(Missing) = %q, want empty", got)
	}
}
