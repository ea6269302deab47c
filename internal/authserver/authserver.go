// internal/authserver/authserver.go
package authserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Camalot9/picasaweb-go/internal/logger"
)

const confirmationPage = `<!DOCTYPE html>
<html>
<head><title>Authorization received</title></head>
<body>
<p>Authorization received. You can close this window and return to the application.</p>
</body>
</html>
`

// Server is a short-lived localhost HTTP server that collects the single-use
// token appended to the callback URL after the account holder approves
// access. It binds its listener at construction time so the callback URL is
// known before the authorization URL is handed to the user.
type Server struct {
	http *http.Server
	ln   net.Listener
	log  logger.Logger

	tokens chan string
	once   sync.Once
}

// New binds addr and builds the callback server. The listener stays open
// until WaitForToken (or Stop) closes it.
func New(addr string, loggerClient logger.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		ln:     ln,
		log:    loggerClient,
		tokens: make(chan string, 1),
	}

	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(accessLog(loggerClient))
	r.Get("/callback", s.handleCallback)

	s.http = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

// Addr reports the bound listen address, including the resolved port when the
// server was created with port 0.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// CallbackURL is the address to hand out as the post-approval redirect target.
func (s *Server) CallbackURL() string {
	return "http://" + s.Addr() + "/callback"
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token parameter", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(confirmationPage))

	// Only the first token counts; later hits still get the page above.
	s.once.Do(func() { s.tokens <- token })
}

// Start serves on the bound listener (blocks until error or shutdown).
func (s *Server) Start() error {
	s.log.Infof("callback server listening on %s", s.Addr())
	err := s.http.Serve(s.ln)
	// http.ErrServerClosed is expected on graceful shutdown.
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("callback server shutting down...")
	return s.http.Shutdown(ctx)
}

// WaitForToken runs the server until a token arrives or ctx is done, then
// shuts the listener down either way.
func (s *Server) WaitForToken(ctx context.Context) (string, error) {
	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(shutdownCtx)
	}()

	select {
	case token := <-s.tokens:
		return token, nil
	case err := <-errc:
		if err == nil {
			err = errors.New("callback server stopped before a token arrived")
		}
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
