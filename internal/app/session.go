package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Camalot9/picasaweb-go/internal/auth"
	"github.com/Camalot9/picasaweb-go/internal/logger"
)

// sessionRecord is the on-disk shape of a persisted session.
type sessionRecord struct {
	Token     string    `yaml:"token"`
	Method    string    `yaml:"method"` // "password" | "redirect"
	CreatedAt time.Time `yaml:"created_at"`
}

func (a *App) sessionPath() (string, error) {
	if a.cfg.SessionFile != "" {
		return a.cfg.SessionFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve session file: %w", err)
	}
	return filepath.Join(home, ".picasaweb", "session"), nil
}

// restoreSession loads a previously saved session into the auth manager.
// Any problem reading the file just means starting unauthenticated.
func (a *App) restoreSession() {
	path, err := a.sessionPath()
	if err != nil {
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var rec sessionRecord
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		a.logger.Warn("ignoring unreadable session file", logger.Error(err))
		return
	}

	var method auth.Method
	switch rec.Method {
	case "password":
		method = auth.MethodPassword
	case "redirect":
		method = auth.MethodRedirect
	default:
		return
	}
	if rec.Token == "" {
		return
	}
	a.auth.Restore(rec.Token, method, rec.CreatedAt)
}

// saveSession writes the current session to disk with owner-only permissions.
func (a *App) saveSession() error {
	s := a.auth.Session()
	if s == nil {
		return a.removeSession()
	}

	method := "password"
	if s.Method == auth.MethodRedirect {
		method = "redirect"
	}
	raw, err := yaml.Marshal(sessionRecord{
		Token:     s.Token,
		Method:    method,
		CreatedAt: s.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	path, err := a.sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (a *App) removeSession() error {
	path, err := a.sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
