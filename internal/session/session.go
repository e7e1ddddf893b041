// Package session holds the identity supplied by the external login flow.
// The recipe view-model only reads it: whether someone is logged in, and as
// whom. The login flow hands it over through a small YAML file.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Mode selects between the two render branches.
type Mode int

const (
	ModeAnonymous Mode = iota
	ModeAuthenticated
)

// String returns the display name for the mode
func (m Mode) String() string {
	switch m {
	case ModeAuthenticated:
		return "authenticated"
	case ModeAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Session is the read-only identity state.
type Session struct {
	LoggedIn bool   `yaml:"logged_in"`
	UserID   int    `yaml:"user_id"`
	Username string `yaml:"username"`
}

// Anonymous returns the logged-out session.
func Anonymous() Session {
	return Session{}
}

// LoggedIn returns an authenticated session for the given user.
func LoggedIn(userID int, username string) Session {
	return Session{LoggedIn: true, UserID: userID, Username: username}
}

// Mode reports which branch the session unlocks.
func (s Session) Mode() Mode {
	if s.LoggedIn {
		return ModeAuthenticated
	}
	return ModeAnonymous
}

// Validate rejects logged-in sessions without a user id.
func (s Session) Validate() error {
	if s.LoggedIn && s.UserID <= 0 {
		return fmt.Errorf("logged-in session requires a positive user_id, got %d", s.UserID)
	}
	return nil
}

// ErrInvalidSession is wrapped by Load when the file content fails Validate.
var ErrInvalidSession = errors.New("invalid session")

// Load reads the session file. A missing file means nobody is logged in.
func Load(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Anonymous(), nil
		}
		return Anonymous(), fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Anonymous(), fmt.Errorf("failed to parse session: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Anonymous(), fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return s, nil
}

// Save writes the session file atomically (temp file + rename).
func Save(path string, s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace session: %w", err)
	}
	return nil
}

// Clear removes the session file. Removing a missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
