// Package session keeps the show file: the routing configuration and the live
// toggles, persisted as one JSON document.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/mxa-live/mxa/internal/logging"
	"github.com/mxa-live/mxa/routing"
)

// Session is one show: who is on stage, how they are patched, and who is live.
type Session struct {
	Name    string          `json:"name"`
	Routing routing.Config  `json:"routing"`
	Live    routing.Toggles `json:"live"`
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	return Session{
		Name:    s.Name,
		Routing: *s.Routing.Clone(),
		Live:    s.Live.Clone(),
	}
}

// Store is a file-backed Session. Writers are serialized; the last write wins.
// Readers get private copies.
type Store struct {
	mu     sync.RWMutex
	path   string
	cur    Session
	logger *zap.Logger
}

// Open loads the session at path. A missing file yields an empty session that
// is created on the first write.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logging.OrNop(logger)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Clone()
}

// Replace validates sess and makes it current. Toggles are resized to the
// routing, keeping existing flags by position.
func (s *Store) Replace(sess Session) error {
	sess = sess.Clone()
	if err := sess.Routing.Validate(); err != nil {
		return err
	}
	sess.Live = sess.Live.Resize(&sess.Routing)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = sess
	return s.saveLocked()
}

// SetRouting replaces the routing configuration and keeps the name and the
// toggles that still line up.
func (s *Store) SetRouting(cfg routing.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Routing = *cfg.Clone()
	s.cur.Live = s.cur.Live.Resize(&s.cur.Routing)
	return s.saveLocked()
}

// SetToggles replaces the live state. The vector must match the current
// routing exactly.
func (s *Store) SetToggles(t routing.Toggles) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := t.Check(&s.cur.Routing); err != nil {
		return err
	}
	s.cur.Live = t.Clone()
	return s.saveLocked()
}

// Rename sets the session name.
func (s *Store) Rename(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Name = name
	return s.saveLocked()
}

// Reload re-reads the backing file. It reports whether the session changed.
func (s *Store) Reload() error {
	_, err := s.reload()
	return err
}

func (s *Store) reload() (bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	sess, err := Decode(f)
	if err != nil {
		return false, fmt.Errorf("%s: %w", s.path, err)
	}
	if err := sess.Routing.Validate(); err != nil {
		return false, fmt.Errorf("%s: %w", s.path, err)
	}
	sess.Live = sess.Live.Resize(&sess.Routing)

	s.mu.Lock()
	defer s.mu.Unlock()
	if reflect.DeepEqual(s.cur, sess) {
		return false, nil
	}
	s.cur = sess
	s.logger.Info("session loaded",
		zap.String("path", s.path),
		zap.String("name", sess.Name),
		zap.Int("artists", len(sess.Routing.Artists)),
		zap.Int("instruments", len(sess.Routing.Instruments)),
		zap.Int("fx_units", len(sess.Routing.FXUnits)))
	return true, nil
}

// Export writes the current session as indented JSON.
func (s *Store) Export(w io.Writer) error {
	sess := s.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(sess)
}

// Import replaces the session with one read from r, in the native format or
// the legacy flat key format.
func (s *Store) Import(r io.Reader) error {
	sess, err := Decode(r)
	if err != nil {
		return err
	}
	return s.Replace(sess)
}

func (s *Store) saveLocked() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(s.cur, "", "    ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	s.logger.Debug("session saved", zap.String("path", s.path))
	return nil
}

// Decode reads a session document. Documents with a top-level "routing" key
// are native; anything else is read as the legacy flat key set.
func Decode(r io.Reader) (Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Session{}, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}

	if _, ok := top["routing"]; ok {
		var sess Session
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sess); err != nil {
			return Session{}, fmt.Errorf("decode session: %w", err)
		}
		return sess, nil
	}

	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return Session{}, fmt.Errorf("decode legacy session: %w", err)
	}
	return FromFlat(flat), nil
}
