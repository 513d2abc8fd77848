// Package history provides storage for evaluations performed by the CLI and REPL.
// Entries are kept oldest-first in a single JSON file, by default ~/.calc/history.json.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pengelbrecht/calc/internal/calculator"
)

// Entry is one recorded evaluation.
type Entry struct {
	Op     calculator.Op `json:"op"`
	A      float64       `json:"a"`
	B      float64       `json:"b"`
	Result float64       `json:"result"`
	Error  string        `json:"error,omitempty"`
	At     time.Time     `json:"at"`
}

// entryJSON is the on-disk form of Entry.
type entryJSON struct {
	Op     calculator.Op `json:"op"`
	A      number        `json:"a"`
	B      number        `json:"b"`
	Result number        `json:"result"`
	Error  string        `json:"error,omitempty"`
	At     time.Time     `json:"at"`
}

// number encodes NaN and ±Inf as the strings "NaN", "+Inf" and "-Inf",
// and every finite value as a JSON number.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

func (n *number) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*n = number(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*n = number(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Op:     e.Op,
		A:      number(e.A),
		B:      number(e.B),
		Result: number(e.Result),
		Error:  e.Error,
		At:     e.At,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry{
		Op:     raw.Op,
		A:      float64(raw.A),
		B:      float64(raw.B),
		Result: float64(raw.Result),
		Error:  raw.Error,
		At:     raw.At,
	}
	return nil
}

// NewEntry builds an entry from an evaluation result.
func NewEntry(op calculator.Op, a, b, result float64, err error) Entry {
	e := Entry{Op: op, A: a, B: b, Result: result, At: time.Now().UTC()}
	if err != nil {
		e.Error = err.Error()
		e.Result = 0
	}
	return e
}

// Store manages the history file.
type Store struct {
	path       string
	maxEntries int
	mu         sync.Mutex
}

// ErrEmpty is returned by Last when no entries exist.
var ErrEmpty = errors.New("history is empty")

// NewStore creates a store backed by path, keeping at most maxEntries entries.
// A non-positive maxEntries means unlimited.
func NewStore(path string, maxEntries int) *Store {
	return &Store{
		path:       path,
		maxEntries: maxEntries,
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Append adds an entry, dropping the oldest entries beyond the cap.
func (s *Store) Append(entry Entry) error {
	return s.AppendAll([]Entry{entry})
}

// AppendAll adds entries in order with a single rewrite of the file.
func (s *Store) AppendAll(add []Entry) error {
	if len(add) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries = append(entries, add...)
	if s.maxEntries > 0 && len(entries) > s.maxEntries {
		entries = entries[len(entries)-s.maxEntries:]
	}
	return s.write(entries)
}

// List returns all entries, oldest first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Last returns the most recent entry.
// Returns ErrEmpty if no entries exist.
func (s *Store) Last() (Entry, error) {
	entries, err := s.List()
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, ErrEmpty
	}
	return entries[len(entries)-1], nil
}

// Clear removes the history file.
// Does not return an error if the file doesn't exist.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}

func (s *Store) read() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return entries, nil
}

// write replaces the file via a temp file and rename.
func (s *Store) write(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
