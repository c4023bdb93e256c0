// Package params reads and writes the flat key/value map carried in a game
// URL fragment, e.g. "#game=abc&white=KEY&size=11".
package params

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"ayu/internal/game"
)

// Well known keys.
const (
	KeyGame  = "game"
	KeyWhite = "white"
	KeyBlack = "black"
	KeySize  = "size"
)

// Store is an in-memory view of the fragment parameters.
type Store struct {
	values map[string]string
}

// Parse decodes a fragment, with or without its leading '#'. Parts that are
// not exactly "key=value" are ignored.
func Parse(fragment string) *Store {
	s := &Store{values: make(map[string]string)}
	for _, part := range strings.Split(strings.TrimPrefix(fragment, "#"), "&") {
		kv := strings.Split(part, "=")
		if len(kv) != 2 {
			continue
		}
		k, err := url.QueryUnescape(kv[0])
		if err != nil {
			continue
		}
		v, err := url.QueryUnescape(kv[1])
		if err != nil {
			continue
		}
		s.values[k] = v
	}
	return s
}

// FromURL parses the fragment of a full game URL.
func FromURL(raw string) (*Store, *url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse game url: %w", err)
	}
	return Parse(u.EscapedFragment()), u, nil
}

// Get returns the value for key and whether it is set.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetDefault returns the value for key, or def when it is unset.
func (s *Store) GetDefault(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Int returns key parsed as an integer, or def when unset or not a number.
func (s *Store) Int(key string, def int) int {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Set stores value under key.
func (s *Store) Set(key, value string) { s.values[key] = value }

// Delete removes key.
func (s *Store) Delete(key string) { delete(s.values, key) }

// Encode renders the parameters as a fragment including the leading '#'.
// Keys are sorted so the output is stable.
func (s *Store) Encode() string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(s.values[k]))
	}
	return "#" + strings.Join(parts, "&")
}

// Size returns the configured board size.
func (s *Store) Size() int { return s.Int(KeySize, game.DefaultSize) }

// ColorKey returns the secret for side p, if this viewer holds it.
func (s *Store) ColorKey(p game.Player) (string, bool) {
	switch p {
	case game.White:
		return s.Get(KeyWhite)
	case game.Black:
		return s.Get(KeyBlack)
	}
	return "", false
}

// GameLinks builds the four shareable links for a created game: spectator,
// white only, black only and both sides, in that order.
func GameLinks(base string, created game.CreateResponse) [4]string {
	var links [4]string
	for i := range links {
		s := &Store{values: map[string]string{KeyGame: created.Game}}
		if created.Size != 0 {
			s.Set(KeySize, strconv.Itoa(created.Size))
		}
		if i&1 != 0 {
			s.Set(KeyWhite, created.Keys[0])
		}
		if i&2 != 0 {
			s.Set(KeyBlack, created.Keys[1])
		}
		links[i] = base + s.Encode()
	}
	return links
}
