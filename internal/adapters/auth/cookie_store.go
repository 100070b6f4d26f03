package auth

import (
	"strings"
	"sync"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

// CookieStore holds the mutable session cookie set, ordered by first
// insertion and unique by name. Every non-empty update notifies the
// listener with the full current set, never a delta.
type CookieStore struct {
	mu       sync.Mutex
	order    []string
	values   map[string]string
	listener func([]domain.Cookie)
}

func NewCookieStore() *CookieStore {
	return &CookieStore{values: map[string]string{}}
}

func (s *CookieStore) SetListener(fn func([]domain.Cookie)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// Update upserts the given cookies, preserving insertion order for
// names already present.
func (s *CookieStore) Update(cookies []domain.Cookie) {
	if len(cookies) == 0 {
		return
	}

	s.mu.Lock()
	for _, c := range cookies {
		if _, ok := s.values[c.Name]; !ok {
			s.order = append(s.order, c.Name)
		}
		s.values[c.Name] = c.Value
	}
	all := s.allLocked()
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(all)
	}
}

func (s *CookieStore) All() []domain.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allLocked()
}

func (s *CookieStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[name]
	return value, ok
}

// Header renders the set in Cookie-header form.
func (s *CookieStore) Header() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := make([]string, 0, len(s.order))
	for _, name := range s.order {
		pairs = append(pairs, name+"="+s.values[name])
	}
	return strings.Join(pairs, "; ")
}

func (s *CookieStore) allLocked() []domain.Cookie {
	all := make([]domain.Cookie, 0, len(s.order))
	for _, name := range s.order {
		all = append(all, domain.Cookie{Name: name, Value: s.values[name]})
	}
	return all
}
