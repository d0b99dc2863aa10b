// Package query tracks keyed fetches for the dashboard.
//
// Each fetch takes a Ticket from Begin. Only the newest ticket for a key may
// commit, so a slow response to a superseded request can never overwrite the
// result of a newer one. Keys are independent of each other. A failed commit
// records the error but keeps the last good value, so a page can show stale
// data next to an error line.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vanderheijden86/stockpile/pkg/debug"
	"golang.org/x/sync/singleflight"
)

// Well-known keys and prefixes.
const (
	KeyLocationsTree = "locations-tree"
	KeyLabels        = "labels"
	PrefixLocation   = "location/"
	PrefixLocItems   = "location-items/"
	PrefixItems      = "items?"
	PrefixItem       = "item/"
)

// LocationKey is the key for one location's detail.
func LocationKey(id string) string { return PrefixLocation + id }

// LocationItemsKey is the key for the items stored in one location.
func LocationItemsKey(id string) string { return PrefixLocItems + id }

// ItemKey is the key for one item's detail.
func ItemKey(id string) string { return PrefixItem + id }

// Ticket identifies one fetch of a key.
type Ticket struct {
	Key string
	Gen uint64
}

type entry struct {
	gen     uint64 // latest ticket handed out
	epoch   uint64 // bumped by Invalidate; fetches never share across epochs
	value   any
	err     error
	loaded  bool // a value has been committed at least once
	stale   bool // invalidated and not refetched since
	pending bool
}

// Store holds the latest committed value per key. The zero value is not
// usable; call NewStore.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) entry(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// Begin starts a fetch of key and supersedes any fetch still in flight.
func (s *Store) Begin(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(key)
	e.gen++
	e.pending = true
	e.stale = false
	return Ticket{Key: key, Gen: e.gen}
}

// Commit stores the outcome of t's fetch. It returns false, and changes
// nothing, if a newer ticket for the key exists. On err the previous value
// is kept and err is recorded.
func (s *Store) Commit(t Ticket, value any, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(t.Key)
	if t.Gen != e.gen {
		debug.Log("query: dropped stale result for %s (gen %d, latest %d)", t.Key, t.Gen, e.gen)
		return false
	}
	e.pending = false
	e.err = err
	if err == nil {
		e.value = value
		e.loaded = true
		e.stale = false
	}
	return true
}

// Get returns the last committed value for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !e.loaded {
		return nil, false
	}
	return e.value, true
}

// Err returns the error of the last commit for key, if it failed.
func (s *Store) Err(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return e.err
	}
	return nil
}

// NeedsFetch reports whether key must be fetched before its cached value
// can be trusted: it was invalidated, or it has no good value and no fetch
// is in flight.
func (s *Store) NeedsFetch(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.stale {
		return true
	}
	return !e.pending && (!e.loaded || e.err != nil)
}

// Invalidate marks every key equal to or starting with one of prefixes as
// stale and returns the affected keys. Values stay readable until refetched.
// A fetch already running for an invalidated key can no longer be joined
// by Do.
func (s *Store) Invalidate(prefixes ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key, e := range s.entries {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				e.stale = true
				e.epoch++
				keys = append(keys, key)
				break
			}
		}
	}
	return keys
}

// Forget drops every entry, e.g. after logout.
func (s *Store) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		// Keep generations so in-flight fetches still lose.
		e.value, e.err, e.loaded, e.stale, e.pending = nil, nil, false, false, false
		e.epoch++
	}
}

// Do runs fn under a new ticket for key and commits the result. Concurrent
// Do calls for the same key share one execution of fn as long as the key
// is not invalidated in between; the newest ticket commits. committed is
// false when a newer fetch of key superseded this one.
func (s *Store) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (value any, committed bool, err error) {
	t, flight := s.beginFlight(key)
	ch := s.group.DoChan(flight, func() (any, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		err = ctx.Err()
		return nil, s.Commit(t, nil, err), err
	case res := <-ch:
		return res.Val, s.Commit(t, res.Val, res.Err), res.Err
	}
}

// beginFlight is Begin plus the singleflight key for the key's current
// epoch.
func (s *Store) beginFlight(key string) (Ticket, string) {
	t := s.Begin(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return t, fmt.Sprintf("%s#%d", key, s.entries[key].epoch)
}
