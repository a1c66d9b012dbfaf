// File: /repositories/memory/store.go
// Package memory is an in-process repositories.Store used by tests and
// local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vanlife-api/models"
	"vanlife-api/repositories"
)

type state struct {
	nextID       uint
	users        map[uint]models.User
	vans         map[uint]models.Van
	transactions map[uint]models.Transaction
	reviews      map[uint]models.Review
}

func newState() *state {
	return &state{
		users:        make(map[uint]models.User),
		vans:         make(map[uint]models.Van),
		transactions: make(map[uint]models.Transaction),
		reviews:      make(map[uint]models.Review),
	}
}

func (s *state) clone() *state {
	c := &state{
		nextID:       s.nextID,
		users:        make(map[uint]models.User, len(s.users)),
		vans:         make(map[uint]models.Van, len(s.vans)),
		transactions: make(map[uint]models.Transaction, len(s.transactions)),
		reviews:      make(map[uint]models.Review, len(s.reviews)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.vans {
		c.vans[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.reviews {
		c.reviews[k] = v
	}
	return c
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

// Store keeps records in maps. Atomic works on a copy that replaces the
// live state only when the callback succeeds.
type Store struct {
	mu        sync.Mutex
	live      *state
	commitErr error
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{live: newState(), now: time.Now}
}

// FailCommits makes every following Atomic call return err instead of committing.
// A nil err restores normal behavior.
func (s *Store) FailCommits(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

func (s *Store) Users() repositories.UserRepository {
	return &users{h: handle{store: s}}
}

func (s *Store) Vans() repositories.VanRepository {
	return &vans{h: handle{store: s}}
}

func (s *Store) Transactions() repositories.TransactionRepository {
	return &transactions{h: handle{store: s}}
}

func (s *Store) Reviews() repositories.ReviewRepository {
	return &reviews{h: handle{store: s}}
}

func (s *Store) Atomic(ctx context.Context, fn func(tx repositories.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.live.clone()
	if err := fn(&txStore{h: handle{store: s, tx: work}}); err != nil {
		return err
	}
	if s.commitErr != nil {
		return s.commitErr
	}
	s.live = work
	return nil
}

type txStore struct {
	h handle
}

func (t *txStore) Users() repositories.UserRepository               { return &users{h: t.h} }
func (t *txStore) Vans() repositories.VanRepository                 { return &vans{h: t.h} }
func (t *txStore) Transactions() repositories.TransactionRepository { return &transactions{h: t.h} }
func (t *txStore) Reviews() repositories.ReviewRepository           { return &reviews{h: t.h} }

// Atomic inside a transaction joins it.
func (t *txStore) Atomic(_ context.Context, fn func(tx repositories.Store) error) error {
	return fn(t)
}

// handle runs a repository call against the live state under the lock, or
// against a transaction's working copy whose lock is already held.
type handle struct {
	store *Store
	tx    *state
}

func (h handle) do(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return fn(h.store.live)
}

func (h handle) now() time.Time {
	return h.store.now()
}

func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func pageOf[T any](items []T, page repositories.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
