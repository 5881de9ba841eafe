// Package memstore is the in-process backing store used when no mongo is
// configured. Repositories built on it get the same transaction semantics as
// the mongo ones: writes inside RunWithTransaction are journaled and undone in
// reverse order when the transaction fails.
package memstore

import (
	"context"
	"sync"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
)

type txKey struct{}

type journal struct {
	store   *Store
	entries []func()
}

func (j *journal) append(undo func()) {
	j.entries = append(j.entries, undo)
}

func (j *journal) revert() {
	for i := len(j.entries) - 1; i >= 0; i-- {
		j.entries[i]()
	}
	j.entries = nil
}

// Store guards every repository sharing it with one RW lock. A transaction
// holds the write lock until it commits or reverts, so readers never observe a
// partially applied transaction.
type Store struct {
	mu sync.RWMutex
}

func New() *Store {
	return &Store{}
}

func (s *Store) journalOf(c ctx.Ctx) *journal {
	j, ok := c.Value(txKey{}).(*journal)
	if !ok || j.store != s {
		return nil
	}
	return j
}

// InTransaction reports whether c belongs to a running transaction of s
func (s *Store) InTransaction(c ctx.Ctx) bool {
	return s.journalOf(c) != nil
}

func (s *Store) RunWithTransaction(c ctx.Ctx, run func(ctx.Ctx) error) (err error) {
	if s.InTransaction(c) {
		return run(c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j := &journal{store: s}
	txCtx := ctx.From(context.WithValue(c.Context, txKey{}, j), c.Logger)

	defer func() {
		if p := recover(); p != nil {
			j.revert()
			panic(p)
		}
	}()

	if err := run(txCtx); err != nil {
		n := len(j.entries)
		j.revert()
		c.WithFields(log.Fields{"undone": n, "err": err}).Debug("transaction reverted")
		return err
	}
	return nil
}

// Read runs fn under the read lock, or directly inside a transaction
func (s *Store) Read(c ctx.Ctx, fn func()) {
	if s.InTransaction(c) {
		fn()
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Write runs fn under the write lock. Inside a transaction the undo returned
// by fn is journaled instead.
func (s *Store) Write(c ctx.Ctx, fn func() (undo func(), err error)) error {
	if j := s.journalOf(c); j != nil {
		undo, err := fn()
		if err != nil {
			return err
		}
		if undo != nil {
			j.append(undo)
		}
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fn()
	return err
}
