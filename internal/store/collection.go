package store

import (
	"context"
	"fmt"
	"sync"

	"workhours/internal/repository"
)

// Collection is the ordered in-memory mirror of one persisted table.
// Writes go to the table first; the mirror changes only after persistence succeeds.
type Collection[T repository.Record] struct {
	name  string
	table repository.Table[T]

	mu    sync.RWMutex
	order []string
	byID  map[string]T
}

func newCollection[T repository.Record](name string, table repository.Table[T]) *Collection[T] {
	return &Collection[T]{
		name:  name,
		table: table,
		byID:  make(map[string]T),
	}
}

func (c *Collection[T]) load(ctx context.Context) error {
	rows, err := c.table.SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = make([]string, 0, len(rows))
	c.byID = make(map[string]T, len(rows))
	for _, row := range rows {
		id := row.GetID()
		if _, dup := c.byID[id]; !dup {
			c.order = append(c.order, id)
		}
		c.byID[id] = row
	}
	return nil
}

// Get returns a copy of the record with the given id
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.byID[id]
	return rec, ok
}

// All returns every record in insertion order
func (c *Collection[T]) All() []T {
	return c.Filter(nil)
}

// Filter returns the records matching keep, in insertion order. A nil keep matches everything.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		rec := c.byID[id]
		if keep == nil || keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Find returns the first record matching match
func (c *Collection[T]) Find(match func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.order {
		if rec := c.byID[id]; match(rec) {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Count returns how many records match
func (c *Collection[T]) Count(match func(T) bool) int {
	return len(c.Filter(match))
}

// Len returns the number of records
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Insert persists rec and appends it to the mirror
func (c *Collection[T]) Insert(ctx context.Context, rec T) error {
	if err := c.table.Insert(ctx, &rec); err != nil {
		return fmt.Errorf("insert %s: %w", c.name, err)
	}
	c.put(rec)
	return nil
}

// Update persists rec and overwrites the mirrored copy in place
func (c *Collection[T]) Update(ctx context.Context, rec T) error {
	if err := c.table.Update(ctx, &rec); err != nil {
		return fmt.Errorf("update %s: %w", c.name, err)
	}
	c.put(rec)
	return nil
}

// Delete removes one record from the table and the mirror
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.table.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", c.name, err)
	}
	c.forget([]string{id})
	return nil
}

// Inserting prepares an insert of rec as a Step
func (c *Collection[T]) Inserting(rec T) Step {
	return &write[T]{c: c, rec: rec, persist: c.table.Insert, verb: "insert"}
}

// Updating prepares an update of rec as a Step
func (c *Collection[T]) Updating(rec T) Step {
	return &write[T]{c: c, rec: rec, persist: c.table.Update, verb: "update"}
}

// Removing prepares a delete of ids as a Step
func (c *Collection[T]) Removing(ids []string) Step {
	return &removal[T]{c: c, ids: ids}
}

func (c *Collection[T]) put(rec T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := rec.GetID()
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byID[id] = rec
}

func (c *Collection[T]) forget(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	for _, id := range c.order {
		if _, gone := drop[id]; gone {
			delete(c.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
}

// Step is one write of a multi-record operation. Persist touches the table;
// Apply mirrors the change and must only run once every Persist succeeded.
type Step interface {
	Persist(ctx context.Context) error
	Apply()
}

type write[T repository.Record] struct {
	c       *Collection[T]
	rec     T
	persist func(context.Context, *T) error
	verb    string
}

func (w *write[T]) Persist(ctx context.Context) error {
	if err := w.persist(ctx, &w.rec); err != nil {
		return fmt.Errorf("%s %s: %w", w.verb, w.c.name, err)
	}
	return nil
}

func (w *write[T]) Apply() {
	w.c.put(w.rec)
}

type removal[T repository.Record] struct {
	c   *Collection[T]
	ids []string
}

func (r *removal[T]) Persist(ctx context.Context) error {
	if len(r.ids) == 0 {
		return nil
	}
	if err := r.c.table.DeleteMany(ctx, r.ids); err != nil {
		return fmt.Errorf("delete %s: %w", r.c.name, err)
	}
	return nil
}

func (r *removal[T]) Apply() {
	r.c.forget(r.ids)
}
