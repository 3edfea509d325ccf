package repository

import (
	"context"
	"sync"
)

// memoryTable keeps rows in process memory. It backs the "memory" driver and tests.
type memoryTable[T Record] struct {
	mu    sync.Mutex
	order []string
	rows  map[string]T
}

// NewMemoryTable returns an empty in-memory Table
func NewMemoryTable[T Record]() Table[T] {
	return &memoryTable[T]{rows: make(map[string]T)}
}

func (t *memoryTable[T]) Insert(_ context.Context, rec *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := (*rec).GetID()
	if _, ok := t.rows[id]; ok {
		return ErrDuplicateID
	}
	t.rows[id] = *rec
	t.order = append(t.order, id)
	return nil
}

func (t *memoryTable[T]) SelectAll(_ context.Context) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]T, 0, len(t.order))
	for _, id := range t.order {
		rows = append(rows, t.rows[id])
	}
	return rows, nil
}

func (t *memoryTable[T]) Update(_ context.Context, rec *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := (*rec).GetID()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	t.rows[id] = *rec
	return nil
}

func (t *memoryTable[T]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.remove(id)
	return nil
}

func (t *memoryTable[T]) DeleteMany(_ context.Context, ids []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range ids {
		t.remove(id)
	}
	return nil
}

func (t *memoryTable[T]) remove(id string) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
