package store

import (
	"context"
	"errors"
	"testing"

	"workhours/internal/model"
	"workhours/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTable[T repository.Record] struct {
	repository.Table[T]
	err error
}

func (f failingTable[T]) Insert(context.Context, *T) error { return f.err }
func (f failingTable[T]) Update(context.Context, *T) error { return f.err }
func (f failingTable[T]) Delete(context.Context, string) error { return f.err }
func (f failingTable[T]) DeleteMany(context.Context, []string) error { return f.err }

func TestCollection_KeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New(MemoryTables())

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Schools.Insert(ctx, model.School{ID: id, Name: "School " + id}))
	}

	got := s.Schools.All()
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "b", got[2].ID)

	require.NoError(t, s.Schools.Update(ctx, model.School{ID: "a", Name: "Renamed"}))
	got = s.Schools.All()
	assert.Equal(t, "a", got[1].ID, "update keeps position")
	assert.Equal(t, "Renamed", got[1].Name)
}

func TestCollection_PersistenceFailureLeavesMirrorUntouched(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")

	tables := MemoryTables()
	tables.Schools = failingTable[model.School]{Table: repository.NewMemoryTable[model.School](), err: boom}
	s := New(tables)

	err := s.Schools.Insert(ctx, model.School{ID: "x", Name: "X"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Schools.Len())
}

func TestCollection_RemovalIsTwoPhase(t *testing.T) {
	ctx := context.Background()
	tables := MemoryTables()
	s := New(tables)

	require.NoError(t, s.Positions.Insert(ctx, model.Position{ID: "p1", Name: "Docente"}))
	require.NoError(t, s.Positions.Insert(ctx, model.Position{ID: "p2", Name: "Auxiliar"}))

	rm := s.Positions.Removing([]string{"p1"})
	require.NoError(t, rm.Persist(ctx))

	persisted, err := tables.Positions.SelectAll(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
	assert.Equal(t, 2, s.Positions.Len(), "mirror changes only on Apply")

	rm.Apply()
	_, ok := s.Positions.Get("p1")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Positions.Len())
}

func TestCommit_MirrorsOnlyAfterEveryStepPersisted(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("constraint violated")

	tables := MemoryTables()
	tables.EditRecords = failingTable[model.EditRecord]{Table: repository.NewMemoryTable[model.EditRecord](), err: boom}
	s := New(tables)
	txm := repository.NewNoopTransactionManager()

	require.NoError(t, s.WorkEntries.Insert(ctx, model.WorkEntry{ID: "w1", Hours: decimal.NewFromInt(2)}))

	err := Commit(ctx, txm,
		s.WorkEntries.Updating(model.WorkEntry{ID: "w1", Hours: decimal.NewFromInt(3)}),
		s.EditRecords.Inserting(model.EditRecord{ID: "r1", WorkEntryID: "w1"}),
	)
	require.ErrorIs(t, err, boom)

	w, _ := s.WorkEntries.Get("w1")
	assert.True(t, w.Hours.Equal(decimal.NewFromInt(2)), "mirror keeps the old hours")
	assert.Equal(t, 0, s.EditRecords.Len())

	require.NoError(t, Commit(ctx, txm,
		s.WorkEntries.Updating(model.WorkEntry{ID: "w1", Hours: decimal.NewFromInt(4)}),
		s.WorkEntries.Removing(nil),
	))
	w, _ = s.WorkEntries.Get("w1")
	assert.True(t, w.Hours.Equal(decimal.NewFromInt(4)))
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()
	tables := MemoryTables()

	require.NoError(t, tables.Employees.Insert(ctx, &model.Employee{ID: "e1", Name: "Ana"}))
	require.NoError(t, tables.WorkEntries.Insert(ctx, &model.WorkEntry{ID: "w1", EmployeeID: "e1", SchoolID: "s1"}))
	require.NoError(t, tables.WorkEntries.Insert(ctx, &model.WorkEntry{ID: "w2", EmployeeID: "e2", SchoolID: "s1"}))
	require.NoError(t, tables.EditRecords.Insert(ctx, &model.EditRecord{ID: "r1", WorkEntryID: "w1"}))

	s := New(tables)
	require.NoError(t, s.Load(ctx))

	emp, ok := s.Employees.Get("e1")
	require.True(t, ok)
	assert.Equal(t, "Ana", emp.Name)

	assert.Equal(t, []string{"w1"}, s.EntriesOfEmployee("e1"))
	assert.Equal(t, []string{"w1", "w2"}, s.EntriesOfSchool("s1"))
	assert.Equal(t, []string{"r1"}, s.EditsOfEntries([]string{"w1", "w2"}))
}
