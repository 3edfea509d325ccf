// Package store holds the in-memory record collections the services read from.
// Derived views are always recomputed from these collections and never cached.
package store

import (
	"context"

	"workhours/internal/model"
	"workhours/internal/repository"
)

// Tables bundles the persistence tables backing a Store
type Tables struct {
	Employees   repository.Table[model.Employee]
	Schools     repository.Table[model.School]
	WorkEntries repository.Table[model.WorkEntry]
	EditRecords repository.Table[model.EditRecord]
	Positions   repository.Table[model.Position]
	Roles       repository.Table[model.Role]
	History     repository.Table[model.HistoryLog]
}

// MemoryTables returns a fresh set of in-memory tables
func MemoryTables() Tables {
	return Tables{
		Employees:   repository.NewMemoryTable[model.Employee](),
		Schools:     repository.NewMemoryTable[model.School](),
		WorkEntries: repository.NewMemoryTable[model.WorkEntry](),
		EditRecords: repository.NewMemoryTable[model.EditRecord](),
		Positions:   repository.NewMemoryTable[model.Position](),
		Roles:       repository.NewMemoryTable[model.Role](),
		History:     repository.NewMemoryTable[model.HistoryLog](),
	}
}

// Store exclusively owns every entity collection
type Store struct {
	Employees   *Collection[model.Employee]
	Schools     *Collection[model.School]
	WorkEntries *Collection[model.WorkEntry]
	EditRecords *Collection[model.EditRecord]
	Positions   *Collection[model.Position]
	Roles       *Collection[model.Role]
	History     *Collection[model.HistoryLog]
}

// New wires collections over the given tables. Call Load before serving reads.
func New(t Tables) *Store {
	return &Store{
		Employees:   newCollection("employees", t.Employees),
		Schools:     newCollection("schools", t.Schools),
		WorkEntries: newCollection("work_entries", t.WorkEntries),
		EditRecords: newCollection("edit_records", t.EditRecords),
		Positions:   newCollection("positions", t.Positions),
		Roles:       newCollection("roles", t.Roles),
		History:     newCollection("history_logs", t.History),
	}
}

// Load fills every collection from its table
func (s *Store) Load(ctx context.Context) error {
	loaders := []func(context.Context) error{
		s.Employees.load,
		s.Schools.load,
		s.WorkEntries.load,
		s.EditRecords.load,
		s.Positions.load,
		s.Roles.load,
		s.History.load,
	}
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Commit persists every step inside one transaction and mirrors them only after
// the transaction committed. On failure the mirror is left untouched.
func Commit(ctx context.Context, txManager repository.TransactionManager, steps ...Step) error {
	err := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, step := range steps {
			if err := step.Persist(txCtx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, step := range steps {
		step.Apply()
	}
	return nil
}

// EntriesOfEmployee returns the work entry ids logged by employeeID
func (s *Store) EntriesOfEmployee(employeeID string) []string {
	return ids(s.WorkEntries.Filter(func(w model.WorkEntry) bool { return w.EmployeeID == employeeID }))
}

// EntriesOfSchool returns the work entry ids logged at schoolID
func (s *Store) EntriesOfSchool(schoolID string) []string {
	return ids(s.WorkEntries.Filter(func(w model.WorkEntry) bool { return w.SchoolID == schoolID }))
}

// EditsOfEntries returns the edit record ids owned by any of the given work entries
func (s *Store) EditsOfEntries(entryIDs []string) []string {
	owners := make(map[string]struct{}, len(entryIDs))
	for _, id := range entryIDs {
		owners[id] = struct{}{}
	}
	return ids(s.EditRecords.Filter(func(e model.EditRecord) bool {
		_, ok := owners[e.WorkEntryID]
		return ok
	}))
}

func ids[T repository.Record](rows []T) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.GetID())
	}
	return out
}
