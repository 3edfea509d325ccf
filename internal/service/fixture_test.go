package service

import (
	"context"
	"testing"
	"time"

	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/store"
	"workhours/pkg/ctxutil"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	entries []model.HistoryLog
}

func (p *recordingPublisher) PublishHistory(e model.HistoryLog) {
	p.entries = append(p.entries, e)
}

type countingObserver struct {
	mutations map[string]int
	refusals  map[string]int
}

func (o *countingObserver) ObserveMutation(entity, action string) {
	o.mutations[entity+"/"+action]++
}

func (o *countingObserver) ObserveRefusal(entity string) {
	o.refusals[entity]++
}

type fixture struct {
	store       *store.Store
	tables      store.Tables
	slot        repository.SessionSlot
	now         time.Time
	publisher   *recordingPublisher
	observer    *countingObserver
	history     HistoryService
	sessions    SessionService
	employees   EmployeeService
	schools     SchoolService
	entries     WorkEntryService
	positions   PositionService
	roles       RoleService
	aggregation AggregationService
	reports     ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		tables:    store.MemoryTables(),
		slot:      repository.NewMemorySlot(),
		now:       time.Date(2023, 9, 13, 10, 0, 0, 0, time.UTC),
		publisher: &recordingPublisher{},
		observer:  &countingObserver{mutations: map[string]int{}, refusals: map[string]int{}},
	}
	f.store = store.New(f.tables)
	require.NoError(t, f.store.Load(context.Background()))

	clock := func() time.Time { return f.now }
	log := zerolog.Nop()
	txm := repository.NewNoopTransactionManager()

	f.history = NewHistoryService(f.store, f.publisher, f.observer, clock, log)
	f.sessions = NewSessionService(f.store, f.slot, SessionConfig{Secret: []byte("test-secret"), Expiration: time.Hour}, log)
	f.employees = NewEmployeeService(f.store, f.history, f.sessions, txm, log)
	f.schools = NewSchoolService(f.store, f.history, txm, log)
	f.entries = NewWorkEntryService(f.store, f.history, txm, clock, log)
	f.positions = NewPositionService(f.store, f.history, txm, log)
	f.roles = NewRoleService(f.store, f.history, txm, log)
	f.aggregation = NewAggregationService(f.store, clock, time.Sunday)
	f.reports = NewReportService(f.aggregation, f.schools, log)
	return f
}

func actorCtx(emp model.Employee) context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{EmployeeID: emp.ID, Name: emp.Name, Role: emp.Role})
}

func withSession(ctx context.Context, sessionID string) context.Context {
	a, _ := ctxutil.ActorFromCtx(ctx)
	a.SessionID = sessionID
	return ctxutil.WithActor(ctx, a)
}

func (f *fixture) adminRole(t *testing.T) model.Role {
	t.Helper()
	role, err := f.roles.SeedAdministratorRole(context.Background())
	require.NoError(t, err)
	return role
}

func (f *fixture) employee(t *testing.T, name, role string, active bool) model.Employee {
	t.Helper()
	emp, err := f.employees.CreateEmployee(context.Background(), CreateEmployeeRequest{Name: name, Role: role, Active: &active})
	require.NoError(t, err)
	return emp
}

func (f *fixture) school(t *testing.T, name string) model.School {
	t.Helper()
	sc, err := f.schools.CreateSchool(context.Background(), SchoolRequest{Name: name})
	require.NoError(t, err)
	return sc
}

func (f *fixture) workEntry(t *testing.T, emp model.Employee, sc model.School, date string, hours int64) model.WorkEntry {
	t.Helper()
	e, err := f.entries.AddWorkEntry(actorCtx(emp), WorkEntryInput{
		EmployeeID: emp.ID, SchoolID: sc.ID, Date: date, Hours: decimal.NewFromInt(hours),
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) historyCount() int {
	return f.store.History.Len()
}

func (f *fixture) lastHistory() model.HistoryLog {
	all := f.store.History.All()
	return all[len(all)-1]
}

func ptr[T any](v T) *T { return &v }
