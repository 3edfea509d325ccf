package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/service"
	"workhours/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sqliteServices struct {
	db        *gorm.DB
	store     *store.Store
	sessions  service.SessionService
	employees service.EmployeeService
	schools   service.SchoolService
	entries   service.WorkEntryService
	roles     service.RoleService
}

func newSQLiteServices(t *testing.T) *sqliteServices {
	t.Helper()
	db := openSQLite(t)
	st := store.New(Tables(db))
	require.NoError(t, st.Load(context.Background()))

	log := zerolog.Nop()
	txm := TransactionManager(db)
	history := service.NewHistoryService(st, nil, nil, nil, log)
	sessions := service.NewSessionService(st, repository.NewMemorySlot(), service.SessionConfig{Secret: []byte("test-secret"), Expiration: time.Hour}, log)
	return &sqliteServices{
		db:        db,
		store:     st,
		sessions:  sessions,
		employees: service.NewEmployeeService(st, history, sessions, txm, log),
		schools:   service.NewSchoolService(st, history, txm, log),
		entries:   service.NewWorkEntryService(st, history, txm, nil, log),
		roles:     service.NewRoleService(st, history, txm, log),
	}
}

// reload reads every table back into a fresh store
func (s *sqliteServices) reload(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(Tables(s.db))
	require.NoError(t, st.Load(context.Background()))
	return st
}

func TestSQLite_InactiveEmployeeStaysInactive(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteServices(t)
	inactive := false

	emp, err := s.employees.CreateEmployee(ctx, service.CreateEmployeeRequest{
		Name: "Ana", Username: "ana", Password: "pw", Active: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, emp.Active)

	mirrored, ok := s.store.Employees.Get(emp.ID)
	require.True(t, ok)
	assert.False(t, mirrored.Active)

	stored, ok := s.reload(t).Employees.Get(emp.ID)
	require.True(t, ok)
	assert.False(t, stored.Active)

	_, err = s.sessions.Authenticate(ctx, "ana", "pw")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestSQLite_RolePermissionsKeepFalseFlags(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteServices(t)

	role, err := s.roles.CreateRole(ctx, service.RoleRequest{Name: "Auditor", Permissions: model.Permissions{Create: true}})
	require.NoError(t, err)

	mirrored, ok := s.store.Roles.Get(role.ID)
	require.True(t, ok)
	assert.Equal(t, model.Permissions{Create: true}, mirrored.Permissions)

	stored, ok := s.reload(t).Roles.Get(role.ID)
	require.True(t, ok)
	assert.Equal(t, model.Permissions{Create: true}, stored.Permissions)
}

func TestSQLite_DeleteSchoolAndResetHours(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteServices(t)

	keep, err := s.schools.CreateSchool(ctx, service.SchoolRequest{Name: "A"})
	require.NoError(t, err)
	gone, err := s.schools.CreateSchool(ctx, service.SchoolRequest{Name: "B"})
	require.NoError(t, err)
	emp, err := s.employees.CreateEmployee(ctx, service.CreateEmployeeRequest{Name: "Ana", AssignedSchools: []string{keep.ID, gone.ID}})
	require.NoError(t, err)

	entries, err := s.entries.Submit(ctx, service.MultipleEntries{Entries: []service.WorkEntryInput{
		{EmployeeID: emp.ID, SchoolID: gone.ID, Date: "2023-09-01", Hours: decimal.NewFromInt(2)},
		{EmployeeID: emp.ID, SchoolID: keep.ID, Date: "2023-09-01", Hours: decimal.NewFromInt(3)},
	}})
	require.NoError(t, err)
	edited := entries[0]
	edited.Hours = decimal.NewFromInt(4)
	_, err = s.entries.UpdateWorkEntry(ctx, edited, "Ana")
	require.NoError(t, err)

	require.ErrorIs(t, s.schools.DeleteSchool(ctx, gone.ID), service.ErrRefused)
	require.NoError(t, s.schools.DeleteSchoolAndResetHours(ctx, gone.ID))

	stored := s.reload(t)
	_, ok := stored.Schools.Get(gone.ID)
	assert.False(t, ok)
	require.Len(t, stored.WorkEntries.All(), 1)
	assert.Equal(t, keep.ID, stored.WorkEntries.All()[0].SchoolID)
	assert.Empty(t, stored.EditRecords.All())

	reloaded, ok := stored.Employees.Get(emp.ID)
	require.True(t, ok)
	assert.Equal(t, []string{keep.ID}, reloaded.AssignedSchools)
}

func TestSQLite_DeleteEmployeeCascades(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteServices(t)

	sc, err := s.schools.CreateSchool(ctx, service.SchoolRequest{Name: "A"})
	require.NoError(t, err)
	ana, err := s.employees.CreateEmployee(ctx, service.CreateEmployeeRequest{Name: "Ana"})
	require.NoError(t, err)
	luis, err := s.employees.CreateEmployee(ctx, service.CreateEmployeeRequest{Name: "Luis"})
	require.NoError(t, err)

	anaEntry, err := s.entries.AddWorkEntry(ctx, service.WorkEntryInput{EmployeeID: ana.ID, SchoolID: sc.ID, Date: "2023-09-01", Hours: decimal.NewFromInt(2)})
	require.NoError(t, err)
	anaEntry.Hours = decimal.NewFromInt(5)
	_, err = s.entries.UpdateWorkEntry(ctx, anaEntry, "Ana")
	require.NoError(t, err)
	_, err = s.entries.AddWorkEntry(ctx, service.WorkEntryInput{EmployeeID: luis.ID, SchoolID: sc.ID, Date: "2023-09-02", Hours: decimal.NewFromInt(1)})
	require.NoError(t, err)

	require.NoError(t, s.employees.DeleteEmployee(ctx, ana.ID))

	stored := s.reload(t)
	_, ok := stored.Employees.Get(ana.ID)
	assert.False(t, ok)
	require.Len(t, stored.WorkEntries.All(), 1)
	assert.Equal(t, luis.ID, stored.WorkEntries.All()[0].EmployeeID)
	assert.Empty(t, stored.EditRecords.All())
}

func TestSQLite_LastActiveAdministratorGuard(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteServices(t)
	_, err := s.roles.SeedAdministratorRole(ctx)
	require.NoError(t, err)

	inactive := false
	_, err = s.employees.CreateEmployee(ctx, service.CreateEmployeeRequest{Name: "Ex", Role: model.RoleAdministrator, Active: &inactive})
	require.NoError(t, err)
	admin, err := s.employees.CreateEmployee(ctx, service.CreateEmployeeRequest{Name: "Ana", Role: model.RoleAdministrator})
	require.NoError(t, err)

	require.ErrorIs(t, s.employees.DeleteEmployee(ctx, admin.ID), service.ErrRefused)
	_, ok := s.reload(t).Employees.Get(admin.ID)
	assert.True(t, ok)
}

func TestSQLite_SubmitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteServices(t)

	sc, err := s.schools.CreateSchool(ctx, service.SchoolRequest{Name: "A"})
	require.NoError(t, err)
	emp, err := s.employees.CreateEmployee(ctx, service.CreateEmployeeRequest{Name: "Ana"})
	require.NoError(t, err)

	rejected := decimal.NewFromInt(7)
	require.NoError(t, s.db.Callback().Create().Before("gorm:create").Register("reject_seven_hours", func(tx *gorm.DB) {
		if e, ok := tx.Statement.Dest.(*model.WorkEntry); ok && e.Hours.Equal(rejected) {
			_ = tx.AddError(errors.New("insert rejected"))
		}
	}))

	_, err = s.entries.Submit(ctx, service.MultipleEntries{Entries: []service.WorkEntryInput{
		{EmployeeID: emp.ID, SchoolID: sc.ID, Date: "2023-09-01", Hours: decimal.NewFromInt(2)},
		{EmployeeID: emp.ID, SchoolID: sc.ID, Date: "2023-09-02", Hours: rejected},
	}})
	require.Error(t, err)

	assert.Empty(t, s.store.WorkEntries.All())
	assert.Empty(t, s.reload(t).WorkEntries.All())
	assert.Zero(t, s.store.History.Count(func(h model.HistoryLog) bool { return h.EntityType == model.EntityWorkEntry }))
}
