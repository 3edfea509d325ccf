package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workhours/internal/middleware"
	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/service"
	"workhours/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	router    *gin.Engine
	employees service.EmployeeService
	roles     service.RoleService
	admin     model.Employee
	token     string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	st := store.New(store.MemoryTables())
	require.NoError(t, st.Load(ctx))

	log := zerolog.Nop()
	txm := repository.NewNoopTransactionManager()
	now := func() time.Time { return time.Date(2023, 9, 13, 10, 0, 0, 0, time.UTC) }

	history := service.NewHistoryService(st, nil, nil, now, log)
	sessions := service.NewSessionService(st, repository.NewMemorySlot(), service.SessionConfig{Secret: []byte("test-secret")}, log)
	roles := service.NewRoleService(st, history, txm, log)
	employees := service.NewEmployeeService(st, history, sessions, txm, log)
	schools := service.NewSchoolService(st, history, txm, log)
	entries := service.NewWorkEntryService(st, history, txm, now, log)
	positions := service.NewPositionService(st, history, txm, log)
	aggregation := service.NewAggregationService(st, now, time.Sunday)
	reports := service.NewReportService(aggregation, schools, log)
	auth := middleware.NewAuth(sessions, roles, false, 3600)

	r := gin.New()
	api := r.Group("")
	NewAuthHandler(sessions, roles, auth).RegisterRoutes(api)
	NewEmployeeHandler(employees, auth).RegisterRoutes(api)
	NewSchoolHandler(schools, auth).RegisterRoutes(api)
	NewWorkEntryHandler(entries, auth).RegisterRoutes(api)
	NewPositionHandler(positions, auth).RegisterRoutes(api)
	NewRoleHandler(roles, auth).RegisterRoutes(api)
	NewHistoryHandler(history, auth).RegisterRoutes(api)
	NewHoursHandler(aggregation, reports, auth, now).RegisterRoutes(api)

	_, err := roles.SeedAdministratorRole(ctx)
	require.NoError(t, err)
	admin, err := employees.CreateEmployee(ctx, service.CreateEmployeeRequest{
		Name: "Admin", Username: "admin", Password: "admin", Role: model.RoleAdministrator,
	})
	require.NoError(t, err)

	e := &env{router: r, employees: employees, roles: roles, admin: admin}
	e.token = e.login(t, "admin", "admin")
	return e
}

func (e *env) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/login", service.LoginRequest{Username: username, Password: password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return data[service.Session](t, rec).Token
}

func data[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.NewValidationError("name", "required"), http.StatusBadRequest},
		{&service.RefusalError{Entity: "role", Reason: "last"}, http.StatusConflict},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrSessionExpired, http.StatusUnauthorized},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}

func TestAuth_LoginMeLogout(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/api/auth/me", nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := data[MeResponse](t, rec)
	assert.Equal(t, e.admin.ID, me.Employee.ID)
	assert.Equal(t, model.AllPermissions(), me.Permissions)

	rec = e.do(http.MethodPost, "/api/auth/logout", nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/api/auth/me", nil, e.token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_BadCredentials(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/auth/login", service.LoginRequest{Username: "admin", Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodGet, "/api/schools", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPermissions_ReadOnlyRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.roles.CreateRole(ctx, service.RoleRequest{Name: "Lector", Permissions: model.Permissions{Read: true}})
	require.NoError(t, err)
	_, err = e.employees.CreateEmployee(ctx, service.CreateEmployeeRequest{Name: "Ana", Username: "ana", Password: "pw", Role: "Lector"})
	require.NoError(t, err)
	token := e.login(t, "ana", "pw")

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/schools", nil, token).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/schools", service.SchoolRequest{Name: "A"}, token).Code)
}

func (e *env) createSchool(t *testing.T, name string) model.School {
	t.Helper()
	rec := e.do(http.MethodPost, "/api/schools", service.SchoolRequest{Name: name}, e.token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return data[model.School](t, rec)
}

func (e *env) submit(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(http.MethodPost, "/api/work-entries", body, e.token)
}

func TestWorkEntries_SubmitUpdateAndEditHistory(t *testing.T) {
	e := newEnv(t)
	school := e.createSchool(t, "San José")

	rec := e.submit(t, service.SubmitWorkEntriesRequest{Entries: []service.WorkEntryInput{
		{EmployeeID: e.admin.ID, SchoolID: school.ID, Date: "2023-09-11", Hours: decimal.NewFromInt(4)},
		{EmployeeID: e.admin.ID, SchoolID: school.ID, Date: "2023-09-12", Hours: decimal.NewFromFloat(2.5)},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := data[[]model.WorkEntry](t, rec)
	require.Len(t, created, 2)

	rec = e.do(http.MethodPut, "/api/work-entries/"+created[0].ID, map[string]any{"hours": 3, "edited_by": "Luis"}, e.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := data[model.WorkEntry](t, rec)
	assert.True(t, updated.Hours.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "Luis", updated.LastEditedBy)

	rec = e.do(http.MethodGet, "/api/work-entries/"+created[0].ID+"/edits", nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	edits := data[[]service.EditHistoryItem](t, rec)
	require.Len(t, edits, 1)
	assert.Equal(t, "San José", edits[0].SchoolName)

	rec = e.do(http.MethodGet, "/api/edit-history", nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, data[[]service.EditHistoryItem](t, rec), 1)
}

func TestWorkEntries_SubmitRejectsWholeBatch(t *testing.T) {
	e := newEnv(t)
	school := e.createSchool(t, "A")

	rec := e.submit(t, service.SubmitWorkEntriesRequest{Entries: []service.WorkEntryInput{
		{EmployeeID: e.admin.ID, SchoolID: school.ID, Date: "2023-09-11", Hours: decimal.NewFromInt(4)},
		{EmployeeID: e.admin.ID, SchoolID: school.ID, Date: "2023-09-12", Hours: decimal.NewFromFloat(0.3)},
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/api/work-entries?employee_id="+e.admin.ID, nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, data[[]model.WorkEntry](t, rec))
}

func TestSchools_GuardedAndForcedDelete(t *testing.T) {
	e := newEnv(t)
	school := e.createSchool(t, "A")
	rec := e.submit(t, map[string]any{"employee_id": e.admin.ID, "school_id": school.ID, "date": "2023-09-11", "hours": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(http.MethodDelete, "/api/schools/"+school.ID, nil, e.token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodDelete, "/api/schools/"+school.ID+"?force=true", nil, e.token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/api/schools/"+school.ID, nil, e.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployees_LastAdministratorRefused(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodDelete, "/api/employees/"+e.admin.ID, nil, e.token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPut, "/api/employees/"+e.admin.ID, map[string]any{"active": false}, e.token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHistory_PaginatedAndFiltered(t *testing.T) {
	e := newEnv(t)
	e.createSchool(t, "A")
	e.createSchool(t, "B")

	rec := e.do(http.MethodGet, "/api/history?limit=1&entity_type=school", nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	page := data[struct {
		Items      []model.HistoryLog `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "B", page.Items[0].EntityName)
	assert.EqualValues(t, 2, page.Pagination.Total)

	rec = e.do(http.MethodGet, "/api/history/actions", nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{model.ActionCreate, model.ActionUpdate, model.ActionDelete}, data[[]string](t, rec))
}

func TestHours_SummaryAndExport(t *testing.T) {
	e := newEnv(t)
	school := e.createSchool(t, "San José")
	rec := e.submit(t, service.SubmitWorkEntriesRequest{Entries: []service.WorkEntryInput{
		{EmployeeID: e.admin.ID, SchoolID: school.ID, Date: "2023-09-11", Hours: decimal.NewFromInt(4)},
		{EmployeeID: e.admin.ID, SchoolID: school.ID, Date: "2023-08-31", Hours: decimal.NewFromInt(3)},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/hours/summary?period=month&employee_id="+e.admin.ID, nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := data[model.HoursSummary](t, rec)
	assert.True(t, summary.Hours.Equal(decimal.NewFromInt(4)), summary.Hours.String())

	rec = e.do(http.MethodGet, "/api/hours/summary?period=month&month=8&year=2023&school_id="+school.ID, nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, data[model.HoursSummary](t, rec).Hours.Equal(decimal.NewFromInt(3)))

	rec = e.do(http.MethodGet, "/api/hours/summary?period=fortnight&employee_id="+e.admin.ID, nil, e.token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/api/hours/schools/"+school.ID+"/monthly/export", nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "horas_san_josé_2023_09.xlsx")

	rec = e.do(http.MethodGet, "/api/hours/schools/missing/monthly", nil, e.token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodGet, "/api/hours/employees/"+e.admin.ID+"/schools", nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, data[[]model.School](t, rec), 1)
}

func TestWorkEntries_UpdateValidatesHours(t *testing.T) {
	e := newEnv(t)
	school := e.createSchool(t, "A")
	rec := e.submit(t, map[string]any{"employee_id": e.admin.ID, "school_id": school.ID, "date": "2023-09-11", "hours": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := data[[]model.WorkEntry](t, rec)[0]

	for _, hours := range []float64{-1, 0, 24.5, 37.3, 1.3} {
		rec = e.do(http.MethodPut, "/api/work-entries/"+entry.ID, map[string]any{"hours": hours}, e.token)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "hours %v", hours)
	}

	rec = e.do(http.MethodGet, "/api/work-entries/"+entry.ID+"/edits", nil, e.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, data[[]service.EditHistoryItem](t, rec))

	rec = e.do(http.MethodPut, "/api/work-entries/"+entry.ID, map[string]any{"hours": 2.5}, e.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2.5", data[model.WorkEntry](t, rec).Hours.String())
}
