package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"workhours/internal/config"
	"workhours/internal/model"
	"workhours/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:               8080,
		Env:                "test",
		CORSOrigins:        "http://localhost:5173",
		DBDriver:           "memory",
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		WeekStart:          "sunday",
		SeedAdminUsername:  "admin",
		SeedAdminPassword:  "admin",
	}
}

func newApp(t *testing.T) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_SeedsAdministrator(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	admins := a.Employees.ListEmployees(ctx, service.EmployeeFilter{ActiveOnly: true, Role: model.RoleAdministrator})
	require.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0].Username)
	assert.Equal(t, model.AllPermissions(), a.Roles.PermissionsOf(ctx, model.RoleAdministrator))

	_, err := a.Sessions.Authenticate(ctx, "admin", "admin")
	require.NoError(t, err)
}

func TestNew_SkipsSeedWhenUsernameTaken(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "workhours.db")

	first, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	admins := first.Employees.ListEmployees(ctx, service.EmployeeFilter{Role: model.RoleAdministrator})
	require.Len(t, admins, 1)
	retired := admins[0]
	retired.Active = false
	require.NoError(t, first.store.Employees.Update(ctx, retired))
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	all := second.Employees.ListEmployees(ctx, service.EmployeeFilter{})
	require.Len(t, all, 1)
	assert.Equal(t, retired.ID, all[0].ID)
	assert.False(t, all[0].Active)
}

func TestNew_RejectsBadWeekStart(t *testing.T) {
	cfg := testConfig()
	cfg.WeekStart = "someday"

	_, err := New(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
}

func TestRouter_EndToEnd(t *testing.T) {
	a := newApp(t)
	r := a.Router()

	do := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(http.MethodPost, "/api/auth/login", "", service.LoginRequest{Username: "admin", Password: "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Data service.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	token := login.Data.Token

	rec = do(http.MethodPost, "/api/schools", token, service.SchoolRequest{Name: "San José"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(http.MethodGet, "/api/history?entity_type=school", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Data struct {
			Items []model.HistoryLog `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Data.Items, 1)
	assert.Equal(t, model.RoleAdministrator, history.Data.Items[0].PerformedBy)

	rec = do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `workhours_mutations_total{action="Añadir",entity="school"} 1`)

	rec = do(http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
