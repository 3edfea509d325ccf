package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/store"
	"workhours/pkg/ctxutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateEmployeeRequest struct {
	Name            string   `json:"name" binding:"required"`
	Position        string   `json:"position"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	Active          *bool    `json:"active"`
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	Role            string   `json:"role"`
	AssignedSchools []string `json:"assigned_schools"`
}

// UpdateEmployeeRequest uses pointers so nil = not sent
type UpdateEmployeeRequest struct {
	Name            *string   `json:"name"`
	Position        *string   `json:"position"`
	Phone           *string   `json:"phone"`
	Email           *string   `json:"email"`
	Active          *bool     `json:"active"`
	Username        *string   `json:"username"`
	Password        *string   `json:"password"` // empty keeps the current password
	Role            *string   `json:"role"`
	AssignedSchools *[]string `json:"assigned_schools"`
}

type EmployeeFilter struct {
	ActiveOnly bool
	SchoolID   string
	Role       string
}

// SessionRefresher rewrites a live session after its employee changed
type SessionRefresher interface {
	Refresh(ctx context.Context, sessionID string, emp model.Employee) error
}

// --- Interface ---

type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (model.Employee, error)
	UpdateEmployee(ctx context.Context, id string, req UpdateEmployeeRequest) (model.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	GetEmployee(ctx context.Context, id string) (model.Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) []model.Employee
}

type employeeService struct {
	store     *store.Store
	history   HistoryService
	sessions  SessionRefresher
	txManager repository.TransactionManager
	log       zerolog.Logger
}

// NewEmployeeService creates the employee service. sessions may be nil.
func NewEmployeeService(st *store.Store, history HistoryService, sessions SessionRefresher, txManager repository.TransactionManager, log zerolog.Logger) EmployeeService {
	return &employeeService{
		store:     st,
		history:   history,
		sessions:  sessions,
		txManager: txManager,
		log:       log.With().Str("service", "employee").Logger(),
	}
}

// --- Validation helpers ---

// validate checks emp against the rest of the collection. selfID is excluded
// from the uniqueness checks so an edit may keep its own email and username.
func (s *employeeService) validate(emp model.Employee, selfID string) error {
	if strings.TrimSpace(emp.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if emp.Email != "" {
		if _, err := mail.ParseAddress(emp.Email); err != nil {
			return NewValidationError("email", "invalid email format")
		}
		if _, taken := s.store.Employees.Find(func(e model.Employee) bool {
			return e.ID != selfID && strings.EqualFold(e.Email, emp.Email)
		}); taken {
			return NewValidationError("email", "email already exists")
		}
	}
	if emp.Username != "" {
		if _, taken := s.store.Employees.Find(func(e model.Employee) bool {
			return e.ID != selfID && e.Username == emp.Username
		}); taken {
			return NewValidationError("username", "username already exists")
		}
		if emp.Password == "" {
			return NewValidationError("password", "is required when a username is set")
		}
	}
	if emp.Role != "" {
		if _, ok := s.store.Roles.Find(func(r model.Role) bool { return r.Name == emp.Role }); !ok {
			return NewValidationError("role", fmt.Sprintf("role %q does not exist", emp.Role))
		}
	}
	for i, schoolID := range emp.AssignedSchools {
		if _, ok := s.store.Schools.Get(schoolID); !ok {
			return NewValidationError(fmt.Sprintf("assigned_schools[%d]", i), "unknown school")
		}
	}
	return nil
}

// isLastActiveAdmin reports whether emp is the only active administrator
func (s *employeeService) isLastActiveAdmin(emp model.Employee) bool {
	if !emp.Active || !emp.IsAdministrator() {
		return false
	}
	others := s.store.Employees.Count(func(e model.Employee) bool {
		return e.ID != emp.ID && e.Active && e.IsAdministrator()
	})
	return others == 0
}

func hashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// --- CRUD ---

func (s *employeeService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (model.Employee, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	emp := model.Employee{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		Position:        req.Position,
		Phone:           req.Phone,
		Email:           strings.TrimSpace(req.Email),
		Active:          active,
		Username:        req.Username,
		Password:        req.Password,
		Role:            req.Role,
		AssignedSchools: req.AssignedSchools,
	}
	if emp.AssignedSchools == nil {
		emp.AssignedSchools = []string{}
	}
	if err := s.validate(emp, ""); err != nil {
		return model.Employee{}, err
	}

	if emp.Password != "" {
		hashed, err := hashPassword(emp.Password)
		if err != nil {
			return model.Employee{}, err
		}
		emp.Password = hashed
	}
	now := time.Now()
	emp.CreatedAt, emp.UpdatedAt = now, now

	if err := s.store.Employees.Insert(ctx, emp); err != nil {
		s.log.Error().Err(err).Msg("failed to create employee")
		return model.Employee{}, err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionCreate,
		Description: fmt.Sprintf("Empleado %s añadido", emp.Name),
		EntityType:  model.EntityEmployee,
		EntityName:  emp.Name,
		Details:     map[string]any{"employee_id": emp.ID, "role": emp.Role},
	})
	return emp, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, id string, req UpdateEmployeeRequest) (model.Employee, error) {
	prior, ok := s.store.Employees.Get(id)
	if !ok {
		return model.Employee{}, notFound("employee", id)
	}

	emp := prior
	if req.Name != nil {
		emp.Name = strings.TrimSpace(*req.Name)
	}
	if req.Position != nil {
		emp.Position = *req.Position
	}
	if req.Phone != nil {
		emp.Phone = *req.Phone
	}
	if req.Email != nil {
		emp.Email = strings.TrimSpace(*req.Email)
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}
	if req.Username != nil {
		emp.Username = *req.Username
	}
	newPassword := req.Password != nil && *req.Password != ""
	if newPassword {
		emp.Password = *req.Password
	}
	if req.Role != nil {
		emp.Role = *req.Role
	}
	if req.AssignedSchools != nil {
		emp.AssignedSchools = *req.AssignedSchools
	}

	if err := s.validate(emp, id); err != nil {
		return model.Employee{}, err
	}
	if s.isLastActiveAdmin(prior) && (!emp.Active || !emp.IsAdministrator()) {
		return model.Employee{}, refuse(ctx, s.history, s.log, model.EntityEmployee, prior.Name,
			fmt.Sprintf("No se puede quitar el rol %s ni desactivar a %s: es el último administrador activo", model.RoleAdministrator, prior.Name))
	}

	if newPassword {
		hashed, err := hashPassword(emp.Password)
		if err != nil {
			return model.Employee{}, err
		}
		emp.Password = hashed
	}
	emp.UpdatedAt = time.Now()

	if err := s.store.Employees.Update(ctx, emp); err != nil {
		s.log.Error().Err(err).Str("employee_id", id).Msg("failed to update employee")
		return model.Employee{}, err
	}

	if actor, ok := ctxutil.ActorFromCtx(ctx); ok && actor.EmployeeID == emp.ID && s.sessions != nil {
		if err := s.sessions.Refresh(ctx, actor.SessionID, emp); err != nil {
			s.log.Warn().Err(err).Str("employee_id", id).Msg("failed to refresh session")
		}
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionUpdate,
		Description: fmt.Sprintf("Empleado %s actualizado", emp.Name),
		EntityType:  model.EntityEmployee,
		EntityName:  emp.Name,
		Details:     map[string]any{"employee_id": emp.ID, "active": emp.Active, "role": emp.Role},
	})
	return emp, nil
}

// DeleteEmployee hard-deletes the employee with every work entry and edit record
// referencing them. The last active administrator cannot be deleted.
func (s *employeeService) DeleteEmployee(ctx context.Context, id string) error {
	emp, ok := s.store.Employees.Get(id)
	if !ok {
		return notFound("employee", id)
	}
	if s.isLastActiveAdmin(emp) {
		return refuse(ctx, s.history, s.log, model.EntityEmployee, emp.Name,
			fmt.Sprintf("No se puede eliminar a %s: es el último administrador activo", emp.Name))
	}

	entries := s.store.EntriesOfEmployee(id)
	err := store.Commit(ctx, s.txManager,
		s.store.EditRecords.Removing(s.store.EditsOfEntries(entries)),
		s.store.WorkEntries.Removing(entries),
		s.store.Employees.Removing([]string{id}),
	)
	if err != nil {
		s.log.Error().Err(err).Str("employee_id", id).Msg("failed to delete employee")
		return err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionDelete,
		Description: fmt.Sprintf("Empleado %s eliminado junto con %d registros de horas", emp.Name, len(entries)),
		EntityType:  model.EntityEmployee,
		EntityName:  emp.Name,
		Details:     map[string]any{"employee_id": id, "work_entries_removed": len(entries)},
	})
	return nil
}

func (s *employeeService) GetEmployee(_ context.Context, id string) (model.Employee, error) {
	emp, ok := s.store.Employees.Get(id)
	if !ok {
		return model.Employee{}, notFound("employee", id)
	}
	return emp, nil
}

func (s *employeeService) ListEmployees(_ context.Context, f EmployeeFilter) []model.Employee {
	return s.store.Employees.Filter(func(e model.Employee) bool {
		if f.ActiveOnly && !e.Active {
			return false
		}
		if f.Role != "" && e.Role != f.Role {
			return false
		}
		return f.SchoolID == "" || e.IsAssignedTo(f.SchoolID)
	})
}
