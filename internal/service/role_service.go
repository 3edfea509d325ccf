package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// --- DTOs ---

type RoleRequest struct {
	Name        string            `json:"name" binding:"required"`
	Permissions model.Permissions `json:"permissions"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) []model.Role
	GetRole(ctx context.Context, id string) (model.Role, error)
	CreateRole(ctx context.Context, req RoleRequest) (model.Role, error)
	UpdateRole(ctx context.Context, id string, req RoleRequest) (model.Role, error)
	DeleteRole(ctx context.Context, id string) error
	PermissionsOf(ctx context.Context, roleName string) model.Permissions
	SeedAdministratorRole(ctx context.Context) (model.Role, error)
}

type roleService struct {
	store     *store.Store
	history   HistoryService
	txManager repository.TransactionManager
	log       zerolog.Logger
}

func NewRoleService(st *store.Store, history HistoryService, txManager repository.TransactionManager, log zerolog.Logger) RoleService {
	return &roleService{
		store:     st,
		history:   history,
		txManager: txManager,
		log:       log.With().Str("service", "role").Logger(),
	}
}

// --- Implementation ---

func (s *roleService) ListRoles(_ context.Context) []model.Role {
	return s.store.Roles.All()
}

func (s *roleService) GetRole(_ context.Context, id string) (model.Role, error) {
	role, ok := s.store.Roles.Get(id)
	if !ok {
		return model.Role{}, notFound("role", id)
	}
	return role, nil
}

func (s *roleService) CreateRole(ctx context.Context, req RoleRequest) (model.Role, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Role{}, NewValidationError("name", "is required")
	}

	role := model.Role{ID: uuid.NewString(), Name: name, Permissions: req.Permissions, CreatedAt: time.Now()}
	if err := s.store.Roles.Insert(ctx, role); err != nil {
		s.log.Error().Err(err).Msg("failed to create role")
		return model.Role{}, err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionCreate,
		Description: fmt.Sprintf("Rol %s añadido", role.Name),
		EntityType:  model.EntityRole,
		EntityName:  role.Name,
		Details:     permissionDetails(role.Permissions),
	})
	return role, nil
}

// UpdateRole changes name and permissions. A rename is carried over to the
// employees holding the old name once no other role keeps that name.
func (s *roleService) UpdateRole(ctx context.Context, id string, req RoleRequest) (model.Role, error) {
	prior, ok := s.store.Roles.Get(id)
	if !ok {
		return model.Role{}, notFound("role", id)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Role{}, NewValidationError("name", "is required")
	}
	renamed := prior.Name != name
	if renamed && s.isLastAdministratorRole(prior) {
		return model.Role{}, refuse(ctx, s.history, s.log, model.EntityRole, prior.Name,
			fmt.Sprintf("No se puede renombrar el rol %s: es el único rol de administrador", prior.Name))
	}

	role := prior
	role.Name = name
	role.Permissions = req.Permissions

	steps := []store.Step{s.store.Roles.Updating(role)}
	if renamed && s.namesharers(prior) == 0 {
		steps = append(steps, s.reassign(prior.Name, name)...)
	}
	if err := store.Commit(ctx, s.txManager, steps...); err != nil {
		s.log.Error().Err(err).Str("role_id", id).Msg("failed to update role")
		return model.Role{}, err
	}

	details := permissionDetails(role.Permissions)
	details["previous_name"] = prior.Name
	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionUpdate,
		Description: fmt.Sprintf("Rol %s actualizado", role.Name),
		EntityType:  model.EntityRole,
		EntityName:  role.Name,
		Details:     details,
	})
	return role, nil
}

// DeleteRole removes the role. The only Administrador role cannot be deleted.
// Employees lose the role name once no role with that name remains.
func (s *roleService) DeleteRole(ctx context.Context, id string) error {
	role, ok := s.store.Roles.Get(id)
	if !ok {
		return notFound("role", id)
	}
	if s.isLastAdministratorRole(role) {
		return refuse(ctx, s.history, s.log, model.EntityRole, role.Name,
			fmt.Sprintf("No se puede eliminar el rol %s: es el único rol de administrador", role.Name))
	}

	steps := []store.Step{s.store.Roles.Removing([]string{id})}
	if s.namesharers(role) == 0 {
		steps = append(steps, s.reassign(role.Name, "")...)
	}
	if err := store.Commit(ctx, s.txManager, steps...); err != nil {
		s.log.Error().Err(err).Str("role_id", id).Msg("failed to delete role")
		return err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionDelete,
		Description: fmt.Sprintf("Rol %s eliminado", role.Name),
		EntityType:  model.EntityRole,
		EntityName:  role.Name,
	})
	return nil
}

// PermissionsOf merges the flags of every role carrying roleName. Administrador always has every flag.
func (s *roleService) PermissionsOf(_ context.Context, roleName string) model.Permissions {
	if roleName == model.RoleAdministrator {
		return model.AllPermissions()
	}
	var p model.Permissions
	for _, r := range s.store.Roles.Filter(func(r model.Role) bool { return r.Name == roleName }) {
		p.Create = p.Create || r.Permissions.Create
		p.Read = p.Read || r.Permissions.Read
		p.Update = p.Update || r.Permissions.Update
		p.Delete = p.Delete || r.Permissions.Delete
	}
	return p
}

// SeedAdministratorRole creates the Administrador role when none exists
func (s *roleService) SeedAdministratorRole(ctx context.Context) (model.Role, error) {
	if role, ok := s.store.Roles.Find(func(r model.Role) bool { return r.Name == model.RoleAdministrator }); ok {
		return role, nil
	}

	role := model.Role{
		ID:          uuid.NewString(),
		Name:        model.RoleAdministrator,
		Permissions: model.AllPermissions(),
		CreatedAt:   time.Now(),
	}
	if err := s.store.Roles.Insert(ctx, role); err != nil {
		return model.Role{}, fmt.Errorf("failed to seed role '%s': %w", role.Name, err)
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionCreate,
		Description: fmt.Sprintf("Rol %s creado al iniciar el sistema", role.Name),
		PerformedBy: model.SystemActor,
		EntityType:  model.EntityRole,
		EntityName:  role.Name,
		Details:     permissionDetails(role.Permissions),
	})
	return role, nil
}

// --- Helpers ---

func (s *roleService) isLastAdministratorRole(role model.Role) bool {
	return role.Name == model.RoleAdministrator && s.namesharers(role) == 0
}

// namesharers counts the other roles with the same name as role
func (s *roleService) namesharers(role model.Role) int {
	return s.store.Roles.Count(func(r model.Role) bool {
		return r.ID != role.ID && r.Name == role.Name
	})
}

func (s *roleService) reassign(from, to string) []store.Step {
	var steps []store.Step
	for _, emp := range s.store.Employees.Filter(func(e model.Employee) bool { return e.Role == from }) {
		emp.Role = to
		emp.UpdatedAt = time.Now()
		steps = append(steps, s.store.Employees.Updating(emp))
	}
	return steps
}

func permissionDetails(p model.Permissions) map[string]any {
	return map[string]any{
		"create": p.Create,
		"read":   p.Read,
		"update": p.Update,
		"delete": p.Delete,
	}
}
