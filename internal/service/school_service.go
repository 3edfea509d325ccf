package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// --- DTOs ---

type SchoolRequest struct {
	Name string `json:"name" binding:"required"`
}

// --- Interface ---

type SchoolService interface {
	CreateSchool(ctx context.Context, req SchoolRequest) (model.School, error)
	UpdateSchool(ctx context.Context, id string, req SchoolRequest) (model.School, error)
	DeleteSchool(ctx context.Context, id string) error
	DeleteSchoolAndResetHours(ctx context.Context, id string) error
	GetSchool(ctx context.Context, id string) (model.School, error)
	ListSchools(ctx context.Context) []model.School
}

type schoolService struct {
	store     *store.Store
	history   HistoryService
	txManager repository.TransactionManager
	log       zerolog.Logger
}

func NewSchoolService(st *store.Store, history HistoryService, txManager repository.TransactionManager, log zerolog.Logger) SchoolService {
	return &schoolService{
		store:     st,
		history:   history,
		txManager: txManager,
		log:       log.With().Str("service", "school").Logger(),
	}
}

// --- CRUD ---

func (s *schoolService) CreateSchool(ctx context.Context, req SchoolRequest) (model.School, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.School{}, NewValidationError("name", "is required")
	}

	now := time.Now()
	school := model.School{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.store.Schools.Insert(ctx, school); err != nil {
		s.log.Error().Err(err).Msg("failed to create school")
		return model.School{}, err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionCreate,
		Description: fmt.Sprintf("Colegio %s añadido", school.Name),
		EntityType:  model.EntitySchool,
		EntityName:  school.Name,
		Details:     map[string]any{"school_id": school.ID},
	})
	return school, nil
}

func (s *schoolService) UpdateSchool(ctx context.Context, id string, req SchoolRequest) (model.School, error) {
	prior, ok := s.store.Schools.Get(id)
	if !ok {
		return model.School{}, notFound("school", id)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.School{}, NewValidationError("name", "is required")
	}

	school := prior
	school.Name = name
	school.UpdatedAt = time.Now()
	if err := s.store.Schools.Update(ctx, school); err != nil {
		s.log.Error().Err(err).Str("school_id", id).Msg("failed to update school")
		return model.School{}, err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionUpdate,
		Description: fmt.Sprintf("Colegio %s actualizado", school.Name),
		EntityType:  model.EntitySchool,
		EntityName:  school.Name,
		Details:     map[string]any{"school_id": id, "previous_name": prior.Name},
	})
	return school, nil
}

// DeleteSchool is the guarded delete: it is refused while any work entry references the school.
func (s *schoolService) DeleteSchool(ctx context.Context, id string) error {
	school, ok := s.store.Schools.Get(id)
	if !ok {
		return notFound("school", id)
	}
	if n := len(s.store.EntriesOfSchool(id)); n > 0 {
		return refuse(ctx, s.history, s.log, model.EntitySchool, school.Name,
			fmt.Sprintf("No se puede eliminar el colegio %s: tiene %d registros de horas asociados", school.Name, n))
	}

	steps := append(s.unassign(id), s.store.Schools.Removing([]string{id}))
	if err := store.Commit(ctx, s.txManager, steps...); err != nil {
		s.log.Error().Err(err).Str("school_id", id).Msg("failed to delete school")
		return err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionDelete,
		Description: fmt.Sprintf("Colegio %s eliminado", school.Name),
		EntityType:  model.EntitySchool,
		EntityName:  school.Name,
		Details:     map[string]any{"school_id": id},
	})
	return nil
}

// DeleteSchoolAndResetHours is the cascading delete: work entries and their
// edit records go first, then the school itself.
func (s *schoolService) DeleteSchoolAndResetHours(ctx context.Context, id string) error {
	school, ok := s.store.Schools.Get(id)
	if !ok {
		return notFound("school", id)
	}

	entries := s.store.EntriesOfSchool(id)
	steps := []store.Step{
		s.store.EditRecords.Removing(s.store.EditsOfEntries(entries)),
		s.store.WorkEntries.Removing(entries),
	}
	steps = append(steps, s.unassign(id)...)
	steps = append(steps, s.store.Schools.Removing([]string{id}))
	if err := store.Commit(ctx, s.txManager, steps...); err != nil {
		s.log.Error().Err(err).Str("school_id", id).Msg("failed to delete school and reset hours")
		return err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionDelete,
		Description: fmt.Sprintf("Colegio %s eliminado y sus %d registros de horas reiniciados", school.Name, len(entries)),
		EntityType:  model.EntitySchool,
		EntityName:  school.Name,
		Details:     map[string]any{"school_id": id, "work_entries_removed": len(entries), "cascade": true},
	})
	return nil
}

func (s *schoolService) GetSchool(_ context.Context, id string) (model.School, error) {
	school, ok := s.store.Schools.Get(id)
	if !ok {
		return model.School{}, notFound("school", id)
	}
	return school, nil
}

func (s *schoolService) ListSchools(_ context.Context) []model.School {
	return s.store.Schools.All()
}

// unassign drops schoolID from every employee's assigned schools
func (s *schoolService) unassign(schoolID string) []store.Step {
	var steps []store.Step
	for _, emp := range s.store.Employees.Filter(func(e model.Employee) bool { return e.IsAssignedTo(schoolID) }) {
		emp.AssignedSchools = slices.DeleteFunc(slices.Clone(emp.AssignedSchools), func(id string) bool { return id == schoolID })
		steps = append(steps, s.store.Employees.Updating(emp))
	}
	return steps
}
