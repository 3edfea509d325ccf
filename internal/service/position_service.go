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

type PositionRequest struct {
	Name string `json:"name" binding:"required"`
}

type PositionService interface {
	CreatePosition(ctx context.Context, req PositionRequest) (model.Position, error)
	UpdatePosition(ctx context.Context, id string, req PositionRequest) (model.Position, error)
	DeletePosition(ctx context.Context, id string) error
	GetPosition(ctx context.Context, id string) (model.Position, error)
	ListPositions(ctx context.Context) []model.Position
}

type positionService struct {
	store     *store.Store
	history   HistoryService
	txManager repository.TransactionManager
	log       zerolog.Logger
}

func NewPositionService(st *store.Store, history HistoryService, txManager repository.TransactionManager, log zerolog.Logger) PositionService {
	return &positionService{
		store:     st,
		history:   history,
		txManager: txManager,
		log:       log.With().Str("service", "position").Logger(),
	}
}

func (s *positionService) validateName(name, selfID string) error {
	if name == "" {
		return NewValidationError("name", "is required")
	}
	if _, taken := s.store.Positions.Find(func(p model.Position) bool {
		return p.ID != selfID && strings.EqualFold(p.Name, name)
	}); taken {
		return NewValidationError("name", "position already exists")
	}
	return nil
}

func (s *positionService) CreatePosition(ctx context.Context, req PositionRequest) (model.Position, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.validateName(name, ""); err != nil {
		return model.Position{}, err
	}

	pos := model.Position{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}
	if err := s.store.Positions.Insert(ctx, pos); err != nil {
		s.log.Error().Err(err).Msg("failed to create position")
		return model.Position{}, err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionCreate,
		Description: fmt.Sprintf("Cargo %s añadido", pos.Name),
		EntityType:  model.EntityPosition,
		EntityName:  pos.Name,
	})
	return pos, nil
}

// UpdatePosition renames the position and every employee holding the old name
func (s *positionService) UpdatePosition(ctx context.Context, id string, req PositionRequest) (model.Position, error) {
	prior, ok := s.store.Positions.Get(id)
	if !ok {
		return model.Position{}, notFound("position", id)
	}
	name := strings.TrimSpace(req.Name)
	if err := s.validateName(name, id); err != nil {
		return model.Position{}, err
	}

	pos := prior
	pos.Name = name
	steps := []store.Step{s.store.Positions.Updating(pos)}
	renamed := 0
	if prior.Name != name {
		for _, emp := range s.store.Employees.Filter(func(e model.Employee) bool { return e.Position == prior.Name }) {
			emp.Position = name
			emp.UpdatedAt = time.Now()
			steps = append(steps, s.store.Employees.Updating(emp))
			renamed++
		}
	}
	if err := store.Commit(ctx, s.txManager, steps...); err != nil {
		s.log.Error().Err(err).Str("position_id", id).Msg("failed to update position")
		return model.Position{}, err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionUpdate,
		Description: fmt.Sprintf("Cargo %s renombrado a %s", prior.Name, pos.Name),
		EntityType:  model.EntityPosition,
		EntityName:  pos.Name,
		Details:     map[string]any{"previous_name": prior.Name, "employees_updated": renamed},
	})
	return pos, nil
}

// DeletePosition removes the catalog entry. Employees keep their free-text position.
func (s *positionService) DeletePosition(ctx context.Context, id string) error {
	pos, ok := s.store.Positions.Get(id)
	if !ok {
		return notFound("position", id)
	}
	if err := s.store.Positions.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Str("position_id", id).Msg("failed to delete position")
		return err
	}

	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionDelete,
		Description: fmt.Sprintf("Cargo %s eliminado", pos.Name),
		EntityType:  model.EntityPosition,
		EntityName:  pos.Name,
	})
	return nil
}

func (s *positionService) GetPosition(_ context.Context, id string) (model.Position, error) {
	pos, ok := s.store.Positions.Get(id)
	if !ok {
		return model.Position{}, notFound("position", id)
	}
	return pos, nil
}

func (s *positionService) ListPositions(_ context.Context) []model.Position {
	return s.store.Positions.All()
}
