package service

import (
	"context"
	"time"

	"workhours/internal/model"
	"workhours/internal/store"
	"workhours/pkg/ctxutil"
	"workhours/pkg/pagination"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HistoryEntry describes one mutation to append to the history log
type HistoryEntry struct {
	Action      string
	Description string
	// PerformedBy overrides the actor taken from the context
	PerformedBy string
	EntityType  string
	EntityName  string
	Details     map[string]any
}

type HistoryFilter struct {
	Action        string
	EntityType    string
	IncludeErrors bool
	// Paging is optional; the zero value returns every row
	Paging        pagination.Params
}

// HistoryPublisher receives every appended entry, e.g. the WebSocket hub
type HistoryPublisher interface {
	PublishHistory(entry model.HistoryLog)
}

// MutationObserver counts mutations and refusals
type MutationObserver interface {
	ObserveMutation(entity, action string)
	ObserveRefusal(entity string)
}

type HistoryService interface {
	Record(ctx context.Context, entry HistoryEntry) (model.HistoryLog, error)
	RecordRefusal(ctx context.Context, entityType, entityName, reason string) (model.HistoryLog, error)
	List(ctx context.Context, filter HistoryFilter) ([]model.HistoryLog, int64, error)
	CanonicalActions() []string
}

type historyService struct {
	store     *store.Store
	publisher HistoryPublisher
	observer  MutationObserver
	now       func() time.Time
	log       zerolog.Logger
}

// NewHistoryService creates the history log. publisher and observer may be nil.
func NewHistoryService(st *store.Store, publisher HistoryPublisher, observer MutationObserver, now func() time.Time, log zerolog.Logger) HistoryService {
	if now == nil {
		now = time.Now
	}
	return &historyService{
		store:     st,
		publisher: publisher,
		observer:  observer,
		now:       now,
		log:       log.With().Str("service", "history").Logger(),
	}
}

func (s *historyService) Record(ctx context.Context, e HistoryEntry) (model.HistoryLog, error) {
	performer := e.PerformedBy
	if performer == "" {
		performer = ctxutil.ActorName(ctx, model.SystemActor)
	}

	entry := model.HistoryLog{
		ID:          uuid.NewString(),
		Action:      e.Action,
		Description: e.Description,
		PerformedBy: performer,
		EntityType:  e.EntityType,
		EntityName:  e.EntityName,
		Details:     e.Details,
		CreatedAt:   s.now(),
	}
	if err := s.store.History.Insert(ctx, entry); err != nil {
		return model.HistoryLog{}, err
	}

	if s.publisher != nil {
		s.publisher.PublishHistory(entry)
	}
	if s.observer != nil {
		if entry.Action == model.ActionError {
			s.observer.ObserveRefusal(entry.EntityType)
		} else {
			s.observer.ObserveMutation(entry.EntityType, entry.Action)
		}
	}
	return entry, nil
}

func (s *historyService) RecordRefusal(ctx context.Context, entityType, entityName, reason string) (model.HistoryLog, error) {
	return s.Record(ctx, HistoryEntry{
		Action:      model.ActionError,
		Description: reason,
		PerformedBy: model.SystemActor,
		EntityType:  entityType,
		EntityName:  entityName,
	})
}

// List returns entries newest first. Error entries are hidden unless asked for
// explicitly, either through IncludeErrors or by filtering on the Error action.
func (s *historyService) List(_ context.Context, f HistoryFilter) ([]model.HistoryLog, int64, error) {
	showErrors := f.IncludeErrors || f.Action == model.ActionError
	rows := s.store.History.Filter(func(h model.HistoryLog) bool {
		if h.Action == model.ActionError && !showErrors {
			return false
		}
		if f.Action != "" && h.Action != f.Action {
			return false
		}
		return f.EntityType == "" || h.EntityType == f.EntityType
	})

	// Append-only, so reversed insertion order is newest first
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	total := int64(len(rows))
	if f.Paging.Limit <= 0 {
		return rows, total, nil
	}
	if f.Paging.Offset >= len(rows) {
		return []model.HistoryLog{}, total, nil
	}
	end := min(f.Paging.Offset+f.Paging.Limit, len(rows))
	return rows[f.Paging.Offset:end], total, nil
}

// CanonicalActions is the action vocabulary offered to history filters. Error is not part of it.
func (s *historyService) CanonicalActions() []string {
	return []string{model.ActionCreate, model.ActionUpdate, model.ActionDelete}
}

// recordHistory appends an entry without failing the mutation that produced it
func recordHistory(ctx context.Context, history HistoryService, log zerolog.Logger, e HistoryEntry) {
	if _, err := history.Record(ctx, e); err != nil {
		log.Error().Err(err).Str("action", e.Action).Str("entity", e.EntityType).Msg("failed to write history entry")
	}
}

// refuse writes the Error history entry for a refused guarded operation and
// returns the caller-visible rejection.
func refuse(ctx context.Context, history HistoryService, log zerolog.Logger, entity, name, reason string) error {
	log.Warn().Str("entity", entity).Str("name", name).Msg(reason)
	if _, err := history.RecordRefusal(ctx, entity, name, reason); err != nil {
		log.Error().Err(err).Str("entity", entity).Msg("failed to write refusal entry")
	}
	return &RefusalError{Entity: entity, Reason: reason}
}
