package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"workhours/internal/model"
	"workhours/internal/repository"
	"workhours/internal/store"
	"workhours/pkg/ctxutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type WorkEntryInput struct {
	EmployeeID string          `json:"employee_id"`
	SchoolID   string          `json:"school_id"`
	Date       string          `json:"date"`
	Hours      decimal.Decimal `json:"hours"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
}

// WorkEntrySubmission is either a SingleEntry or MultipleEntries
type WorkEntrySubmission interface {
	normalize() []WorkEntryInput
}

type SingleEntry struct {
	Entry WorkEntryInput
}

type MultipleEntries struct {
	Entries []WorkEntryInput
}

func (s SingleEntry) normalize() []WorkEntryInput     { return []WorkEntryInput{s.Entry} }
func (m MultipleEntries) normalize() []WorkEntryInput { return m.Entries }

// SubmitWorkEntriesRequest is the wire shape accepted by the submit endpoint:
// either a flat entry or an "entries" list.
type SubmitWorkEntriesRequest struct {
	WorkEntryInput
	Entries []WorkEntryInput `json:"entries"`
}

// Submission resolves the request into its variant
func (r SubmitWorkEntriesRequest) Submission() WorkEntrySubmission {
	if len(r.Entries) > 0 {
		return MultipleEntries{Entries: r.Entries}
	}
	return SingleEntry{Entry: r.WorkEntryInput}
}

type UpdateWorkEntryRequest struct {
	EmployeeID *string          `json:"employee_id"`
	SchoolID   *string          `json:"school_id"`
	Date       *string          `json:"date"`
	Hours      *decimal.Decimal `json:"hours" binding:"omitempty,gte=0.5,lte=24"`
	StartTime  *string          `json:"start_time"`
	EndTime    *string          `json:"end_time"`
	EditedBy   string           `json:"edited_by"`
}

// Apply overlays the non-nil fields on entry
func (r UpdateWorkEntryRequest) Apply(entry model.WorkEntry) model.WorkEntry {
	if r.EmployeeID != nil {
		entry.EmployeeID = *r.EmployeeID
	}
	if r.SchoolID != nil {
		entry.SchoolID = *r.SchoolID
	}
	if r.Date != nil {
		entry.Date = *r.Date
	}
	if r.Hours != nil {
		entry.Hours = *r.Hours
	}
	if r.StartTime != nil {
		entry.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		entry.EndTime = *r.EndTime
	}
	return entry
}

type WorkEntryFilter struct {
	EmployeeID string
	SchoolID   string
}

// EditHistoryItem is an EditRecord joined to display names
type EditHistoryItem struct {
	model.EditRecord
	EmployeeName string `json:"employee_name"`
	SchoolName   string `json:"school_name"`
	Date         string `json:"date"`
}

// --- Interface ---

type WorkEntryService interface {
	AddWorkEntry(ctx context.Context, in WorkEntryInput) (model.WorkEntry, error)
	Submit(ctx context.Context, sub WorkEntrySubmission) ([]model.WorkEntry, error)
	UpdateWorkEntry(ctx context.Context, entry model.WorkEntry, editorName string) (model.WorkEntry, error)
	DeleteWorkEntry(ctx context.Context, id string) error
	GetWorkEntry(ctx context.Context, id string) (model.WorkEntry, error)
	ListWorkEntries(ctx context.Context, filter WorkEntryFilter) []model.WorkEntry
	EditHistory(ctx context.Context, workEntryID string) []EditHistoryItem
}

type workEntryService struct {
	store     *store.Store
	history   HistoryService
	txManager repository.TransactionManager
	now       func() time.Time
	log       zerolog.Logger
}

func NewWorkEntryService(st *store.Store, history HistoryService, txManager repository.TransactionManager, now func() time.Time, log zerolog.Logger) WorkEntryService {
	if now == nil {
		now = time.Now
	}
	return &workEntryService{
		store:     st,
		history:   history,
		txManager: txManager,
		now:       now,
		log:       log.With().Str("service", "work_entry").Logger(),
	}
}

// --- Validation helpers ---

var (
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	minHours     = decimal.NewFromFloat(0.5)
	maxHours     = decimal.NewFromInt(24)
	hoursStep    = decimal.NewFromFloat(0.5)
)

// validateSubmitted applies the entry-form rules: known employee and school, a
// calendar date, hours in [0.5, 24] in steps of 0.5 and HH:MM clock times.
func (s *workEntryService) validateSubmitted(i int, in WorkEntryInput) error {
	field := func(name string) string { return fmt.Sprintf("entries[%d].%s", i, name) }

	if _, ok := s.store.Employees.Get(in.EmployeeID); !ok {
		return NewValidationError(field("employee_id"), "unknown employee")
	}
	if _, ok := s.store.Schools.Get(in.SchoolID); !ok {
		return NewValidationError(field("school_id"), "unknown school")
	}
	if _, err := time.Parse(model.DateLayout, in.Date); err != nil {
		return NewValidationError(field("date"), "must be YYYY-MM-DD")
	}
	if err := ValidateHours(field("hours"), in.Hours); err != nil {
		return err
	}
	if in.StartTime != "" && !clockPattern.MatchString(in.StartTime) {
		return NewValidationError(field("start_time"), "must be HH:MM")
	}
	if in.EndTime != "" && !clockPattern.MatchString(in.EndTime) {
		return NewValidationError(field("end_time"), "must be HH:MM")
	}
	return nil
}

// ValidateHours checks the entry-form hours rule: [0.5, 24] in steps of 0.5
func ValidateHours(field string, hours decimal.Decimal) error {
	if hours.LessThan(minHours) || hours.GreaterThan(maxHours) {
		return NewValidationError(field, "must be between 0.5 and 24")
	}
	if !hours.Mod(hoursStep).IsZero() {
		return NewValidationError(field, "must be a multiple of 0.5")
	}
	return nil
}

func entryDetails(e model.WorkEntry) map[string]any {
	return map[string]any{
		"work_entry_id": e.ID,
		"employee_id":   e.EmployeeID,
		"school_id":     e.SchoolID,
		"date":          e.Date,
		"hours":         e.Hours.String(),
	}
}

// --- CRUD ---

// AddWorkEntry records one entry. Hours are only checked for sign here; range
// and step rules belong to Submit.
func (s *workEntryService) AddWorkEntry(ctx context.Context, in WorkEntryInput) (model.WorkEntry, error) {
	if in.Hours.IsNegative() {
		return model.WorkEntry{}, NewValidationError("hours", "must not be negative")
	}
	if in.EmployeeID == "" || in.SchoolID == "" {
		return model.WorkEntry{}, NewValidationError("entry", "employee_id and school_id are required")
	}

	entry := s.newEntry(ctx, in)
	if err := s.store.WorkEntries.Insert(ctx, entry); err != nil {
		s.log.Error().Err(err).Msg("failed to add work entry")
		return model.WorkEntry{}, err
	}
	s.recordAdded(ctx, entry)
	return entry, nil
}

// Submit validates every entry of the submission, then records all of them in
// one transaction. Either the whole batch is stored or none of it.
func (s *workEntryService) Submit(ctx context.Context, sub WorkEntrySubmission) ([]model.WorkEntry, error) {
	inputs := sub.normalize()
	if len(inputs) == 0 {
		return nil, NewValidationError("entries", "at least one entry is required")
	}
	for i, in := range inputs {
		if err := s.validateSubmitted(i, in); err != nil {
			return nil, err
		}
	}

	out := make([]model.WorkEntry, 0, len(inputs))
	steps := make([]store.Step, 0, len(inputs))
	for _, in := range inputs {
		entry := s.newEntry(ctx, in)
		out = append(out, entry)
		steps = append(steps, s.store.WorkEntries.Inserting(entry))
	}
	if err := store.Commit(ctx, s.txManager, steps...); err != nil {
		s.log.Error().Err(err).Int("entries", len(out)).Msg("failed to submit work entries")
		return nil, err
	}

	for _, entry := range out {
		s.recordAdded(ctx, entry)
	}
	return out, nil
}

func (s *workEntryService) newEntry(ctx context.Context, in WorkEntryInput) model.WorkEntry {
	now := s.now()
	return model.WorkEntry{
		ID:           uuid.NewString(),
		EmployeeID:   in.EmployeeID,
		SchoolID:     in.SchoolID,
		Date:         in.Date,
		Hours:        in.Hours,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		LastEditedBy: ctxutil.ActorName(ctx, model.SystemActor),
		LastEditedAt: now,
		CreatedAt:    now,
	}
}

func (s *workEntryService) recordAdded(ctx context.Context, entry model.WorkEntry) {
	emp := employeeName(s.store, entry.EmployeeID)
	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionCreate,
		Description: fmt.Sprintf("%s horas registradas para %s en %s", entry.Hours.String(), emp, schoolName(s.store, entry.SchoolID)),
		EntityType:  model.EntityWorkEntry,
		EntityName:  emp,
		Details:     entryDetails(entry),
	})
}

// UpdateWorkEntry overwrites the stored entry and re-stamps its edit fields.
// An EditRecord is appended only when the hours changed.
func (s *workEntryService) UpdateWorkEntry(ctx context.Context, entry model.WorkEntry, editorName string) (model.WorkEntry, error) {
	prior, ok := s.store.WorkEntries.Get(entry.ID)
	if !ok {
		return model.WorkEntry{}, notFound("work entry", entry.ID)
	}
	if entry.Hours.IsNegative() {
		return model.WorkEntry{}, NewValidationError("hours", "must not be negative")
	}

	editor := editorName
	if editor == "" {
		editor = ctxutil.ActorName(ctx, model.SystemActor)
	}
	now := s.now()

	entry.CreatedAt = prior.CreatedAt
	entry.LastEditedBy = editor
	entry.LastEditedAt = now

	steps := []store.Step{s.store.WorkEntries.Updating(entry)}
	hoursChanged := !prior.Hours.Equal(entry.Hours)
	if hoursChanged {
		steps = append(steps, s.store.EditRecords.Inserting(model.EditRecord{
			ID:            uuid.NewString(),
			WorkEntryID:   entry.ID,
			EditedBy:      editor,
			EditedAt:      now,
			PreviousHours: prior.Hours,
			NewHours:      entry.Hours,
			CreatedAt:     now,
		}))
	}
	if err := store.Commit(ctx, s.txManager, steps...); err != nil {
		s.log.Error().Err(err).Str("work_entry_id", entry.ID).Msg("failed to update work entry")
		return model.WorkEntry{}, err
	}

	emp := employeeName(s.store, entry.EmployeeID)
	desc := fmt.Sprintf("Registro de %s en %s actualizado", emp, schoolName(s.store, entry.SchoolID))
	if hoursChanged {
		desc = fmt.Sprintf("Horas de %s en %s cambiadas de %s a %s", emp, schoolName(s.store, entry.SchoolID), prior.Hours.String(), entry.Hours.String())
	}
	details := entryDetails(entry)
	details["previous_hours"] = prior.Hours.String()
	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionUpdate,
		Description: desc,
		PerformedBy: editorName,
		EntityType:  model.EntityWorkEntry,
		EntityName:  emp,
		Details:     details,
	})
	return entry, nil
}

// DeleteWorkEntry removes the entry together with its edit records
func (s *workEntryService) DeleteWorkEntry(ctx context.Context, id string) error {
	entry, ok := s.store.WorkEntries.Get(id)
	if !ok {
		return notFound("work entry", id)
	}

	err := store.Commit(ctx, s.txManager,
		s.store.EditRecords.Removing(s.store.EditsOfEntries([]string{id})),
		s.store.WorkEntries.Removing([]string{id}),
	)
	if err != nil {
		s.log.Error().Err(err).Str("work_entry_id", id).Msg("failed to delete work entry")
		return err
	}

	emp := employeeName(s.store, entry.EmployeeID)
	recordHistory(ctx, s.history, s.log, HistoryEntry{
		Action:      model.ActionDelete,
		Description: fmt.Sprintf("Registro de %s horas de %s en %s del %s eliminado", entry.Hours.String(), emp, schoolName(s.store, entry.SchoolID), entry.Date),
		EntityType:  model.EntityWorkEntry,
		EntityName:  emp,
		Details:     entryDetails(entry),
	})
	return nil
}

func (s *workEntryService) GetWorkEntry(_ context.Context, id string) (model.WorkEntry, error) {
	entry, ok := s.store.WorkEntries.Get(id)
	if !ok {
		return model.WorkEntry{}, notFound("work entry", id)
	}
	return entry, nil
}

func (s *workEntryService) ListWorkEntries(_ context.Context, f WorkEntryFilter) []model.WorkEntry {
	return s.store.WorkEntries.Filter(func(e model.WorkEntry) bool {
		return (f.EmployeeID == "" || e.EmployeeID == f.EmployeeID) &&
			(f.SchoolID == "" || e.SchoolID == f.SchoolID)
	})
}

// EditHistory returns the edit records of one entry, or of every entry when
// workEntryID is empty. Dangling references show as Desconocido.
func (s *workEntryService) EditHistory(_ context.Context, workEntryID string) []EditHistoryItem {
	records := s.store.EditRecords.Filter(func(r model.EditRecord) bool {
		return workEntryID == "" || r.WorkEntryID == workEntryID
	})

	out := make([]EditHistoryItem, 0, len(records))
	for _, r := range records {
		item := EditHistoryItem{
			EditRecord:   r,
			EmployeeName: model.PlaceholderUnknown,
			SchoolName:   model.PlaceholderUnknown,
			Date:         model.PlaceholderUnknown,
		}
		if entry, ok := s.store.WorkEntries.Get(r.WorkEntryID); ok {
			item.Date = entry.Date
			if emp, ok := s.store.Employees.Get(entry.EmployeeID); ok {
				item.EmployeeName = emp.Name
			}
			if sch, ok := s.store.Schools.Get(entry.SchoolID); ok {
				item.SchoolName = sch.Name
			}
		}
		out = append(out, item)
	}
	return out
}

// --- Helpers ---

func employeeName(st *store.Store, id string) string {
	if e, ok := st.Employees.Get(id); ok && e.Name != "" {
		return e.Name
	}
	return model.PlaceholderEmployee
}

func schoolName(st *store.Store, id string) string {
	if sc, ok := st.Schools.Get(id); ok && sc.Name != "" {
		return sc.Name
	}
	return model.PlaceholderSchool
}
