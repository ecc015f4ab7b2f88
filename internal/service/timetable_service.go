package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/models"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
)

type timetableRepository interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	FindActiveByClass(ctx context.Context, classID string) (*models.Timetable, error)
	ListSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)
	ListActiveSlotRefs(ctx context.Context, excludeClassID string) ([]models.CommittedSlotRef, error)
	ListActiveSlotRefsByTeacher(ctx context.Context, teacherID string) ([]models.CommittedSlotRef, error)
	SupersedeActiveWithTx(ctx context.Context, tx *sqlx.Tx, classID string) error
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, timetable *models.Timetable) error
	InsertSlotsWithTx(ctx context.Context, tx *sqlx.Tx, slots []models.TimetableSlot) error
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type holidayGateProvider interface {
	GateForWeek(ctx context.Context, weekStart time.Time) (*HolidayGate, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableService orchestrates snapshot assembly, validation and atomic
// week commits. Validation itself stays pure; this service owns all I/O
// around it.
type TimetableService struct {
	timetables timetableRepository
	classes    classReader
	holidays   holidayGateProvider
	slotRules  *SlotValidator
	tx         txProvider
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewTimetableService wires the repositories and the pure validation engine.
func NewTimetableService(
	timetables timetableRepository,
	classes classReader,
	holidays holidayGateProvider,
	slotRules *SlotValidator,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		timetables: timetables,
		classes:    classes,
		holidays:   holidays,
		slotRules:  slotRules,
		tx:         tx,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

const weekStartLayout = "2006-01-02"

func activeTimetableCacheKey(classID string) string {
	return fmt.Sprintf("timetable:active:%s", classID)
}

// BuildSnapshot loads the committed state a validation run needs: the target
// timetable's own slots, every other class's active slots, and the holiday
// gate for the requested week. A caller-named timetable must still be
// current; superseded ones are rejected.
func (s *TimetableService) BuildSnapshot(ctx context.Context, classID, timetableID, excludeSlotID string, weekStart time.Time) (SlotSnapshot, error) {
	snap := SlotSnapshot{
		ClassID:       classID,
		TimetableID:   timetableID,
		ExcludeSlotID: excludeSlotID,
	}

	if timetableID != "" {
		target, err := s.timetables.FindByID(ctx, timetableID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return SlotSnapshot{}, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
			}
			return SlotSnapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
		}
		if target.Status == models.TimetableStatusSuperseded {
			return SlotSnapshot{}, appErrors.Clone(appErrors.ErrSuperseded, "timetable has been superseded; edit the active timetable instead")
		}
	}

	if snap.TimetableID == "" {
		active, err := s.timetables.FindActiveByClass(ctx, classID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return SlotSnapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active timetable")
			}
			active = nil
		}
		if active != nil {
			snap.TimetableID = active.ID
		}
	}

	if snap.TimetableID != "" {
		slots, err := s.timetables.ListSlots(ctx, snap.TimetableID)
		if err != nil {
			return SlotSnapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
		}
		snap.ClassSlots = slots
	}

	refs, err := s.timetables.ListActiveSlotRefs(ctx, classID)
	if err != nil {
		return SlotSnapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committed slots")
	}
	snap.ActiveSlots = refs

	gate, err := s.holidays.GateForWeek(ctx, weekStart)
	if err != nil {
		return SlotSnapshot{}, err
	}
	snap.Gate = gate

	return snap, nil
}

// buildReplacementSnapshot scopes validation for a week that replaces the
// class's active timetable. The outgoing week is about to be superseded, so
// class conflicts are judged only within the candidate set; teacher
// commitments of every other class still apply.
func (s *TimetableService) buildReplacementSnapshot(ctx context.Context, classID string, weekStart time.Time) (SlotSnapshot, error) {
	snap := SlotSnapshot{ClassID: classID}

	refs, err := s.timetables.ListActiveSlotRefs(ctx, classID)
	if err != nil {
		return SlotSnapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committed slots")
	}
	snap.ActiveSlots = refs

	gate, err := s.holidays.GateForWeek(ctx, weekStart)
	if err != nil {
		return SlotSnapshot{}, err
	}
	snap.Gate = gate

	return snap, nil
}

// ValidateSlot checks one candidate slot against committed state without
// persisting anything.
func (s *TimetableService) ValidateSlot(ctx context.Context, req dto.ValidateSlotRequest) (dto.ValidationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ValidationResult{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation request")
	}

	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		return dto.ValidationResult{}, err
	}

	snap, err := s.BuildSnapshot(ctx, req.ClassID, req.TimetableID, req.ExcludeSlotID, weekStart)
	if err != nil {
		return dto.ValidationResult{}, err
	}

	result := s.slotRules.ValidateSlot(req.Slot, snap)
	s.metrics.RecordValidation(result.IsValid)
	return result, nil
}

// ValidateWeek checks a full proposed week against committed state without
// persisting anything. With no timetable named the week is a candidate
// replacement and gets exactly the commit scope, so a clean preview commits
// cleanly. Naming a timetable validates an edit against its committed slots.
func (s *TimetableService) ValidateWeek(ctx context.Context, req dto.ValidateWeekRequest) (dto.ValidationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ValidationResult{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation request")
	}

	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		return dto.ValidationResult{}, err
	}

	var snap SlotSnapshot
	if req.TimetableID == "" {
		snap, err = s.buildReplacementSnapshot(ctx, req.ClassID, weekStart)
	} else {
		snap, err = s.BuildSnapshot(ctx, req.ClassID, req.TimetableID, "", weekStart)
	}
	if err != nil {
		return dto.ValidationResult{}, err
	}

	result := s.slotRules.ValidateWeek(req.Slots, req.DoublePeriods, snap)
	s.metrics.RecordValidation(result.IsValid)
	return result, nil
}

// CommitWeek validates a full week and, when clean, activates it atomically:
// the previous active timetable is superseded and the new one inserted in a
// single transaction. A rejected week persists nothing.
func (s *TimetableService) CommitWeek(ctx context.Context, req dto.CommitWeekRequest) (*models.Timetable, dto.ValidationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, dto.ValidationResult{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commit request")
	}

	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dto.ValidationResult{}, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, dto.ValidationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		return nil, dto.ValidationResult{}, err
	}

	snap, err := s.buildReplacementSnapshot(ctx, req.ClassID, weekStart)
	if err != nil {
		return nil, dto.ValidationResult{}, err
	}

	now := time.Now().UTC()
	timetable := &models.Timetable{
		ID:           uuid.NewString(),
		ClassID:      req.ClassID,
		AcademicYear: req.AcademicYear,
		Term:         req.Term,
		Status:       models.TimetableStatusDraft,
		WeekStart:    weekStart,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	result := s.slotRules.ValidateWeek(req.Slots, req.DoublePeriods, snap)
	s.metrics.RecordValidation(result.IsValid)
	if !result.IsValid {
		// The draft is discarded, never persisted.
		return nil, result, appErrors.Clone(appErrors.ErrInvalidTimetable, "timetable failed validation")
	}
	timetable.Status = models.TimetableStatusValidated

	slots := make([]models.TimetableSlot, 0, len(req.Slots))
	for _, candidate := range req.Slots {
		day, _ := models.ParseWeekDay(candidate.Day)
		slotType := models.SlotType(candidate.SlotType)
		if slotType == "" {
			slotType = models.SlotTypeRegular
		}
		slots = append(slots, models.TimetableSlot{
			ID:          uuid.NewString(),
			TimetableID: timetable.ID,
			Day:         day,
			Period:      candidate.Period,
			StartTime:   candidate.StartTime,
			EndTime:     candidate.EndTime,
			SlotType:    slotType,
			SubjectID:   candidate.SubjectID,
			TeacherID:   candidate.TeacherID,
			CreatedAt:   now,
		})
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.timetables.SupersedeActiveWithTx(ctx, tx, req.ClassID); err != nil {
		return nil, result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to supersede active timetable")
	}
	timetable.Status = models.TimetableStatusActive
	if err := s.timetables.CreateWithTx(ctx, tx, timetable); err != nil {
		return nil, result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}
	if err := s.timetables.InsertSlotsWithTx(ctx, tx, slots); err != nil {
		return nil, result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert timetable slots")
	}
	if err := tx.Commit(); err != nil {
		return nil, result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit transaction")
	}

	s.metrics.RecordCommit()
	if err := s.cache.Invalidate(ctx, activeTimetableCacheKey(req.ClassID)); err != nil {
		s.logger.Warn("active timetable cache invalidation failed", zap.String("class_id", req.ClassID), zap.Error(err))
	}

	s.logger.Info("timetable committed",
		zap.String("timetable_id", timetable.ID),
		zap.String("class_id", req.ClassID),
		zap.Int("slots", len(slots)),
	)
	return timetable, result, nil
}

// GetActive returns the active timetable for a class together with its slot
// grid, served from cache when possible.
func (s *TimetableService) GetActive(ctx context.Context, classID string) (*dto.TimetableDetail, error) {
	cacheKey := activeTimetableCacheKey(classID)
	var cached dto.TimetableDetail
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	timetable, err := s.timetables.FindActiveByClass(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active timetable for class")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active timetable")
	}
	slots, err := s.timetables.ListSlots(ctx, timetable.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}

	detail := &dto.TimetableDetail{Timetable: *timetable, Slots: slots}
	if err := s.cache.Set(ctx, cacheKey, detail, 0); err != nil {
		s.logger.Warn("active timetable cache write failed", zap.String("class_id", classID), zap.Error(err))
	}
	return detail, nil
}

// GetByID returns any timetable, active or not, with its slots.
func (s *TimetableService) GetByID(ctx context.Context, id string) (*dto.TimetableDetail, error) {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	slots, err := s.timetables.ListSlots(ctx, timetable.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}
	return &dto.TimetableDetail{Timetable: *timetable, Slots: slots}, nil
}

// TeacherWeek returns a teacher's committed slots across every active class
// timetable.
func (s *TimetableService) TeacherWeek(ctx context.Context, teacherID string) (*dto.TeacherWeekResponse, error) {
	refs, err := s.timetables.ListActiveSlotRefsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher slots")
	}
	return &dto.TeacherWeekResponse{TeacherID: teacherID, Slots: refs}, nil
}

// TeacherAvailability answers a free/busy probe for one (day, period).
func (s *TimetableService) TeacherAvailability(ctx context.Context, req dto.TeacherAvailabilityRequest) (dto.TeacherAvailabilityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherAvailabilityResponse{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability request")
	}
	day, ok := models.ParseWeekDay(req.Day)
	if !ok {
		return dto.TeacherAvailabilityResponse{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid day: %s", req.Day))
	}

	refs, err := s.timetables.ListActiveSlotRefsByTeacher(ctx, req.TeacherID)
	if err != nil {
		return dto.TeacherAvailabilityResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher slots")
	}
	for _, ref := range refs {
		if ref.Day == day && ref.Period == req.Period {
			return dto.TeacherAvailabilityResponse{
				IsAvailable:        false,
				ConflictingClass:   &ref.ClassName,
				ConflictingSubject: ref.SubjectName,
			}, nil
		}
	}
	return dto.TeacherAvailabilityResponse{IsAvailable: true}, nil
}

// TeacherConflicts reports any (day, period) where a teacher is committed to
// more than one class. A clean store returns an empty list; entries indicate
// data corruption worth surfacing.
func (s *TimetableService) TeacherConflicts(ctx context.Context, teacherID string) ([]models.TeacherDayConflict, error) {
	refs, err := s.timetables.ListActiveSlotRefsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher slots")
	}

	type cell struct {
		day    models.WeekDay
		period int
	}
	grouped := make(map[cell][]models.CommittedSlotRef)
	order := make([]cell, 0)
	for _, ref := range refs {
		key := cell{day: ref.Day, period: ref.Period}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], ref)
	}

	conflicts := make([]models.TeacherDayConflict, 0)
	for _, key := range order {
		entries := grouped[key]
		if len(entries) < 2 {
			continue
		}
		conflicts = append(conflicts, models.TeacherDayConflict{
			Day:     key.day,
			Period:  key.period,
			Entries: entries,
		})
	}
	return conflicts, nil
}

func parseWeekStart(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(weekStartLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid weekStart: %s", raw))
	}
	return parsed, nil
}
