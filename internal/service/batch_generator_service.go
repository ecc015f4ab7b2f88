package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/models"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
)

// subjectWeights ranks subjects for placement order and quota share. Core
// subjects get more weekly periods than electives.
var subjectWeights = map[string]int{
	"Mathematics": 5,
	"Science":     5,
	"English":     4,
	"Sinhala":     4,
	"ICT":         3,
	"History":     3,
	"Religion":    2,
	"Buddhism":    2,
}

const defaultSubjectWeight = 3

func subjectWeight(name string) int {
	if w, ok := subjectWeights[name]; ok {
		return w
	}
	return defaultSubjectWeight
}

type subjectRosterReader interface {
	ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeachers, error)
}

type committedSlotReader interface {
	ListActiveSlotRefs(ctx context.Context, excludeClassID string) ([]models.CommittedSlotRef, error)
}

type weekCommitter interface {
	CommitWeek(ctx context.Context, req dto.CommitWeekRequest) (*models.Timetable, dto.ValidationResult, error)
}

// slotKey identifies one cell of the weekly grid.
type slotKey struct {
	Day    models.WeekDay
	Period int
}

// teacherOccupancy tracks which cells each teacher is committed to, across
// both pre-existing active timetables and assignments made earlier in the
// same batch run.
type teacherOccupancy struct {
	busy map[string]map[slotKey]string
}

func newTeacherOccupancy() *teacherOccupancy {
	return &teacherOccupancy{busy: make(map[string]map[slotKey]string)}
}

// CanTeach reports whether the teacher is free at the cell.
func (o *teacherOccupancy) CanTeach(teacherID string, key slotKey) bool {
	cells, ok := o.busy[teacherID]
	if !ok {
		return true
	}
	_, taken := cells[key]
	return !taken
}

// Reserve marks the teacher busy at the cell for the given class.
func (o *teacherOccupancy) Reserve(teacherID string, key slotKey, classID string) {
	if o.busy[teacherID] == nil {
		o.busy[teacherID] = make(map[slotKey]string)
	}
	o.busy[teacherID][key] = classID
}

// Release frees the teacher's cell, used when a class's commit fails and its
// in-batch reservations must not leak into later classes.
func (o *teacherOccupancy) Release(teacherID string, key slotKey) {
	if cells, ok := o.busy[teacherID]; ok {
		delete(cells, key)
	}
}

// BatchGeneratorConfig governs generator behaviour.
type BatchGeneratorConfig struct {
	MaxClasses int
}

// BatchGeneratorService fills weekly grids for many classes in one
// deterministic run. Classes are processed in sorted order against a shared
// teacher occupancy map, so a teacher assigned in one class is unavailable
// at the same cell for every later class.
type BatchGeneratorService struct {
	classes   classReader
	subjects  subjectRosterReader
	committed committedSlotReader
	holidays  holidayGateProvider
	calendar  *CalendarService
	committer weekCommitter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       BatchGeneratorConfig
}

// NewBatchGeneratorService wires generator dependencies.
func NewBatchGeneratorService(
	classes classReader,
	subjects subjectRosterReader,
	committed committedSlotReader,
	holidays holidayGateProvider,
	calendar *CalendarService,
	committer weekCommitter,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg BatchGeneratorConfig,
) *BatchGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxClasses <= 0 {
		cfg.MaxClasses = 20
	}
	return &BatchGeneratorService{
		classes:   classes,
		subjects:  subjects,
		committed: committed,
		holidays:  holidays,
		calendar:  calendar,
		committer: committer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// rankedSubject is a subject with its placement weight and the quota of
// weekly periods it should receive.
type rankedSubject struct {
	subject models.SubjectWithTeachers
	weight  int
	quota   int
}

// GenerateBatch builds a full week for each requested class. In preview mode
// nothing is persisted; with Commit set, each generated week is committed
// through the normal validation and activation path.
func (s *BatchGeneratorService) GenerateBatch(ctx context.Context, req dto.GenerateBatchRequest) (*dto.GenerateBatchResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch generation payload")
	}
	if len(req.ClassIDs) > s.cfg.MaxClasses {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d classes per batch", s.cfg.MaxClasses))
	}

	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		return nil, err
	}

	classIDs := dedupeStrings(req.ClassIDs)
	sort.Strings(classIDs)

	classesByID := make(map[string]*models.Class, len(classIDs))
	for _, id := range classIDs {
		class, err := s.classes.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %s not found", id))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
		classesByID[id] = class
	}

	roster, err := s.subjects.ListWithTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject roster")
	}
	if len(roster) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no subjects with assigned teachers available")
	}

	gate, err := s.holidays.GateForWeek(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	days := make([]models.WeekDay, 0, len(models.SchoolDays))
	for _, day := range models.SchoolDays {
		if !gate.IsBlocked(day) {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "every day of the requested week is a holiday")
	}

	occupancy, err := s.seedOccupancy(ctx, classIDs)
	if err != nil {
		return nil, err
	}

	resp := &dto.GenerateBatchResponse{
		TimetablesByClassID: make(map[string]dto.ClassGenerationResult, len(classIDs)),
		UnresolvedSlots:     make([]dto.UnresolvedSlot, 0),
		Committed:           req.Commit,
	}

	for _, classID := range classIDs {
		result, unresolved := s.generateClassWeek(classID, classesByID[classID].Name, days, roster, occupancy)
		resp.UnresolvedSlots = append(resp.UnresolvedSlots, unresolved...)

		if req.Commit {
			timetable, commitResult, err := s.committer.CommitWeek(ctx, dto.CommitWeekRequest{
				ClassID:      classID,
				AcademicYear: req.AcademicYear,
				Term:         req.Term,
				WeekStart:    req.WeekStart,
				Slots:        result.Slots,
			})
			if err != nil {
				// A failed class is skipped, not fatal: its reservations are
				// released so later classes in the batch can use them.
				s.releaseClass(occupancy, result.Slots)
				result.Warnings = append(result.Warnings, fmt.Sprintf("Week could not be committed: %s", err.Error()))
				result.Warnings = append(result.Warnings, commitResult.Errors...)
				s.logger.Warn("generated week rejected at commit",
					zap.String("class_id", classID),
					zap.Error(err),
				)
			} else {
				result.TimetableID = timetable.ID
			}
		}

		resp.TimetablesByClassID[classID] = result
	}

	s.metrics.RecordGeneration(len(resp.UnresolvedSlots))
	s.logger.Info("batch generation finished",
		zap.Int("classes", len(classIDs)),
		zap.Int("unresolved", len(resp.UnresolvedSlots)),
		zap.Bool("committed", req.Commit),
	)
	return resp, nil
}

// seedOccupancy loads teacher commitments from every active timetable except
// those of the classes being regenerated, whose weeks are about to be
// replaced.
func (s *BatchGeneratorService) seedOccupancy(ctx context.Context, classIDs []string) (*teacherOccupancy, error) {
	refs, err := s.committed.ListActiveSlotRefs(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committed slots")
	}
	regenerating := make(map[string]bool, len(classIDs))
	for _, id := range classIDs {
		regenerating[id] = true
	}
	occupancy := newTeacherOccupancy()
	for _, ref := range refs {
		if ref.TeacherID == nil || regenerating[ref.ClassID] {
			continue
		}
		occupancy.Reserve(*ref.TeacherID, slotKey{Day: ref.Day, Period: ref.Period}, ref.ClassID)
	}
	return occupancy, nil
}

// generateClassWeek fills one class's grid in two passes. The first pass
// places subjects in weight order while avoiding a second period of the same
// subject on one day; the second pass relaxes that preference to use up
// remaining quota. Cells no subject can fill become unresolved slots.
func (s *BatchGeneratorService) generateClassWeek(
	classID, className string,
	days []models.WeekDay,
	roster []models.SubjectWithTeachers,
	occupancy *teacherOccupancy,
) (dto.ClassGenerationResult, []dto.UnresolvedSlot) {
	ranked := rankSubjects(roster, len(days)*len(s.calendar.Periods()))

	// Keeps one teacher per subject within the class where possible.
	assignedTeacher := make(map[string]string)

	type placement struct {
		subjectID string
		teacherID string
	}
	placed := make(map[slotKey]placement)
	unresolvedKeys := make([]slotKey, 0)

	fill := func(relaxDayRule bool) {
		for _, day := range days {
			usedToday := make(map[string]bool)
			for key := range placed {
				if key.Day == day {
					usedToday[placed[key].subjectID] = true
				}
			}
			for _, period := range s.calendar.Periods() {
				key := slotKey{Day: day, Period: period.Period}
				if _, done := placed[key]; done {
					continue
				}
				for i := range ranked {
					entry := &ranked[i]
					if entry.quota <= 0 {
						continue
					}
					if !relaxDayRule && usedToday[entry.subject.ID] {
						continue
					}
					teacherID, ok := pickTeacher(entry.subject, assignedTeacher, occupancy, key)
					if !ok {
						continue
					}
					entry.quota--
					usedToday[entry.subject.ID] = true
					assignedTeacher[entry.subject.ID] = teacherID
					occupancy.Reserve(teacherID, key, classID)
					placed[key] = placement{subjectID: entry.subject.ID, teacherID: teacherID}
					break
				}
			}
		}
	}

	fill(false)
	fill(true)

	slots := make([]dto.SlotCandidate, 0, len(placed))
	for _, day := range days {
		for _, period := range s.calendar.Periods() {
			key := slotKey{Day: day, Period: period.Period}
			p, ok := placed[key]
			if !ok {
				unresolvedKeys = append(unresolvedKeys, key)
				continue
			}
			subjectID := p.subjectID
			teacherID := p.teacherID
			slots = append(slots, dto.SlotCandidate{
				Day:       string(day),
				Period:    period.Period,
				StartTime: period.StartTime,
				EndTime:   period.EndTime,
				SlotType:  string(models.SlotTypeRegular),
				SubjectID: &subjectID,
				TeacherID: &teacherID,
			})
		}
	}

	warnings := make([]string, 0)
	for _, entry := range ranked {
		if entry.quota > 0 {
			warnings = append(warnings, fmt.Sprintf("Subject %s has %d unplaced period(s) this week.", entry.subject.Name, entry.quota))
		}
	}

	unresolved := make([]dto.UnresolvedSlot, 0, len(unresolvedKeys))
	for _, key := range unresolvedKeys {
		unresolved = append(unresolved, dto.UnresolvedSlot{
			ClassID: classID,
			Day:     string(key.Day),
			Period:  key.Period,
			Reason:  "No subject with remaining quota has a free teacher at this period.",
		})
	}

	return dto.ClassGenerationResult{
		ClassID:   classID,
		ClassName: className,
		Slots:     slots,
		Warnings:  warnings,
	}, unresolved
}

// releaseClass frees in-batch reservations for a class whose week could not
// be committed.
func (s *BatchGeneratorService) releaseClass(occupancy *teacherOccupancy, slots []dto.SlotCandidate) {
	for _, slot := range slots {
		if slot.TeacherID == nil {
			continue
		}
		day, _ := models.ParseWeekDay(slot.Day)
		occupancy.Release(*slot.TeacherID, slotKey{Day: day, Period: slot.Period})
	}
}

// rankSubjects orders the roster by weight and distributes the week's
// teaching cells as per-subject quotas using largest-remainder rounding.
// Ordering ties break on subject name, keeping runs deterministic.
func rankSubjects(roster []models.SubjectWithTeachers, totalCells int) []rankedSubject {
	ranked := make([]rankedSubject, 0, len(roster))
	totalWeight := 0
	for _, subject := range roster {
		if len(subject.TeacherIDs) == 0 {
			continue
		}
		w := subjectWeight(subject.Name)
		ranked = append(ranked, rankedSubject{subject: subject, weight: w})
		totalWeight += w
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight == ranked[j].weight {
			return ranked[i].subject.Name < ranked[j].subject.Name
		}
		return ranked[i].weight > ranked[j].weight
	})
	if totalWeight == 0 {
		return ranked
	}

	type remainder struct {
		index    int
		fraction float64
	}
	assigned := 0
	remainders := make([]remainder, 0, len(ranked))
	for i := range ranked {
		exact := float64(totalCells) * float64(ranked[i].weight) / float64(totalWeight)
		ranked[i].quota = int(exact)
		assigned += ranked[i].quota
		remainders = append(remainders, remainder{index: i, fraction: exact - float64(ranked[i].quota)})
	}
	sort.Slice(remainders, func(i, j int) bool {
		if remainders[i].fraction == remainders[j].fraction {
			return ranked[remainders[i].index].subject.Name < ranked[remainders[j].index].subject.Name
		}
		return remainders[i].fraction > remainders[j].fraction
	})
	for i := 0; assigned < totalCells && i < len(remainders); i++ {
		ranked[remainders[i].index].quota++
		assigned++
	}
	return ranked
}

// pickTeacher prefers the teacher already used for this subject in this
// class, falling back to the first listed teacher free at the cell.
func pickTeacher(subject models.SubjectWithTeachers, assigned map[string]string, occupancy *teacherOccupancy, key slotKey) (string, bool) {
	if preferred, ok := assigned[subject.ID]; ok && occupancy.CanTeach(preferred, key) {
		return preferred, true
	}
	for _, teacherID := range subject.TeacherIDs {
		if occupancy.CanTeach(teacherID, key) {
			return teacherID, true
		}
	}
	return "", false
}

