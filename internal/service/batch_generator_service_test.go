package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/models"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
)

type stubClassReader struct {
	classes map[string]*models.Class
}

func (s *stubClassReader) FindByID(_ context.Context, id string) (*models.Class, error) {
	class, ok := s.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

type stubRoster struct {
	roster []models.SubjectWithTeachers
}

func (s *stubRoster) ListWithTeachers(_ context.Context) ([]models.SubjectWithTeachers, error) {
	return s.roster, nil
}

type stubCommittedSlots struct {
	refs []models.CommittedSlotRef
}

func (s *stubCommittedSlots) ListActiveSlotRefs(_ context.Context, excludeClassID string) ([]models.CommittedSlotRef, error) {
	out := make([]models.CommittedSlotRef, 0, len(s.refs))
	for _, ref := range s.refs {
		if excludeClassID != "" && ref.ClassID == excludeClassID {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

type stubGateProvider struct {
	gate *HolidayGate
}

func (s *stubGateProvider) GateForWeek(_ context.Context, weekStart time.Time) (*HolidayGate, error) {
	if s.gate != nil {
		return s.gate, nil
	}
	return NewHolidayGate(weekStart, nil), nil
}

type stubCommitter struct {
	committed []dto.CommitWeekRequest
	failFor   map[string]error
}

func (s *stubCommitter) CommitWeek(_ context.Context, req dto.CommitWeekRequest) (*models.Timetable, dto.ValidationResult, error) {
	if err, ok := s.failFor[req.ClassID]; ok {
		return nil, dto.ValidationResult{IsValid: false, Errors: []string{"Duplicate slot found: MONDAY Period 1"}}, err
	}
	s.committed = append(s.committed, req)
	return &models.Timetable{ID: "tt-" + req.ClassID, ClassID: req.ClassID, Status: models.TimetableStatusActive}, dto.ValidationResult{IsValid: true}, nil
}

func subjectEntry(id, name string, teacherIDs ...string) models.SubjectWithTeachers {
	return models.SubjectWithTeachers{
		Subject:    models.Subject{ID: id, Name: name},
		TeacherIDs: teacherIDs,
	}
}

func newGeneratorFixture(classIDs []string, roster []models.SubjectWithTeachers, gate *HolidayGate, committer *stubCommitter) *BatchGeneratorService {
	classes := &stubClassReader{classes: make(map[string]*models.Class)}
	for _, id := range classIDs {
		classes.classes[id] = &models.Class{ID: id, Name: "Class " + id}
	}
	if committer == nil {
		committer = &stubCommitter{}
	}
	return NewBatchGeneratorService(
		classes,
		&stubRoster{roster: roster},
		&stubCommittedSlots{},
		&stubGateProvider{gate: gate},
		NewDefaultCalendarService(),
		committer,
		nil,
		nil,
		nil,
		BatchGeneratorConfig{MaxClasses: 10},
	)
}

func fullRoster() []models.SubjectWithTeachers {
	return []models.SubjectWithTeachers{
		subjectEntry("subj-math", "Mathematics", "t-math-1", "t-math-2"),
		subjectEntry("subj-sci", "Science", "t-sci-1", "t-sci-2"),
		subjectEntry("subj-eng", "English", "t-eng-1", "t-eng-2"),
		subjectEntry("subj-sin", "Sinhala", "t-sin-1", "t-sin-2"),
		subjectEntry("subj-ict", "ICT", "t-ict-1", "t-ict-2"),
		subjectEntry("subj-his", "History", "t-his-1", "t-his-2"),
		subjectEntry("subj-rel", "Religion", "t-rel-1", "t-rel-2"),
	}
}

func TestGenerateBatchFillsFullWeek(t *testing.T) {
	svc := newGeneratorFixture([]string{"class-a", "class-b"}, fullRoster(), nil, nil)

	resp, err := svc.GenerateBatch(context.Background(), dto.GenerateBatchRequest{
		ClassIDs:     []string{"class-a", "class-b"},
		AcademicYear: "2026",
		Term:         "1",
	})
	require.NoError(t, err)
	require.Len(t, resp.TimetablesByClassID, 2)
	assert.Empty(t, resp.UnresolvedSlots)
	assert.False(t, resp.Committed)

	for _, result := range resp.TimetablesByClassID {
		assert.Len(t, result.Slots, 40, "5 days x 8 periods")
		assert.Empty(t, result.TimetableID, "preview must not persist")
	}
}

func TestGenerateBatchNeverDoubleBooksTeachers(t *testing.T) {
	svc := newGeneratorFixture([]string{"class-a", "class-b", "class-c"}, fullRoster(), nil, nil)

	resp, err := svc.GenerateBatch(context.Background(), dto.GenerateBatchRequest{
		ClassIDs:     []string{"class-a", "class-b", "class-c"},
		AcademicYear: "2026",
		Term:         "1",
	})
	require.NoError(t, err)

	seen := make(map[string]string)
	for classID, result := range resp.TimetablesByClassID {
		for _, slot := range result.Slots {
			if slot.TeacherID == nil {
				continue
			}
			key := fmt.Sprintf("%s|%s|%d", *slot.TeacherID, slot.Day, slot.Period)
			if other, taken := seen[key]; taken {
				t.Fatalf("teacher %s double-booked at %s period %d between %s and %s", *slot.TeacherID, slot.Day, slot.Period, other, classID)
			}
			seen[key] = classID
		}
	}
}

func TestGenerateBatchIsDeterministic(t *testing.T) {
	run := func() *dto.GenerateBatchResponse {
		svc := newGeneratorFixture([]string{"class-b", "class-a"}, fullRoster(), nil, nil)
		resp, err := svc.GenerateBatch(context.Background(), dto.GenerateBatchRequest{
			ClassIDs:     []string{"class-b", "class-a"},
			AcademicYear: "2026",
			Term:         "1",
		})
		require.NoError(t, err)
		return resp
	}

	first := run()
	second := run()
	assert.Equal(t, first.TimetablesByClassID, second.TimetablesByClassID)
	assert.Equal(t, first.UnresolvedSlots, second.UnresolvedSlots)
}

func TestGenerateBatchSkipsHolidayDays(t *testing.T) {
	gate := NewHolidayGate(testWeekStart, []models.Holiday{
		{Name: "Poya", Date: testWeekStart, BlocksScheduling: true},
	})
	svc := newGeneratorFixture([]string{"class-a"}, fullRoster(), gate, nil)

	resp, err := svc.GenerateBatch(context.Background(), dto.GenerateBatchRequest{
		ClassIDs:     []string{"class-a"},
		AcademicYear: "2026",
		Term:         "1",
		WeekStart:    "2026-01-05",
	})
	require.NoError(t, err)

	result := resp.TimetablesByClassID["class-a"]
	assert.Len(t, result.Slots, 32, "4 school days x 8 periods")
	for _, slot := range result.Slots {
		assert.NotEqual(t, "MONDAY", slot.Day)
	}
}

func TestGenerateBatchReportsUnresolvedSlots(t *testing.T) {
	roster := []models.SubjectWithTeachers{
		subjectEntry("subj-math", "Mathematics", "t-1"),
	}
	svc := newGeneratorFixture([]string{"class-a", "class-b"}, roster, nil, nil)

	resp, err := svc.GenerateBatch(context.Background(), dto.GenerateBatchRequest{
		ClassIDs:     []string{"class-a", "class-b"},
		AcademicYear: "2026",
		Term:         "1",
	})
	require.NoError(t, err)

	// The single teacher is fully booked by the first class, so every cell
	// of the second class stays open.
	require.NotEmpty(t, resp.UnresolvedSlots)
	assert.Len(t, resp.UnresolvedSlots, 40)
	for _, unresolved := range resp.UnresolvedSlots {
		assert.Equal(t, "class-b", unresolved.ClassID)
		assert.NotEmpty(t, unresolved.Reason)
	}
}

func TestGenerateBatchCommitMode(t *testing.T) {
	committer := &stubCommitter{}
	svc := newGeneratorFixture([]string{"class-a"}, fullRoster(), nil, committer)

	resp, err := svc.GenerateBatch(context.Background(), dto.GenerateBatchRequest{
		ClassIDs:     []string{"class-a"},
		AcademicYear: "2026",
		Term:         "1",
		Commit:       true,
	})
	require.NoError(t, err)
	require.Len(t, committer.committed, 1)
	assert.Equal(t, "class-a", committer.committed[0].ClassID)
	assert.True(t, resp.Committed)
	assert.Equal(t, "tt-class-a", resp.TimetablesByClassID["class-a"].TimetableID)
}

func TestGenerateBatchCommitModeSkipsRejectedClass(t *testing.T) {
	committer := &stubCommitter{failFor: map[string]error{
		"class-a": appErrors.Clone(appErrors.ErrInvalidTimetable, "timetable validation failed"),
	}}
	svc := newGeneratorFixture([]string{"class-a", "class-b"}, fullRoster(), nil, committer)

	resp, err := svc.GenerateBatch(context.Background(), dto.GenerateBatchRequest{
		ClassIDs:     []string{"class-a", "class-b"},
		AcademicYear: "2026",
		Term:         "1",
		Commit:       true,
	})
	require.NoError(t, err, "one rejected class must not abort the batch")
	require.Len(t, committer.committed, 1)
	assert.Equal(t, "class-b", committer.committed[0].ClassID)

	failed := resp.TimetablesByClassID["class-a"]
	assert.Empty(t, failed.TimetableID)
	require.NotEmpty(t, failed.Warnings)
	assert.Contains(t, failed.Warnings[0], "Week could not be committed")
	assert.Contains(t, failed.Warnings, "Duplicate slot found: MONDAY Period 1")

	assert.Equal(t, "tt-class-b", resp.TimetablesByClassID["class-b"].TimetableID)
}

func TestGenerateBatchRejectsUnknownClass(t *testing.T) {
	svc := newGeneratorFixture([]string{"class-a"}, fullRoster(), nil, nil)

	_, err := svc.GenerateBatch(context.Background(), dto.GenerateBatchRequest{
		ClassIDs:     []string{"class-a", "class-missing"},
		AcademicYear: "2026",
		Term:         "1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class-missing")
}

func TestGenerateBatchEnforcesClassLimit(t *testing.T) {
	ids := make([]string, 11)
	for i := range ids {
		ids[i] = fmt.Sprintf("class-%d", i)
	}
	svc := newGeneratorFixture(ids, fullRoster(), nil, nil)

	_, err := svc.GenerateBatch(context.Background(), dto.GenerateBatchRequest{
		ClassIDs:     ids,
		AcademicYear: "2026",
		Term:         "1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 10 classes")
}

func TestRankSubjectsDistributesQuotas(t *testing.T) {
	ranked := rankSubjects(fullRoster(), 40)

	total := 0
	for _, entry := range ranked {
		total += entry.quota
	}
	assert.Equal(t, 40, total)

	// Highest weight first, ties broken by name.
	assert.Equal(t, "Mathematics", ranked[0].subject.Name)
	assert.Equal(t, "Science", ranked[1].subject.Name)
	assert.GreaterOrEqual(t, ranked[0].quota, ranked[len(ranked)-1].quota)
}
