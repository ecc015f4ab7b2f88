package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/models"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
	"github.com/schoolcore/timetable-api/pkg/export"
	"github.com/schoolcore/timetable-api/pkg/jobs"
	"github.com/schoolcore/timetable-api/pkg/storage"
)

type exportTimetableReader interface {
	GetByID(ctx context.Context, id string) (*dto.TimetableDetail, error)
}

type subjectNamer interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type teacherNamer interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type exportPayload struct {
	JobID       string
	TimetableID string
	Format      models.ExportFormat
}

// exportJobStore keeps job state in memory with a TTL. Finished jobs linger
// long enough for clients to poll and download, then expire.
type exportJobStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]models.ExportJob
}

func newExportJobStore(ttl time.Duration) *exportJobStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &exportJobStore{
		ttl:   ttl,
		items: make(map[string]models.ExportJob),
	}
}

func (s *exportJobStore) Save(job models.ExportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[job.ID] = job
}

func (s *exportJobStore) Get(id string) (models.ExportJob, bool) {
	s.mu.RLock()
	job, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return models.ExportJob{}, false
	}
	if time.Since(job.CreatedAt) > s.ttl {
		s.Delete(id)
		return models.ExportJob{}, false
	}
	return job, true
}

func (s *exportJobStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// ExportServiceConfig governs export worker behaviour.
type ExportServiceConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	JobTTL            time.Duration
}

// ExportService renders committed timetables to CSV or PDF in the
// background and hands out signed download URLs.
type ExportService struct {
	timetables exportTimetableReader
	subjects   subjectNamer
	teachers   teacherNamer
	storage    *storage.LocalStorage
	signer     *storage.SignedURLSigner
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	queue      *jobs.Queue[exportPayload]
	store      *exportJobStore
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewExportService wires the export pipeline. Start must be called before
// enqueueing jobs.
func NewExportService(
	timetables exportTimetableReader,
	subjects subjectNamer,
	teachers teacherNamer,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ExportServiceConfig,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		timetables: timetables,
		subjects:   subjects,
		teachers:   teachers,
		storage:    store,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		store:      newExportJobStore(cfg.JobTTL),
		metrics:    metrics,
		logger:     logger,
	}
	s.queue = jobs.NewQueue("timetable-exports", s.process, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue registers a new export job for the timetable and schedules it.
func (s *ExportService) Enqueue(ctx context.Context, timetableID string, format models.ExportFormat) (models.ExportJob, error) {
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return models.ExportJob{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}
	if _, err := s.timetables.GetByID(ctx, timetableID); err != nil {
		return models.ExportJob{}, err
	}

	job := models.ExportJob{
		ID:          uuid.NewString(),
		TimetableID: timetableID,
		Format:      format,
		Status:      models.ExportStatusQueued,
		CreatedAt:   time.Now().UTC(),
	}
	s.store.Save(job)

	err := s.queue.Enqueue(jobs.Job[exportPayload]{
		ID:   job.ID,
		Type: "timetable_export",
		Payload: exportPayload{
			JobID:       job.ID,
			TimetableID: timetableID,
			Format:      format,
		},
	})
	if err != nil {
		s.store.Delete(job.ID)
		return models.ExportJob{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return job, nil
}

// Status returns the current state of an export job.
func (s *ExportService) Status(jobID string) (models.ExportJob, error) {
	job, ok := s.store.Get(jobID)
	if !ok {
		return models.ExportJob{}, appErrors.Clone(appErrors.ErrNotFound, "export job not found or expired")
	}
	return job, nil
}

// Download validates a signed token and opens the exported file.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, relPath, nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job[exportPayload]) error {
	payload := job.Payload

	record, ok := s.store.Get(payload.JobID)
	if !ok {
		return nil
	}
	record.Status = models.ExportStatusProcessing
	s.store.Save(record)

	if err := s.render(ctx, &record, payload); err != nil {
		record.Status = models.ExportStatusFailed
		message := err.Error()
		record.ErrorMessage = &message
		now := time.Now().UTC()
		record.FinishedAt = &now
		s.store.Save(record)
		s.metrics.RecordExport(string(models.ExportStatusFailed))
		return err
	}

	now := time.Now().UTC()
	record.Status = models.ExportStatusFinished
	record.FinishedAt = &now
	s.store.Save(record)
	s.metrics.RecordExport(string(models.ExportStatusFinished))
	return nil
}

func (s *ExportService) render(ctx context.Context, record *models.ExportJob, payload exportPayload) error {
	detail, err := s.timetables.GetByID(ctx, payload.TimetableID)
	if err != nil {
		return fmt.Errorf("load timetable %s: %w", payload.TimetableID, err)
	}

	grid, err := s.buildGrid(ctx, detail)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Timetable %s (%s %s)", detail.Timetable.ClassID, detail.Timetable.AcademicYear, detail.Timetable.Term)
	var content []byte
	switch payload.Format {
	case models.ExportFormatCSV:
		content, err = s.csv.Render(grid)
	case models.ExportFormatPDF:
		content, err = s.pdf.RenderLandscape(grid, title)
	default:
		return fmt.Errorf("unsupported export format: %s", payload.Format)
	}
	if err != nil {
		return fmt.Errorf("render %s export: %w", payload.Format, err)
	}

	relPath := fmt.Sprintf("timetables/%s-%s.%s", payload.TimetableID, payload.JobID, payload.Format)
	if _, err := s.storage.Save(relPath, content); err != nil {
		return fmt.Errorf("store export: %w", err)
	}

	token, _, err := s.signer.Generate(payload.JobID, relPath)
	if err != nil {
		return fmt.Errorf("sign download url: %w", err)
	}
	url := fmt.Sprintf("/api/v1/exports/download?token=%s", token)
	record.DownloadURL = &url
	return nil
}

// buildGrid lays the week out for printing: one row per period, one column
// per school day, cells formatted as "Subject (Teacher)".
func (s *ExportService) buildGrid(ctx context.Context, detail *dto.TimetableDetail) (export.WeekGrid, error) {
	days := make([]string, 0, len(models.SchoolDays))
	for _, day := range models.SchoolDays {
		days = append(days, string(day))
	}
	grid := export.WeekGrid{Days: days}

	subjectNames := make(map[string]string)
	teacherNames := make(map[string]string)

	cells := make(map[slotKey]string)
	periods := make(map[int][2]string)
	for _, slot := range detail.Slots {
		periods[slot.Period] = [2]string{slot.StartTime, slot.EndTime}
		label, err := s.slotLabel(ctx, slot, subjectNames, teacherNames)
		if err != nil {
			return export.WeekGrid{}, err
		}
		cells[slotKey{Day: slot.Day, Period: slot.Period}] = label
	}

	for period := MinPeriod; period <= MaxPeriod; period++ {
		bounds, ok := periods[period]
		if !ok {
			continue
		}
		row := export.PeriodRow{
			Period: period,
			Time:   fmt.Sprintf("%s-%s", bounds[0], bounds[1]),
			Cells:  make([]string, 0, len(models.SchoolDays)),
		}
		for _, day := range models.SchoolDays {
			row.Cells = append(row.Cells, cells[slotKey{Day: day, Period: period}])
		}
		grid.Periods = append(grid.Periods, row)
	}

	return grid, nil
}

func (s *ExportService) slotLabel(ctx context.Context, slot models.TimetableSlot, subjectNames, teacherNames map[string]string) (string, error) {
	if slot.SlotType != models.SlotTypeRegular {
		return string(slot.SlotType), nil
	}
	if slot.SubjectID == nil {
		return "", nil
	}

	subjectName, ok := subjectNames[*slot.SubjectID]
	if !ok {
		subject, err := s.subjects.FindByID(ctx, *slot.SubjectID)
		if err != nil {
			return "", fmt.Errorf("load subject %s: %w", *slot.SubjectID, err)
		}
		subjectName = subject.Name
		subjectNames[*slot.SubjectID] = subjectName
	}

	if slot.TeacherID == nil {
		return subjectName, nil
	}
	teacherName, ok := teacherNames[*slot.TeacherID]
	if !ok {
		teacher, err := s.teachers.FindByID(ctx, *slot.TeacherID)
		if err != nil {
			return "", fmt.Errorf("load teacher %s: %w", *slot.TeacherID, err)
		}
		teacherName = teacher.FullName
		teacherNames[*slot.TeacherID] = teacherName
	}
	return fmt.Sprintf("%s (%s)", subjectName, teacherName), nil
}
