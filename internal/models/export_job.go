package models

import "time"

// ExportFormat enumerates supported timetable export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background export job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob tracks one asynchronous timetable export.
type ExportJob struct {
	ID           string       `json:"id"`
	TimetableID  string       `json:"timetable_id"`
	Format       ExportFormat `json:"format"`
	Status       ExportStatus `json:"status"`
	DownloadURL  *string      `json:"download_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}
