package dto

// ExportTimetableRequest queues a printable export of one timetable.
type ExportTimetableRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse reports the state of a queued export.
type ExportJobResponse struct {
	JobID       string  `json:"jobId"`
	Status      string  `json:"status"`
	DownloadURL *string `json:"downloadUrl,omitempty"`
	Error       *string `json:"error,omitempty"`
}
