package models

import (
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether no further transition may leave the status.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

type JobStep string

const (
	StepScript JobStep = "script"
	StepAudio  JobStep = "audio"
	StepSlides JobStep = "slides"
	StepVideo  JobStep = "video"
)

// VideoJob is one article-to-video conversion request. Fields are mutated
// only by the pipeline instance holding the claim; once the status is
// terminal the record is immutable.
type VideoJob struct {
	JobID           string    `json:"job_id" db:"job_id" redis:"job_id" validate:"omitempty"`
	SourceURL       string    `json:"source_url" db:"source_url" redis:"source_url" validate:"required,url"`
	Status          JobStatus `json:"status" db:"status" redis:"status" validate:"required"`
	Progress        int       `json:"progress" db:"progress" redis:"progress" validate:"gte=0,lte=100"`
	ProgressMessage string    `json:"progress_message" db:"progress_message" redis:"progress_message" validate:"omitempty"`
	CurrentStep     JobStep   `json:"current_step" db:"current_step" redis:"current_step" validate:"omitempty"`
	VideoPath       string    `json:"video_path" db:"video_path" redis:"video_path" validate:"omitempty"`
	ErrorMessage    string    `json:"error_message" db:"error_message" redis:"error_message" validate:"omitempty"`
	CreatedAt       time.Time `json:"created_at" db:"created_at" redis:"created_at" validate:"omitempty"`
	StartedAt       time.Time `json:"started_at" db:"started_at" redis:"started_at" validate:"omitempty"`
	CompletedAt     time.Time `json:"completed_at" db:"completed_at" redis:"completed_at" validate:"omitempty"`
}

type JobSubmitInput struct {
	SourceURL string `json:"source_url" validate:"required,url"`
}

type JobList struct {
	Jobs       []*VideoJob `json:"jobs"`
	TotalCount int         `json:"total_count"`
}
