package dubbing

import "time"

// Status — client-side lifecycle status of a dubbing job.
type Status string

const (
	StatusCreated    Status = "created"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StatusFromAPI maps the server job status onto the client enum.
// The server reports PROCESSING / COMPLETE / FAILED; anything else
// (NOT_STARTED, empty, unknown) reads as queued.
func StatusFromAPI(raw string) Status {
	switch raw {
	case "PROCESSING":
		return StatusProcessing
	case "COMPLETE":
		return StatusCompleted
	case "FAILED":
		return StatusFailed
	default:
		return StatusQueued
	}
}

type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateProjectParams struct {
	Name           string
	SourceLanguage string
	TargetLanguage string
}

// ProjectDetails — expanded project view as returned by the API, with
// the pieces of the translation/dub tree the workflow cares about.
type ProjectDetails struct {
	Project
	RawStatus   string
	MergeStatus string
	MediaCount  int
	OutputURL   string // presigned URL of the OUTPUT media, when present
}

type MediaUploadState string

const (
	UploadPending MediaUploadState = "pending"
	UploadDone    MediaUploadState = "uploaded"
	UploadFailed  MediaUploadState = "failed"
)

// MediaAsset — a local file tied to a project during the upload step.
type MediaAsset struct {
	ProjectID string           `json:"project_id"`
	Path      string           `json:"path"`
	Size      int64            `json:"size"`
	State     MediaUploadState `json:"state"`
}

// JobStatus — the result of a single status poll.
type JobStatus struct {
	ProjectID string `json:"project_id"`
	Status    Status `json:"status"`
	Progress  int    `json:"progress"` // 0..100
	ETA       string `json:"eta,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

type Result struct {
	ProjectID  string `json:"project_id"`
	SourceURL  string `json:"source_url"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	ArchiveURL string `json:"archive_url,omitempty"`
}

type ShareLink struct {
	ProjectID string `json:"project_id"`
	URL       string `json:"url"`
}
