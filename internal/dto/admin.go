package dto

// RefreshRequest selects which cached sections to refresh. Empty means all.
type RefreshRequest struct {
	Sections []string `json:"sections" validate:"omitempty,dive,required"`
}

// QueuedJob is a refresh job accepted by the worker queue.
type QueuedJob struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// RefreshResponse lists the jobs accepted for a refresh request.
type RefreshResponse struct {
	Jobs []QueuedJob `json:"jobs"`
}
