package api

// DebateRequest is the body for POST /api/v1/debate.
type DebateRequest struct {
	Directive string `json:"directive"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
