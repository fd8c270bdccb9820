package dto

// StatusResponse is the payload of GET /v1/status: a live view of the
// current run's counters.
type StatusResponse struct {
	Success        int `json:"success"`
	Failure        int `json:"failure"`
	InFlight       int `json:"inFlight"`
	ExecutionCount int `json:"executionCount"`
}
