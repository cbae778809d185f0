package domain

// RequestState tracks one logical request (a load or a summary generation).
type RequestState string

const (
	StateIdle      RequestState = "idle"
	StateLoading   RequestState = "loading"
	StateSucceeded RequestState = "succeeded"
	StateFailed    RequestState = "failed"
)
