package domain

// Status is the tag of an Outcome
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

// String returns a human-readable representation of the status
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "Loading"
	case StatusSuccess:
		return "Success"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Outcome is a tagged union over Loading, Success(payload) and
// Error(message, optional stale payload).
// Data is always set for Success and may be set for Error.
type Outcome[T any] struct {
	Status  Status
	Data    *T
	Message string // Human-readable failure text (Error only)
	Err     error  // Underlying error for errors.Is/As (Error only)
}

// Loading returns an in-progress outcome
func Loading[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusLoading}
}

// Success wraps a payload
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusSuccess, Data: &v}
}

// Failure wraps an error, optionally carrying the last known payload
func Failure[T any](err error, stale *T) Outcome[T] {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Outcome[T]{Status: StatusError, Data: stale, Message: msg, Err: err}
}

func (o Outcome[T]) IsLoading() bool { return o.Status == StatusLoading }
func (o Outcome[T]) IsSuccess() bool { return o.Status == StatusSuccess }
func (o Outcome[T]) IsError() bool   { return o.Status == StatusError }

// Value returns the payload and whether one is present
func (o Outcome[T]) Value() (T, bool) {
	if o.Data == nil {
		var zero T
		return zero, false
	}
	return *o.Data, true
}
