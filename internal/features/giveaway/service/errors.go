package service

import "errors"

var (
	ErrNotFound = errors.New("giveaway not found, it may have been deleted")
	ErrNotReady = errors.New("giveaway draft is not ready to start")
)

// Rejection is a typed entry rejection whose message is surfaced verbatim
// to the requesting user. No state is mutated when an entry is rejected.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func reject(reason string) *Rejection {
	return &Rejection{Reason: reason}
}

// IsRejection reports whether err is a user-facing entry rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
