package approval

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrAlreadyProcessed  = errors.New("request has already been processed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRejectionReason   = errors.New("rejection reason is required")
	ErrForbidden         = errors.New("not allowed to access this request")
	ErrSelfDecision      = errors.New("cannot approve or reject your own request")
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Transition checks from → to. Only pending may move, and only to a
// resolved state.
func Transition(from, to Status) error {
	if from.Terminal() {
		return ErrAlreadyProcessed
	}
	if from != StatusPending || !to.Terminal() {
		return ErrInvalidTransition
	}
	return nil
}

// Decision is the outcome recorded on a request when it leaves pending.
type Decision struct {
	Status     Status
	DecidedBy  string
	DecidedAt  time.Time
	RejectNote *string
}

func Approve(by string, at time.Time) Decision {
	return Decision{Status: StatusApproved, DecidedBy: by, DecidedAt: at}
}

func Reject(by string, at time.Time, note string) Decision {
	return Decision{Status: StatusRejected, DecidedBy: by, DecidedAt: at, RejectNote: &note}
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", ErrRejectionReason.Error())
	} else if len(r.Reason) > 500 {
		errs.Add("reason", "reason must not exceed 500 characters")
	}
	return errs.OrNil()
}
