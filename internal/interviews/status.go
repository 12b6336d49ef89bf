package interviews

import (
	"errors"
	"strconv"
)

// Status is the lifecycle state of an interview invitation.
type Status int

const (
	StatusRevoked             Status = -3
	StatusCandidateCancelled  Status = -2
	StatusEmployerCancelled   Status = -1
	StatusOpen                Status = 0
	StatusPendingConfirmation Status = 1
	StatusConfirmed           Status = 2
	StatusCompleted           Status = 3
)

var ErrInvalidTransition = errors.New("invalid status transition")

var statusNames = map[Status]string{
	StatusRevoked:             "Revoked",
	StatusCandidateCancelled:  "Candidate Cancelled",
	StatusEmployerCancelled:   "Employer Cancelled",
	StatusOpen:                "Request Open",
	StatusPendingConfirmation: "Pending Confirmation",
	StatusConfirmed:           "Confirmed",
	StatusCompleted:           "Completed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

var stopped = []Status{StatusCandidateCancelled, StatusEmployerCancelled, StatusRevoked}

var transitions = map[Status][]Status{
	StatusOpen:                append([]Status{StatusPendingConfirmation}, stopped...),
	StatusPendingConfirmation: append([]Status{StatusConfirmed}, stopped...),
	StatusConfirmed:           append([]Status{StatusCompleted}, stopped...),
}

// CanTransition reports whether an invitation may move from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
