package app

import "errors"

// Application-level errors returned by the services.
var (
	ErrAdminNotAuthorized   = errors.New("performing user is not authorized as an admin")
	ErrNotRegistered        = errors.New("patient is not registered")
	ErrNoActiveCycle        = errors.New("patient has no active cycle")
	ErrActiveCycleExists    = errors.New("patient already has an active cycle")
	ErrStartDateInFuture    = errors.New("cycle start date is in the future")
	ErrInvalidCloseStatus   = errors.New("a cycle can only be closed as completed or cancelled")
	ErrUnknownStatus        = errors.New("unknown milestone status")
	ErrEmptyMilestoneType   = errors.New("milestone type is empty")
	ErrMilestoneNotRecorded = errors.New("milestone has not been recorded yet")
)
