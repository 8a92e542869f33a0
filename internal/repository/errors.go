package repository

import "errors"

// Sentinel errors shared by the postgres and memory stores. Services translate
// them into typed API errors.
var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionFull             = errors.New("session is full")
	ErrSessionClosed           = errors.New("session is cancelled, completed or finished")
	ErrSessionFinished         = errors.New("session already finished")
	ErrSessionCancelled        = errors.New("session cancelled")
	ErrNotEnrolled             = errors.New("no active enrollment")
	ErrCapacityBelowEnrollment = errors.New("capacity lower than active enrollments")
	ErrSessionHasEnrollments   = errors.New("session has enrollment history")
)
