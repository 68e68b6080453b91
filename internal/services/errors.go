package services

import "errors"

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrJobNotFound         = errors.New("job not found")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrScoreNotFound       = errors.New("score not found")

	// ErrPersistence wraps failures to write the score or the denormalized
	// application fields. Audit log failures never surface as errors.
	ErrPersistence = errors.New("failed to persist score")
)
