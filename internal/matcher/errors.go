package matcher

import "errors"

var (
	// ErrNoImageAvailable means the post has no image to score. Not a failure.
	ErrNoImageAvailable = errors.New("no image available")
	// ErrNoCandidatesFound means the scorer returned nothing. Not a failure.
	ErrNoCandidatesFound = errors.New("no candidates found")
	// ErrCandidateTypeMismatch marks a candidate of the same type as the post.
	ErrCandidateTypeMismatch = errors.New("candidate type mismatch")
	ErrRepositoryWriteFailed = errors.New("repository write failed")
	// ErrRecipientUnresolvable means the counterpart owner or their token is missing.
	ErrRecipientUnresolvable = errors.New("recipient unresolvable")
	ErrUnknownPostKind       = errors.New("unknown post kind")

	ErrQueueFull        = errors.New("match queue is full")
	ErrQueueClosed      = errors.New("match queue is closed")
	ErrDuplicateTrigger = errors.New("match already triggered for post")
)
