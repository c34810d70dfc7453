package domain

import "errors"

var (
	// ErrInputEmpty marks a topic whose sentence bucket (or passage) is empty.
	ErrInputEmpty = errors.New("input empty")
	// ErrCondenserFailure marks a topic whose generation failed or returned unusable text.
	ErrCondenserFailure = errors.New("condenser failure")
	// ErrCollaborator marks a failed fetch, store or sentence split for a whole document.
	ErrCollaborator = errors.New("collaborator failure")
	// ErrTranscriptNotFound is returned by sources when the page has no transcript body.
	ErrTranscriptNotFound = errors.New("transcript not found")
	// ErrAlreadyProcessed is returned when a summary is already stored for the key.
	ErrAlreadyProcessed = errors.New("transcript already processed")
)
