package cache

import "errors"

// Values rejected at the Insert boundary.
var (
	ErrEmptyQuestion   = errors.New("empty question")
	ErrEmptyAnswer     = errors.New("empty answer")
	ErrQuestionTooLong = errors.New("question too long")
)
