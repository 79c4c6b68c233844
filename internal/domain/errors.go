package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrUnknownSource        = errors.New("unknown source")
	ErrMissingReferenceOdds = errors.New("exchange has no 0-0 reference price")
	ErrUnparseableInput     = errors.New("unparseable input")
	ErrAlertSuppressed      = errors.New("alert suppressed by dedup window")
)
