package queue

import "errors"

var (
	// ErrUnknownStation is returned when an operation targets a station that
	// is not in the configured set. Malformed or empty station input maps
	// here as well.
	ErrUnknownStation = errors.New("unknown station")

	// ErrNothingToRecall is returned when a recall targets a station where no
	// ticket has ever been served.
	ErrNothingToRecall = errors.New("nothing to recall")

	// ErrNoDataToExport is returned when every station's waiting list is
	// empty.
	ErrNoDataToExport = errors.New("no waiting tickets to export")
)
