package reports

import "errors"

var (
	// ErrFetchFailed wraps upstream API failures while retrieving records.
	ErrFetchFailed = errors.New("reports: fetch failed")
	// ErrNoRecords is returned when a fetch succeeds but yields zero usable records.
	ErrNoRecords = errors.New("reports: no records for period")
	// ErrRenderFailed wraps document backend failures; no partial file is kept.
	ErrRenderFailed = errors.New("reports: render failed")
	// ErrUnknownKind is returned for a report kind with no definition.
	ErrUnknownKind = errors.New("reports: unknown report kind")
	// ErrEmptyPivot is returned when a pivot is built from no buckets.
	ErrEmptyPivot = errors.New("reports: empty pivot")
)
