package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across repository and service layers
var (
	// ErrNotFound is returned when a record does not exist in the store
	ErrNotFound = goerr.New("record not found")

	// ErrAlreadyExists is returned when a create hits the store's uniqueness
	// constraint. Callers recover by re-reading the existing record.
	ErrAlreadyExists = goerr.New("record already exists")

	// ErrDirectoryLookup is returned when the platform directory API reports
	// a non-ok status. Fatal for the current event; the platform's own
	// delivery retry is the recovery path.
	ErrDirectoryLookup = goerr.New("directory lookup failed")
)
