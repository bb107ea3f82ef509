package storage

import "errors"

// ErrConcurrencyConflict is returned when a mutation was planned against a vault version that is no longer current.
var ErrConcurrencyConflict = errors.New("concurrent modification of customer ledger")

// ErrPlantNotFound is returned when a plant ID is not in the catalog.
var ErrPlantNotFound = errors.New("plant not found")
