package crawler

import "errors"

var (
	// ErrInvalidSeed is returned when the seed URL cannot be parsed or has no host
	ErrInvalidSeed = errors.New("invalid seed URL")
	// ErrInvalidWorkers is returned when MaxWorkers is not greater than 0
	ErrInvalidWorkers = errors.New("max workers must be greater than 0")
	// ErrNilFetcher is returned when a crawler is built without a fetcher
	ErrNilFetcher = errors.New("fetcher is required")
)
