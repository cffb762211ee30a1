package config

import "errors"

var (
	// ErrInvalidWorkers is returned when workers is not greater than 0
	ErrInvalidWorkers = errors.New("workers must be greater than 0")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrInvalidFormat is returned for an unknown report format
	ErrInvalidFormat = errors.New("format must be one of console, jsonl, markdown")
	// ErrInvalidDomainMode is returned for an unknown domain mode
	ErrInvalidDomainMode = errors.New("domain_mode must be labels or publicsuffix")
	// ErrInvalidMaxSize is returned when max_size is negative
	ErrInvalidMaxSize = errors.New("max_size cannot be negative")
	// ErrInvalidHeader is returned for a header not in "Name: Value" format
	ErrInvalidHeader = errors.New("header must be in 'Name: Value' format")
)
