package config

import "errors"

var (
	// ErrAPIBaseURLRequired is returned when the API base URL is not provided
	ErrAPIBaseURLRequired = errors.New("api base_url is required")

	// ErrInvalidAPIBaseURL is returned when the API base URL cannot be parsed
	ErrInvalidAPIBaseURL = errors.New("api base_url is not a valid URL")

	// ErrInvalidTimeout is returned when the API timeout cannot be parsed
	ErrInvalidTimeout = errors.New("api timeout is not a valid duration")

	// ErrConfigFileNotFound is returned when the config file is not found
	ErrConfigFileNotFound = errors.New("configuration file not found")
)
