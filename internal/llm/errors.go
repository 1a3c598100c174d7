package llm

import "errors"

// ErrEmptyAPIKey indicates that the API key was not provided.
var ErrEmptyAPIKey = errors.New("API key is required")

// ErrEmptyResponse indicates the API returned no choices.
var ErrEmptyResponse = errors.New("no response from API")
