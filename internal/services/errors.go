package services

import "errors"

// Query service errors
var (
	ErrNoCalendar = errors.New("no trading calendar available")
	ErrNoRun      = errors.New("no pipeline run recorded")
)
