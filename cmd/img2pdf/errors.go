package main

import "errors"

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrUsage              = errors.New("invalid usage")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInvalidPageRange   = errors.New("invalid page range")
	ErrWriteOutput        = errors.New("failed to write output file")
)
