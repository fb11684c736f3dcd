package domain

import "errors"

var ErrNotFound = errors.New("not found")
var ErrAlreadyActive = errors.New("download already active")

// Configuration errors. All of these fail the download before any engine
// interaction begins.
var (
	ErrUnknownMediaKind = errors.New("unknown media kind")
	ErrNoSource         = errors.New("no torrent source provided")
	ErrSourceAmbiguous  = errors.New("both magnet and torrent file provided")
)
