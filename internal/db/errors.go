package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrClientNotFound = errors.New("client not found")
	ErrAuditNotFound  = errors.New("audit not found")
	ErrAssetNotFound  = errors.New("client asset not found")

	// ErrUnknownClient is returned when a foreign key points at a missing client.
	ErrUnknownClient = errors.New("referenced client does not exist")
)
