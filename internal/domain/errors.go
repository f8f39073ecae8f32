package domain

import "errors"

var (
	// ErrInvalidArguments indicates neither or both of url and file id were given.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrUnreachableSource indicates a transport failure or a non-success HTTP status.
	ErrUnreachableSource = errors.New("unreachable source")
	// ErrWriteFailure indicates the local filesystem rejected a write.
	ErrWriteFailure = errors.New("write failure")
	// ErrStreamInterrupted indicates the source connection dropped mid-transfer.
	ErrStreamInterrupted = errors.New("stream interrupted")
)
