package model

import "fmt"

// RPCUnavailableError reports a remote read that kept failing after its full
// retry budget. Label identifies the logical call for diagnostics.
type RPCUnavailableError struct {
	Label    string
	Attempts int
	Err      error
}

func (e *RPCUnavailableError) Error() string {
	return fmt.Sprintf("rpc unavailable: %s after %d attempts: %v", e.Label, e.Attempts, e.Err)
}

func (e *RPCUnavailableError) Unwrap() error {
	return e.Err
}

// NotFoundError distinguishes "auction does not exist" from "exists but
// empty" results.
type NotFoundError struct {
	Index uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("auction %d not found", e.Index)
}
