package xtream

import "fmt"

// AuthError means the server answered but refused the credentials, as
// opposed to connectivity failures. Callers use the distinction to decide
// between prompting for credentials and plain retry.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("xtream authentication failed: %v", e.Err)
	}
	return "xtream authentication failed: server did not report an authenticated session"
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ChannelFetchError covers failures of either catalog round trip; both the
// category and the live-stream call are load-bearing for channel ingestion.
type ChannelFetchError struct {
	Stage string
	Err   error
}

func (e *ChannelFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s catalog: %v", e.Stage, e.Err)
}

func (e *ChannelFetchError) Unwrap() error {
	return e.Err
}
