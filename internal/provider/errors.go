package provider

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// Provider error codes defined by the wallet request protocol
const (
	CodeUserRejected = 4001 // user dismissed the request
	CodeUnknownChain = 4902 // chain not registered with the wallet
)

// ErrNoProvider is returned when no wallet provider is configured or
// reachable. It must surface before any request is issued.
var ErrNoProvider = errors.New("no wallet provider detected")

// RequestError wraps a failed provider request with the method that
// produced it
type RequestError struct {
	Method string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("provider request %s failed: %v", e.Method, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the JSON-RPC error code from a provider error,
// returning 0 when the error carries no code
func ErrorCode(err error) int {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode()
	}
	return 0
}

// IsUserRejected reports whether the provider error means the user
// dismissed the request
func IsUserRejected(err error) bool {
	return ErrorCode(err) == CodeUserRejected
}

// IsUnknownChain reports whether the provider error means the chain is
// not registered with the wallet and must be added first
func IsUnknownChain(err error) bool {
	return ErrorCode(err) == CodeUnknownChain
}
