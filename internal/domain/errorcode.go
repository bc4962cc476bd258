package domain

import (
	"errors"
	"fmt"
)

// ErrorCode errors
var (
	ErrInvalidErrorCode = errors.New("invalid error code")
)

const (
	// ErrorCodeLength is the fixed width of an error code string
	ErrorCodeLength = 8
	// ErrorCodeWildcard marks a flag position that carries no opinion
	ErrorCodeWildcard = '*'
)

// ErrorCode is the fixed-length flag string carried by a Location. Each
// character position encodes an independently-interpretable flag; the last
// character is the infeed lock flag, the second-to-last the outfeed lock
// flag ('0' = unlocked, any other digit = locked, '*' = unchanged).
type ErrorCode string

// Defined lock state combinations
const (
	ErrorCodeAllNotSet  ErrorCode = "********"
	LockStateIn         ErrorCode = "*******1"
	LockStateOut        ErrorCode = "******1*"
	LockStateInAndOut   ErrorCode = "******11"
	UnlockStateIn       ErrorCode = "*******0"
	UnlockStateOut      ErrorCode = "******0*"
	UnlockStateInAndOut ErrorCode = "******00"
)

// NewErrorCode validates and returns an ErrorCode
func NewErrorCode(code string) (ErrorCode, error) {
	ec := ErrorCode(code)
	if !ec.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidErrorCode, code)
	}
	return ec, nil
}

// IsValid checks length and character set (digits and wildcards only)
func (e ErrorCode) IsValid() bool {
	if len(e) != ErrorCodeLength {
		return false
	}
	for _, c := range e {
		if c != ErrorCodeWildcard && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// String returns the raw flag string
func (e ErrorCode) String() string {
	return string(e)
}

// InfeedFlag returns the infeed lock flag character
func (e ErrorCode) InfeedFlag() byte {
	return e[len(e)-1]
}

// OutfeedFlag returns the outfeed lock flag character
func (e ErrorCode) OutfeedFlag() byte {
	return e[len(e)-2]
}

// Merge overlays the flags of other onto e, keeping positions where other
// carries the wildcard. Both codes must be well-formed.
func (e ErrorCode) Merge(other ErrorCode) ErrorCode {
	if len(e) != len(other) {
		return other
	}
	merged := []byte(e)
	for i := 0; i < len(other); i++ {
		if other[i] != ErrorCodeWildcard {
			merged[i] = other[i]
		}
	}
	return ErrorCode(merged)
}
