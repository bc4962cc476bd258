package domain

import "errors"

// Lock errors
var (
	ErrInvalidLockType          = errors.New("invalid lock type")
	ErrInvalidLockMode          = errors.New("invalid lock mode")
	ErrOperationLockUnsupported = errors.New("operation lock is not supported for locations")
)

// LockType is the axis of control applied to a target
type LockType string

const (
	// AllocationLock controls whether a target may be assigned for work
	AllocationLock LockType = "ALLOCATION_LOCK"
	// OperationLock controls physical infeed/outfeed operation
	OperationLock LockType = "OPERATION_LOCK"
	// PermanentLock is the coarse hard lock used by the lock/release entry points
	PermanentLock LockType = "PERMANENT_LOCK"
)

// IsValid checks if the lock type is valid
func (t LockType) IsValid() bool {
	switch t {
	case AllocationLock, OperationLock, PermanentLock:
		return true
	default:
		return false
	}
}

// LockMode denotes which direction(s) of flow are affected
type LockMode string

const (
	LockModeIn       LockMode = "IN"
	LockModeOut      LockMode = "OUT"
	LockModeInAndOut LockMode = "IN_AND_OUT"
	LockModeNone     LockMode = "NONE"
)

// IsValid checks if the lock mode is valid
func (m LockMode) IsValid() bool {
	switch m {
	case LockModeIn, LockModeOut, LockModeInAndOut, LockModeNone:
		return true
	default:
		return false
	}
}

// LocationGroupState represents the availability of a group for one flow direction
type LocationGroupState string

const (
	GroupStateAvailable    LocationGroupState = "AVAILABLE"
	GroupStateNotAvailable LocationGroupState = "NOT_AVAILABLE"
)

// IsValid checks if the group state is valid
func (s LocationGroupState) IsValid() bool {
	switch s {
	case GroupStateAvailable, GroupStateNotAvailable:
		return true
	default:
		return false
	}
}

// OperationMode represents which physical operations a group currently permits
type OperationMode string

const (
	OperationModeInfeed           OperationMode = "INFEED"
	OperationModeOutfeed          OperationMode = "OUTFEED"
	OperationModeNoOperation      OperationMode = "NO_OPERATION"
	OperationModeInfeedAndOutfeed OperationMode = "INFEED_AND_OUTFEED"
)

// IsValid checks if the operation mode is valid
func (m OperationMode) IsValid() bool {
	switch m {
	case OperationModeInfeed, OperationModeOutfeed, OperationModeNoOperation, OperationModeInfeedAndOutfeed:
		return true
	default:
		return false
	}
}
