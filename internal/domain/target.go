package domain

// Target is anything addressable by a business key that can be locked and
// unlocked for infeed/outfeed purposes. Locations are leaves; LocationGroups
// are internal nodes of the hierarchy.
type Target interface {
	// TargetKey returns the business key of the target
	TargetKey() string

	// ApplyAllocationLock locks/unlocks assignment-for-work for the given mode
	ApplyAllocationLock(mode LockMode) error

	// ApplyOperationLock locks/unlocks physical operation for the given mode
	ApplyOperationLock(mode LockMode) error

	// ApplyPermanentLock forces the target into the fully locked state
	ApplyPermanentLock(reAllocation *bool) error

	// ReleasePermanentLock restores the target to the fully open state
	ReleasePermanentLock() error
}

var (
	_ Target = (*Location)(nil)
	_ Target = (*LocationGroup)(nil)
)
