package domain

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location represents a single physical storage slot, identified by its
// 5-part composite natural key. It belongs to exactly one LocationGroup.
type Location struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PKey         string             `bson:"pKey"`
	LocationID   LocationPK         `bson:"locationId"`
	GroupName    string             `bson:"groupName,omitempty"`
	ErrorCode    ErrorCode          `bson:"errorCode"`
	PLCState     int                `bson:"plcState"`
	Stockzone    string             `bson:"stockzone,omitempty"`
	Version      int64              `bson:"version"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
	DomainEvents []DomainEvent      `bson:"-"`
}

// NewLocation creates a new Location aggregate
func NewLocation(locationID LocationPK, groupName string) (*Location, error) {
	if !locationID.IsValid() {
		return nil, ErrInvalidLocationKey
	}

	now := time.Now()
	location := &Location{
		PKey:         uuid.New().String(),
		LocationID:   locationID,
		GroupName:    groupName,
		ErrorCode:    ErrorCodeAllNotSet,
		PLCState:     0,
		Version:      0,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}

	location.AddDomainEvent(&LocationCreatedEvent{
		LocationID: locationID.String(),
		GroupName:  groupName,
		CreatedAt:  now,
	})

	return location, nil
}

// TargetKey returns the business key used to address this location as a lock target
func (l *Location) TargetKey() string {
	return l.LocationID.String()
}

// SetErrorCode overlays the given error code onto the location's current code
func (l *Location) SetErrorCode(code ErrorCode) {
	l.ErrorCode = l.ErrorCode.Merge(code)
	l.UpdatedAt = time.Now()

	l.AddDomainEvent(&LocationStateChangedEvent{
		LocationID: l.LocationID.String(),
		ErrorCode:  l.ErrorCode.String(),
		ChangedAt:  l.UpdatedAt,
	})
}

// ApplyAllocationLock applies an allocation lock transition for the given mode
func (l *Location) ApplyAllocationLock(mode LockMode) error {
	var code ErrorCode
	switch mode {
	case LockModeIn:
		code = LockStateIn
	case LockModeOut:
		code = LockStateOut
	case LockModeInAndOut:
		code = LockStateInAndOut
	case LockModeNone:
		code = UnlockStateInAndOut
	default:
		return ErrInvalidLockMode
	}

	l.SetErrorCode(code)

	l.AddDomainEvent(&TargetLockChangedEvent{
		TargetBK:      l.TargetKey(),
		LockType:      string(AllocationLock),
		OperationMode: string(mode),
		ChangedAt:     l.UpdatedAt,
	})

	return nil
}

// ApplyOperationLock is not defined for locations in this version
func (l *Location) ApplyOperationLock(mode LockMode) error {
	return ErrOperationLockUnsupported
}

// ApplyPermanentLock forces the location into the fully locked state
func (l *Location) ApplyPermanentLock(reAllocation *bool) error {
	l.SetErrorCode(LockStateInAndOut)

	l.AddDomainEvent(&TargetLockChangedEvent{
		TargetBK:      l.TargetKey(),
		LockType:      string(PermanentLock),
		OperationMode: string(LockModeNone),
		ReAllocation:  reAllocation,
		ChangedAt:     l.UpdatedAt,
	})

	return nil
}

// ReleasePermanentLock restores the location to the fully open state
func (l *Location) ReleasePermanentLock() error {
	l.SetErrorCode(UnlockStateInAndOut)

	l.AddDomainEvent(&TargetLockChangedEvent{
		TargetBK:      l.TargetKey(),
		LockType:      string(PermanentLock),
		OperationMode: string(LockModeInAndOut),
		ChangedAt:     l.UpdatedAt,
	})

	return nil
}

// InfeedBlocked reports whether inbound flow is currently locked
func (l *Location) InfeedBlocked() bool {
	flag := l.ErrorCode.InfeedFlag()
	return flag != ErrorCodeWildcard && flag != '0'
}

// OutfeedBlocked reports whether outbound flow is currently locked
func (l *Location) OutfeedBlocked() bool {
	flag := l.ErrorCode.OutfeedFlag()
	return flag != ErrorCodeWildcard && flag != '0'
}

// AddDomainEvent adds a domain event
func (l *Location) AddDomainEvent(event DomainEvent) {
	l.DomainEvents = append(l.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (l *Location) ClearDomainEvents() {
	l.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (l *Location) GetDomainEvents() []DomainEvent {
	return l.DomainEvents
}
