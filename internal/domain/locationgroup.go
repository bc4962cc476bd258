package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationGroup errors
var (
	ErrInvalidGroupName     = errors.New("location group name must not be empty")
	ErrInvalidGroupState    = errors.New("invalid location group state")
	ErrInvalidOperationMode = errors.New("invalid operation mode")
	ErrChildExists          = errors.New("child group already attached")
	ErrChildNotFound        = errors.New("child group not attached")
)

// LocationGroup is a named logical grouping of locations and subgroups. The
// hierarchy is held as identifiers: each group knows its parent's name and
// an ordered list of child names; traversal resolves names through the
// repository rather than chasing object references.
type LocationGroup struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	PKey          string             `bson:"pKey"`
	Name          string             `bson:"name"`
	ParentName    string             `bson:"parentName,omitempty"`
	ChildNames    []string           `bson:"childNames"`
	GroupStateIn  LocationGroupState `bson:"groupStateIn"`
	GroupStateOut LocationGroupState `bson:"groupStateOut"`
	OperationMode OperationMode      `bson:"operationMode"`
	GroupType     string             `bson:"groupType,omitempty"`
	Version       int64              `bson:"version"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
	DomainEvents  []DomainEvent      `bson:"-"`
}

// NewLocationGroup creates a new LocationGroup aggregate, fully available
// and open for both operations
func NewLocationGroup(name, parentName string) (*LocationGroup, error) {
	if name == "" {
		return nil, ErrInvalidGroupName
	}

	now := time.Now()
	group := &LocationGroup{
		PKey:          uuid.New().String(),
		Name:          name,
		ParentName:    parentName,
		ChildNames:    make([]string, 0),
		GroupStateIn:  GroupStateAvailable,
		GroupStateOut: GroupStateAvailable,
		OperationMode: OperationModeInfeedAndOutfeed,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
		DomainEvents:  make([]DomainEvent, 0),
	}

	group.AddDomainEvent(&LocationGroupCreatedEvent{
		Name:       name,
		ParentName: parentName,
		CreatedAt:  now,
	})

	return group, nil
}

// TargetKey returns the business key used to address this group as a lock target
func (g *LocationGroup) TargetKey() string {
	return g.Name
}

// HasChildren reports whether the group has attached subgroups
func (g *LocationGroup) HasChildren() bool {
	return len(g.ChildNames) > 0
}

// AddChild attaches a child group by name, keeping insertion order
func (g *LocationGroup) AddChild(name string) error {
	for _, existing := range g.ChildNames {
		if existing == name {
			return ErrChildExists
		}
	}
	g.ChildNames = append(g.ChildNames, name)
	g.UpdatedAt = time.Now()
	return nil
}

// RemoveChild detaches a child group by name
func (g *LocationGroup) RemoveChild(name string) error {
	for i, existing := range g.ChildNames {
		if existing == name {
			g.ChildNames = append(g.ChildNames[:i], g.ChildNames[i+1:]...)
			g.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrChildNotFound
}

// ChangeGroupState sets the availability pair
func (g *LocationGroup) ChangeGroupState(stateIn, stateOut LocationGroupState) error {
	if !stateIn.IsValid() || !stateOut.IsValid() {
		return ErrInvalidGroupState
	}

	g.GroupStateIn = stateIn
	g.GroupStateOut = stateOut
	g.UpdatedAt = time.Now()

	g.AddDomainEvent(&GroupStateChangedEvent{
		Name:          g.Name,
		GroupStateIn:  string(stateIn),
		GroupStateOut: string(stateOut),
		ChangedAt:     g.UpdatedAt,
	})

	return nil
}

// ChangeOperationMode sets the operation mode
func (g *LocationGroup) ChangeOperationMode(mode OperationMode) error {
	if !mode.IsValid() {
		return ErrInvalidOperationMode
	}

	g.OperationMode = mode
	g.UpdatedAt = time.Now()

	g.AddDomainEvent(&GroupOperationModeChangedEvent{
		Name:          g.Name,
		OperationMode: string(mode),
		ChangedAt:     g.UpdatedAt,
	})

	return nil
}

// ApplyAllocationLock applies an allocation lock transition for the given mode
func (g *LocationGroup) ApplyAllocationLock(mode LockMode) error {
	var stateIn, stateOut LocationGroupState
	switch mode {
	case LockModeIn:
		stateIn, stateOut = GroupStateNotAvailable, GroupStateAvailable
	case LockModeOut:
		stateIn, stateOut = GroupStateAvailable, GroupStateNotAvailable
	case LockModeInAndOut:
		stateIn, stateOut = GroupStateNotAvailable, GroupStateNotAvailable
	case LockModeNone:
		stateIn, stateOut = GroupStateAvailable, GroupStateAvailable
	default:
		return ErrInvalidLockMode
	}

	if err := g.ChangeGroupState(stateIn, stateOut); err != nil {
		return err
	}

	g.AddDomainEvent(&TargetLockChangedEvent{
		TargetBK:      g.TargetKey(),
		LockType:      string(AllocationLock),
		OperationMode: string(mode),
		ChangedAt:     g.UpdatedAt,
	})

	return nil
}

// ApplyOperationLock applies an operation lock transition for the given mode
func (g *LocationGroup) ApplyOperationLock(mode LockMode) error {
	var opMode OperationMode
	switch mode {
	case LockModeIn:
		opMode = OperationModeOutfeed
	case LockModeOut:
		opMode = OperationModeInfeed
	case LockModeInAndOut:
		opMode = OperationModeNoOperation
	case LockModeNone:
		opMode = OperationModeInfeedAndOutfeed
	default:
		return ErrInvalidLockMode
	}

	if err := g.ChangeOperationMode(opMode); err != nil {
		return err
	}

	g.AddDomainEvent(&TargetLockChangedEvent{
		TargetBK:      g.TargetKey(),
		LockType:      string(OperationLock),
		OperationMode: string(mode),
		ChangedAt:     g.UpdatedAt,
	})

	return nil
}

// ApplyPermanentLock forces the group fully unavailable and stops all operations
func (g *LocationGroup) ApplyPermanentLock(reAllocation *bool) error {
	if err := g.ChangeGroupState(GroupStateNotAvailable, GroupStateNotAvailable); err != nil {
		return err
	}
	if err := g.ChangeOperationMode(OperationModeNoOperation); err != nil {
		return err
	}

	g.AddDomainEvent(&TargetLockChangedEvent{
		TargetBK:      g.TargetKey(),
		LockType:      string(PermanentLock),
		OperationMode: string(LockModeNone),
		ReAllocation:  reAllocation,
		ChangedAt:     g.UpdatedAt,
	})

	return nil
}

// ReleasePermanentLock restores full availability and both operations,
// regardless of the prior granular state
func (g *LocationGroup) ReleasePermanentLock() error {
	if err := g.ChangeGroupState(GroupStateAvailable, GroupStateAvailable); err != nil {
		return err
	}
	if err := g.ChangeOperationMode(OperationModeInfeedAndOutfeed); err != nil {
		return err
	}

	g.AddDomainEvent(&TargetLockChangedEvent{
		TargetBK:      g.TargetKey(),
		LockType:      string(PermanentLock),
		OperationMode: string(LockModeInAndOut),
		ChangedAt:     g.UpdatedAt,
	})

	return nil
}

// ApplyCascadedState sets the availability pair without recording a domain
// event. Used by the propagator on descendants so that a cascade produces
// exactly one lock-changed event, at the node where the change originated.
func (g *LocationGroup) ApplyCascadedState(stateIn, stateOut LocationGroupState) error {
	if !stateIn.IsValid() || !stateOut.IsValid() {
		return ErrInvalidGroupState
	}
	g.GroupStateIn = stateIn
	g.GroupStateOut = stateOut
	g.UpdatedAt = time.Now()
	return nil
}

// ApplyCascadedOperationMode sets the operation mode without recording a domain event
func (g *LocationGroup) ApplyCascadedOperationMode(mode OperationMode) error {
	if !mode.IsValid() {
		return ErrInvalidOperationMode
	}
	g.OperationMode = mode
	g.UpdatedAt = time.Now()
	return nil
}

// AddDomainEvent adds a domain event
func (g *LocationGroup) AddDomainEvent(event DomainEvent) {
	g.DomainEvents = append(g.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (g *LocationGroup) ClearDomainEvents() {
	g.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (g *LocationGroup) GetDomainEvents() []DomainEvent {
	return g.DomainEvents
}
